// internal/domain/models/pod.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pod is a stored record describing a unit of deployment observed in a
// cluster. It mirrors the orchestrator's pod shape but is just a document
// here; pods carry no references to other entities.
type Pod struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Namespace string             `bson:"namespace" json:"namespace"`

	Status      string `bson:"status,omitempty" json:"status,omitempty"`
	ClusterName string `bson:"clusterName,omitempty" json:"clusterName,omitempty"`
	NodeName    string `bson:"nodeName,omitempty" json:"nodeName,omitempty"`

	Labels      map[string]string `bson:"labels,omitempty" json:"labels,omitempty"`
	Annotations map[string]string `bson:"annotations,omitempty" json:"annotations,omitempty"`

	CreationTimestamp *time.Time    `bson:"creationTimestamp,omitempty" json:"creationTimestamp,omitempty"`
	ContainerImages   []string      `bson:"containerImages,omitempty" json:"containerImages,omitempty"`
	Resources         *PodResources `bson:"resources,omitempty" json:"resources,omitempty"`

	RestartCount int    `bson:"restartCount,omitempty" json:"restartCount,omitempty"`
	PodIP        string `bson:"podIP,omitempty" json:"podIP,omitempty"`
	HostIP       string `bson:"hostIP,omitempty" json:"hostIP,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PodResources captures the requested and limited compute for a pod.
// CPU and memory are kept as the orchestrator's quantity strings
// (e.g. "100m", "128Mi"); this system does not interpret them.
type PodResources struct {
	Requests *ResourceSpec `bson:"requests,omitempty" json:"requests,omitempty"`
	Limits   *ResourceSpec `bson:"limits,omitempty" json:"limits,omitempty"`
}

// ResourceSpec holds cpu/memory quantity strings.
type ResourceSpec struct {
	CPU    string `bson:"cpu,omitempty" json:"cpu,omitempty"`
	Memory string `bson:"memory,omitempty" json:"memory,omitempty"`
}
