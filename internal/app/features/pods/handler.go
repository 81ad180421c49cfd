package pods

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/galgranov/gke-analyzer/internal/app/store/pods"
	"github.com/galgranov/gke-analyzer/internal/app/system/apperr"
	"github.com/galgranov/gke-analyzer/internal/app/system/httpjson"
	"github.com/galgranov/gke-analyzer/internal/app/system/timeouts"
	"github.com/galgranov/gke-analyzer/internal/domain/models"
)

// Handler serves the /pods endpoints.
type Handler struct {
	store       *podstore.Store
	publicLimit int
	Log         *zap.Logger
}

// NewHandler constructs a pods Handler. publicLimit caps how many pods
// the unauthenticated /pods/public endpoint returns.
func NewHandler(store *podstore.Store, publicLimit int, logger *zap.Logger) *Handler {
	return &Handler{store: store, publicLimit: publicLimit, Log: logger}
}

// Test handles GET /pods/test, an unauthenticated connectivity probe.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]string{
		"message": "This is a public test endpoint for the pods API",
	})
}

// Public handles GET /pods/public: a limited pod sample without
// authentication, for demos and smoke checks.
func (h *Handler) Public(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pods, err := h.store.List(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if len(pods) > h.publicLimit {
		pods = pods[:h.publicLimit]
	}
	httpjson.Write(w, http.StatusOK, pods)
}

type createPodRequest struct {
	Name              string               `json:"name"`
	Namespace         string               `json:"namespace"`
	Status            string               `json:"status,omitempty"`
	ClusterName       string               `json:"clusterName,omitempty"`
	NodeName          string               `json:"nodeName,omitempty"`
	Labels            map[string]string    `json:"labels,omitempty"`
	Annotations       map[string]string    `json:"annotations,omitempty"`
	CreationTimestamp *time.Time           `json:"creationTimestamp,omitempty"`
	ContainerImages   []string             `json:"containerImages,omitempty"`
	Resources         *models.PodResources `json:"resources,omitempty"`
	RestartCount      int                  `json:"restartCount,omitempty"`
	PodIP             string               `json:"podIP,omitempty"`
	HostIP            string               `json:"hostIP,omitempty"`
}

// Create handles POST /pods.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPodRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Namespace) == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "name and namespace are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pod, err := h.store.Create(ctx, models.Pod{
		Name:              req.Name,
		Namespace:         req.Namespace,
		Status:            req.Status,
		ClusterName:       req.ClusterName,
		NodeName:          req.NodeName,
		Labels:            req.Labels,
		Annotations:       req.Annotations,
		CreationTimestamp: req.CreationTimestamp,
		ContainerImages:   req.ContainerImages,
		Resources:         req.Resources,
		RestartCount:      req.RestartCount,
		PodIP:             req.PodIP,
		HostIP:            req.HostIP,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, pod)
}

// List handles GET /pods with optional single-field filters. The first
// filter present wins in the order namespace, cluster, node, status.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q := r.URL.Query()

	var (
		pods []models.Pod
		err  error
	)
	switch {
	case q.Get("namespace") != "":
		pods, err = h.store.ListByNamespace(ctx, q.Get("namespace"))
	case q.Get("cluster") != "":
		pods, err = h.store.ListByCluster(ctx, q.Get("cluster"))
	case q.Get("node") != "":
		pods, err = h.store.ListByNode(ctx, q.Get("node"))
	case q.Get("status") != "":
		pods, err = h.store.ListByStatus(ctx, q.Get("status"))
	default:
		pods, err = h.store.List(ctx)
	}
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, pods)
}

// Get handles GET /pods/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pod, err := h.store.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, pod)
}

type updatePodRequest struct {
	Name              *string              `json:"name,omitempty"`
	Namespace         *string              `json:"namespace,omitempty"`
	Status            *string              `json:"status,omitempty"`
	ClusterName       *string              `json:"clusterName,omitempty"`
	NodeName          *string              `json:"nodeName,omitempty"`
	Labels            map[string]string    `json:"labels,omitempty"`
	Annotations       map[string]string    `json:"annotations,omitempty"`
	CreationTimestamp *time.Time           `json:"creationTimestamp,omitempty"`
	ContainerImages   []string             `json:"containerImages,omitempty"`
	Resources         *models.PodResources `json:"resources,omitempty"`
	RestartCount      *int                 `json:"restartCount,omitempty"`
	PodIP             *string              `json:"podIP,omitempty"`
	HostIP            *string              `json:"hostIP,omitempty"`
}

// Update handles PATCH /pods/{id}: a partial merge of the given fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updatePodRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pod, err := h.store.Update(ctx, chi.URLParam(r, "id"), podstore.UpdateInput{
		Name:              req.Name,
		Namespace:         req.Namespace,
		Status:            req.Status,
		ClusterName:       req.ClusterName,
		NodeName:          req.NodeName,
		Labels:            req.Labels,
		Annotations:       req.Annotations,
		CreationTimestamp: req.CreationTimestamp,
		ContainerImages:   req.ContainerImages,
		Resources:         req.Resources,
		RestartCount:      req.RestartCount,
		PodIP:             req.PodIP,
		HostIP:            req.HostIP,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, pod)
}

// Delete handles DELETE /pods/{id} and returns the removed record.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pod, err := h.store.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, pod)
}
