package podstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/galgranov/gke-analyzer/internal/app/system/apperr"
	"github.com/galgranov/gke-analyzer/internal/domain/models"
)

// ErrNotFound is returned when a pod is absent or the id is malformed.
// The two cases are deliberately conflated: callers see 404 for both.
var ErrNotFound = apperr.New(apperr.NotFound, "pod not found")

// Store provides CRUD and filter operations over the pods collection.
// Pods have no uniqueness constraints; the same name may appear in
// several namespaces or clusters.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("pods")}
}

// Create stamps record timestamps, inserts, and returns the stored pod
// with its generated id.
func (s *Store) Create(ctx context.Context, p models.Pod) (models.Pod, error) {
	p.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Pod{}, err
	}
	return p, nil
}

// List returns all pods.
func (s *Store) List(ctx context.Context) ([]models.Pod, error) {
	return s.find(ctx, bson.M{})
}

// ListByNamespace returns pods whose namespace matches exactly.
func (s *Store) ListByNamespace(ctx context.Context, namespace string) ([]models.Pod, error) {
	return s.find(ctx, bson.M{"namespace": namespace})
}

// ListByCluster returns pods whose cluster name matches exactly.
func (s *Store) ListByCluster(ctx context.Context, clusterName string) ([]models.Pod, error) {
	return s.find(ctx, bson.M{"clusterName": clusterName})
}

// ListByNode returns pods whose node name matches exactly.
func (s *Store) ListByNode(ctx context.Context, nodeName string) ([]models.Pod, error) {
	return s.find(ctx, bson.M{"nodeName": nodeName})
}

// ListByStatus returns pods whose status matches exactly.
func (s *Store) ListByStatus(ctx context.Context, status string) ([]models.Pod, error) {
	return s.find(ctx, bson.M{"status": status})
}

// GetByID loads a pod by its hex id. Malformed ids are ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Pod, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var p models.Pod
	err = s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateInput holds the partial fields accepted when updating a pod.
// Nil pointers leave the stored value untouched.
type UpdateInput struct {
	Name              *string
	Namespace         *string
	Status            *string
	ClusterName       *string
	NodeName          *string
	Labels            map[string]string
	Annotations       map[string]string
	CreationTimestamp *time.Time
	ContainerImages   []string
	Resources         *models.PodResources
	RestartCount      *int
	PodIP             *string
	HostIP            *string
}

// Update applies a partial $set merge, always bumping updatedAt, and
// returns the post-update record.
func (s *Store) Update(ctx context.Context, id string, in UpdateInput) (models.Pod, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Pod{}, ErrNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Namespace != nil {
		set["namespace"] = *in.Namespace
	}
	if in.Status != nil {
		set["status"] = *in.Status
	}
	if in.ClusterName != nil {
		set["clusterName"] = *in.ClusterName
	}
	if in.NodeName != nil {
		set["nodeName"] = *in.NodeName
	}
	if in.Labels != nil {
		set["labels"] = in.Labels
	}
	if in.Annotations != nil {
		set["annotations"] = in.Annotations
	}
	if in.CreationTimestamp != nil {
		set["creationTimestamp"] = *in.CreationTimestamp
	}
	if in.ContainerImages != nil {
		set["containerImages"] = in.ContainerImages
	}
	if in.Resources != nil {
		set["resources"] = in.Resources
	}
	if in.RestartCount != nil {
		set["restartCount"] = *in.RestartCount
	}
	if in.PodIP != nil {
		set["podIP"] = *in.PodIP
	}
	if in.HostIP != nil {
		set["hostIP"] = *in.HostIP
	}

	var p models.Pod
	after := options.After
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Pod{}, ErrNotFound
	}
	if err != nil {
		return models.Pod{}, err
	}
	return p, nil
}

// Delete removes a pod and returns the removed record.
func (s *Store) Delete(ctx context.Context, id string) (models.Pod, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Pod{}, ErrNotFound
	}
	var p models.Pod
	err = s.c.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Pod{}, ErrNotFound
	}
	if err != nil {
		return models.Pod{}, err
	}
	return p, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Pod, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	pods := []models.Pod{}
	if err := cur.All(ctx, &pods); err != nil {
		return nil, err
	}
	return pods, nil
}
