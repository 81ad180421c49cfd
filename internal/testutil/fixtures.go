package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/galgranov/gke-analyzer/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given credentials and roles. The
// password is stored bcrypt-hashed at MinCost to keep tests fast.
func (f *Fixtures) CreateUser(ctx context.Context, username, email, password string, roles ...string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash fixture password: %v", err)
	}
	if len(roles) == 0 {
		roles = []string{"user"}
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Password:  string(hash),
		Roles:     roles,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin inserts a user carrying both the user and admin roles.
func (f *Fixtures) CreateAdmin(ctx context.Context, username, email, password string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, email, password, "user", "admin")
}

// CreateInactiveUser inserts a deactivated user.
func (f *Fixtures) CreateInactiveUser(ctx context.Context, username, email, password string) models.User {
	f.t.Helper()

	user := f.CreateUser(ctx, username, email, password)
	user.IsActive = false
	if _, err := f.db.Collection("users").ReplaceOne(ctx, primitive.M{"_id": user.ID}, user); err != nil {
		f.t.Fatalf("failed to deactivate test user: %v", err)
	}
	return user
}

// CreatePod inserts a pod with the given identity and status.
func (f *Fixtures) CreatePod(ctx context.Context, name, namespace, status string) models.Pod {
	f.t.Helper()

	now := time.Now().UTC()
	pod := models.Pod{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Namespace: namespace,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("pods").InsertOne(ctx, pod); err != nil {
		f.t.Fatalf("failed to create test pod: %v", err)
	}
	return pod
}

// CreatePodOn inserts a pod pinned to a cluster and node, for filter tests.
func (f *Fixtures) CreatePodOn(ctx context.Context, name, namespace, status, cluster, node string) models.Pod {
	f.t.Helper()

	pod := f.CreatePod(ctx, name, namespace, status)
	pod.ClusterName = cluster
	pod.NodeName = node
	if _, err := f.db.Collection("pods").ReplaceOne(ctx, primitive.M{"_id": pod.ID}, pod); err != nil {
		f.t.Fatalf("failed to update test pod: %v", err)
	}
	return pod
}
