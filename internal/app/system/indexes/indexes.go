// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

Note the users indexes are NOT unique: username/email uniqueness is
enforced by a read-then-write pre-check in the user store, and the
accepted concurrent-create race is part of the system's contract. A
unique index here would change write-path error behavior.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensurePods(ctx, db); err != nil {
		problems = append(problems, "pods: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("username_lookup"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_lookup"),
		},
	})
}

func ensurePods(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("pods"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "namespace", Value: 1}},
			Options: options.Index().SetName("namespace_lookup"),
		},
		{
			Keys:    bson.D{{Key: "clusterName", Value: 1}},
			Options: options.Index().SetName("cluster_lookup"),
		},
		{
			Keys:    bson.D{{Key: "nodeName", Value: 1}},
			Options: options.Index().SetName("node_lookup"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_lookup"),
		},
	})
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		zap.L().Info("ensuring index",
			zap.String("collection", coll.Name()),
			zap.String("index", name))

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			// An index with the same keys under a different name (or
			// different options) reports a conflict; treat as present.
			if isOptionsConflictErr(err) {
				zap.L().Info("index already present with different options",
					zap.String("collection", coll.Name()),
					zap.String("index", name))
				continue
			}
			errs = append(errs, name+": "+err.Error())
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with
// the same keys already exists under a different name.
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict") ||
		strings.Contains(err.Error(), "IndexKeySpecsConflict")
}
