package userstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/galgranov/gke-analyzer/internal/app/system/auth"
	"github.com/galgranov/gke-analyzer/internal/app/system/timeouts"
	"github.com/galgranov/gke-analyzer/internal/domain/models"
)

// Fetcher implements auth.UserFetcher so the token middleware resolves
// each verified token to fresh user data. Role changes and deactivated
// accounts take effect on the next request, not at token expiry.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchUser retrieves a user by ID and returns nil if the id is
// malformed, the user is not found, the account is inactive, or any
// error occurs. This implements auth.UserFetcher.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.Principal {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":       1,
		"username":  1,
		"email":     1,
		"firstName": 1,
		"lastName":  1,
		"roles":     1,
		"isActive":  1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		return nil
	}

	if !u.IsActive {
		return nil
	}

	return &auth.Principal{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.Roles,
	}
}
