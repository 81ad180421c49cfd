// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that can authenticate against the API.
//
// Username and email are each unique across all users. Uniqueness is
// enforced by a pre-check at write time in the user store, not by a
// database constraint, so two concurrent creates can race (accepted).
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`

	// Password holds the bcrypt hash. It is never serialized to JSON and
	// is blanked before user records leave the service layer.
	Password string `bson:"password" json:"-"`

	FirstName string `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string `bson:"lastName,omitempty" json:"lastName,omitempty"`

	Roles    []string `bson:"roles" json:"roles"`
	IsActive bool     `bson:"isActive" json:"isActive"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Sanitized returns a copy of the user with the password hash removed.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// HasRole reports whether the user holds the given role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
