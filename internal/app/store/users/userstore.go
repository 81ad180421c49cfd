package userstore

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/galgranov/gke-analyzer/internal/app/system/apperr"
	"github.com/galgranov/gke-analyzer/internal/domain/models"
)

// Sentinel errors returned by the store. They carry the taxonomy kind so
// the HTTP layer can translate them without a type switch per store.
var (
	ErrNotFound          = apperr.New(apperr.NotFound, "user not found")
	ErrDuplicateUsername = apperr.New(apperr.Conflict, "username already exists")
	ErrDuplicateEmail    = apperr.New(apperr.Conflict, "email already exists")
)

// DefaultRole is assigned when a new user specifies no roles.
const DefaultRole = "user"

// Store provides CRUD and lookup operations over the users collection.
type Store struct {
	c    *mongo.Collection
	cost int // bcrypt cost factor
}

// New returns a Store using the given bcrypt cost. A cost outside
// bcrypt's supported range falls back to bcrypt.DefaultCost.
func New(db *mongo.Database, bcryptCost int) *Store {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{c: db.Collection("users"), cost: bcryptCost}
}

// CreateInput holds the fields accepted when creating a user.
// Password is plaintext here and hashed before insert.
type CreateInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Roles     []string
	IsActive  *bool
}

// Create inserts a new user after checking username/email uniqueness with
// a single $or lookup. The check is read-then-write with no transactional
// guarantee; concurrent creates with the same username can both pass.
func (s *Store) Create(ctx context.Context, in CreateInput) (models.User, error) {
	existing, err := s.findConflict(ctx, in.Username, in.Email, nil)
	if err != nil {
		return models.User{}, err
	}
	if existing != nil {
		if existing.Username == in.Username {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, ErrDuplicateEmail
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	roles := in.Roles
	if len(roles) == 0 {
		roles = []string{DefaultRole}
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Roles:     roles,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// UpdateInput holds the partial fields accepted when updating a user.
// Nil pointers leave the stored value untouched.
type UpdateInput struct {
	Username  *string
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Roles     []string
	IsActive  *bool
}

// Update applies a partial update and returns the post-update record.
// Username/email changes re-check uniqueness excluding the target's own
// id. Malformed ids are reported as ErrNotFound, matching reads.
func (s *Store) Update(ctx context.Context, id string, in UpdateInput) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}

	if in.Username != nil || in.Email != nil {
		var username, email string
		if in.Username != nil {
			username = *in.Username
		}
		if in.Email != nil {
			email = *in.Email
		}
		existing, err := s.findConflict(ctx, username, email, &oid)
		if err != nil {
			return models.User{}, err
		}
		if existing != nil {
			if in.Username != nil && existing.Username == *in.Username {
				return models.User{}, ErrDuplicateUsername
			}
			return models.User{}, ErrDuplicateEmail
		}
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if in.Username != nil {
		set["username"] = *in.Username
	}
	if in.Email != nil {
		set["email"] = *in.Email
	}
	if in.Password != nil {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return models.User{}, err
		}
		set["password"] = hash
	}
	if in.FirstName != nil {
		set["firstName"] = *in.FirstName
	}
	if in.LastName != nil {
		set["lastName"] = *in.LastName
	}
	if in.Roles != nil {
		set["roles"] = in.Roles
	}
	if in.IsActive != nil {
		set["isActive"] = *in.IsActive
	}

	var u models.User
	after := options.After
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Delete removes a user and returns the removed record.
func (s *Store) Delete(ctx context.Context, id string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}
	var u models.User
	err = s.c.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by its hex id. Malformed ids are ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var u models.User
	err = s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all users.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetByUsername looks up a user by exact username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getOne(ctx, bson.M{"username": username})
}

// GetByEmail looks up a user by exact email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, bson.M{"email": email})
}

// GetByUsernameOrEmail looks up a user whose username or email matches the
// given identifier. Login accepts either.
func (s *Store) GetByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error) {
	return s.getOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}})
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func (s *Store) VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

func (s *Store) hashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Store) getOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// findConflict returns a user holding the given username or email,
// excluding excludeID when set. Blank values are skipped so a partial
// update only checks the fields being changed.
func (s *Store) findConflict(ctx context.Context, username, email string, excludeID *primitive.ObjectID) (*models.User, error) {
	var or bson.A
	if strings.TrimSpace(username) != "" {
		or = append(or, bson.M{"username": username})
	}
	if strings.TrimSpace(email) != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, nil
	}

	filter := bson.M{"$or": or}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	var u models.User
	err := s.c.FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
