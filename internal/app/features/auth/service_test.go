package auth_test

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/galgranov/gke-analyzer/internal/app/features/auth"
	userstore "github.com/galgranov/gke-analyzer/internal/app/store/users"
	"github.com/galgranov/gke-analyzer/internal/app/system/apperr"
	sysauth "github.com/galgranov/gke-analyzer/internal/app/system/auth"
	"github.com/galgranov/gke-analyzer/internal/testutil"
)

func newTestService(t *testing.T) (*auth.Service, *sysauth.TokenManager, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tokens := sysauth.NewTokenManager("test-secret", time.Hour)
	svc := auth.NewService(userstore.New(db, bcrypt.MinCost), tokens, zap.NewNop())
	return svc, tokens, db
}

func TestValidateCredentials(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	fx.CreateUser(ctx, "alice", "alice@example.com", "password123")

	byName, err := svc.ValidateCredentials(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("ValidateCredentials(username) error: %v", err)
	}
	if byName.Password != "" {
		t.Error("password hash leaked from ValidateCredentials")
	}

	if _, err := svc.ValidateCredentials(ctx, "alice@example.com", "password123"); err != nil {
		t.Fatalf("ValidateCredentials(email) error: %v", err)
	}

	if _, err := svc.ValidateCredentials(ctx, "alice", "wrong-password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("bad password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.ValidateCredentials(ctx, "nobody", "password123"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateCredentials_InactiveUser(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	fx.CreateInactiveUser(ctx, "bob", "bob@example.com", "password123")

	_, err := svc.ValidateCredentials(ctx, "bob", "password123")
	if !errors.Is(err, auth.ErrInactiveUser) {
		t.Fatalf("error = %v, want ErrInactiveUser", err)
	}
	if apperr.KindOf(err) != apperr.Authentication {
		t.Errorf("kind = %v, want Authentication", apperr.KindOf(err))
	}
}

func TestLogin_TokenSubjectIsUserID(t *testing.T) {
	svc, tokens, db := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	created := fx.CreateUser(ctx, "alice", "alice@example.com", "password123")

	session, err := svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if session.AccessToken == "" {
		t.Fatal("empty access token")
	}
	if session.User.Password != "" {
		t.Error("password hash leaked from Login")
	}

	claims, err := tokens.Parse(session.AccessToken)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if claims.Subject != created.ID.Hex() {
		t.Errorf("token subject = %q, want %q", claims.Subject, created.ID.Hex())
	}
	if claims.Username != "alice" {
		t.Errorf("token username = %q, want alice", claims.Username)
	}
}

func TestRegister_ThenLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := auth.RegisterInput{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "password123",
	}
	session, err := svc.Register(ctx, in)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if session.AccessToken == "" {
		t.Fatal("Register() returned no token")
	}
	if len(session.User.Roles) != 1 || session.User.Roles[0] != "user" {
		t.Errorf("Roles = %v, want [user]", session.User.Roles)
	}
	if !session.User.IsActive {
		t.Error("registered user not active")
	}

	if _, err := svc.Login(ctx, "carol", "password123"); err != nil {
		t.Fatalf("Login() after Register() error: %v", err)
	}

	// Registering the same identity again is a conflict, not a generic
	// authentication failure.
	_, err = svc.Register(ctx, in)
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("duplicate Register() kind = %v, want Conflict", apperr.KindOf(err))
	}
}

func TestProfile(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	created := fx.CreateUser(ctx, "alice", "alice@example.com", "password123")

	u, err := svc.Profile(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("Profile() error: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("Username = %q, want alice", u.Username)
	}
	if u.Password != "" {
		t.Error("password hash leaked from Profile")
	}

	if _, err := svc.Profile(ctx, "aaaaaaaaaaaaaaaaaaaaaaaa"); !errors.Is(err, auth.ErrUnknownUser) {
		t.Fatalf("Profile(missing) error = %v, want ErrUnknownUser", err)
	}
}
