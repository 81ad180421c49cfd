package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/galgranov/gke-analyzer/internal/app/store/users"
	"github.com/galgranov/gke-analyzer/internal/app/system/apperr"
	sysauth "github.com/galgranov/gke-analyzer/internal/app/system/auth"
	"github.com/galgranov/gke-analyzer/internal/domain/models"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.Authentication, "invalid credentials")
	ErrInactiveUser       = apperr.New(apperr.Authentication, "user is inactive")
	ErrUnknownUser        = apperr.New(apperr.Authentication, "user not found")
)

// Session is the login/register response: a signed bearer token plus the
// user record it represents, password stripped.
type Session struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

// Service composes the user store and the token signer.
type Service struct {
	users  *userstore.Store
	tokens *sysauth.TokenManager
	log    *zap.Logger
}

func NewService(users *userstore.Store, tokens *sysauth.TokenManager, logger *zap.Logger) *Service {
	return &Service{users: users, tokens: tokens, log: logger}
}

// ValidateCredentials looks up a user by username or email and checks the
// password. Absent user, bad password, and inactive account all fail with
// an authentication error; the first two share one message so callers
// cannot probe which identifiers exist.
func (s *Service) ValidateCredentials(ctx context.Context, identifier, password string) (models.User, error) {
	u, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if errors.Is(err, userstore.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	if !s.users.VerifyPassword(password, u.Password) {
		return models.User{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return models.User{}, ErrInactiveUser
	}
	return u.Sanitized(), nil
}

// Login validates credentials and issues a signed token whose subject is
// the user's id.
func (s *Service) Login(ctx context.Context, identifier, password string) (*Session, error) {
	u, err := s.ValidateCredentials(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID.Hex(), u.Username)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, User: u}, nil
}

// RegisterInput holds the self-registration fields. Registration always
// produces a plain active "user"; roles cannot be chosen here.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates the account and returns a session identical in shape
// to Login. Uniqueness conflicts pass through as 409. Any other creation
// failure is logged with its cause and surfaced to the caller as a
// generic authentication failure; the root cause is deliberately not
// exposed.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	active := true
	u, err := s.users.Create(ctx, userstore.CreateInput{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Roles:     []string{userstore.DefaultRole},
		IsActive:  &active,
	})
	if err != nil {
		if apperr.IsKind(err, apperr.Conflict) {
			return nil, err
		}
		s.log.Error("registration failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.Authentication, "registration failed", err)
	}

	token, err := s.tokens.Issue(u.ID.Hex(), u.Username)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, User: u.Sanitized()}, nil
}

// Profile fetches the user behind an authenticated request. A missing
// user is an authentication failure here, not a 404: the caller's token
// no longer maps to an account.
func (s *Service) Profile(ctx context.Context, userID string) (models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, userstore.ErrNotFound) {
		return models.User{}, ErrUnknownUser
	}
	if err != nil {
		return models.User{}, err
	}
	return u.Sanitized(), nil
}
