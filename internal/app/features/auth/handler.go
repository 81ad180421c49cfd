package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/galgranov/gke-analyzer/internal/app/system/apperr"
	sysauth "github.com/galgranov/gke-analyzer/internal/app/system/auth"
	"github.com/galgranov/gke-analyzer/internal/app/system/httpjson"
	"github.com/galgranov/gke-analyzer/internal/app/system/timeouts"
)

// Handler serves the /auth endpoints.
type Handler struct {
	svc *Service
	Log *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, Log: logger}
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if strings.TrimSpace(req.UsernameOrEmail) == "" || req.Password == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "usernameOrEmail and password are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	session, err := h.svc.Login(ctx, req.UsernameOrEmail, req.Password)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, session)
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

func (req *registerRequest) validate() error {
	if strings.TrimSpace(req.Username) == "" {
		return apperr.New(apperr.Validation, "username is required")
	}
	if !ValidEmail(req.Email) {
		return apperr.New(apperr.Validation, "email must be a valid email address")
	}
	if len(req.Password) < 8 {
		return apperr.New(apperr.Validation, "password must be at least 8 characters")
	}
	return nil
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := req.validate(); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	session, err := h.svc.Register(ctx, RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, session)
}

// Profile handles GET /auth/profile. The token middleware has already
// resolved the caller; this re-reads the record so the response reflects
// current data rather than token claims.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := sysauth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, h.Log, apperr.New(apperr.Authentication, "missing bearer token"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.svc.Profile(ctx, p.ID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}

// ValidEmail is a light structural check: one "@" with something on both
// sides and a dot in the domain. Deliverability is not our problem.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t")
}
