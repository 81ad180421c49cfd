package users

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/galgranov/gke-analyzer/internal/app/features/auth"
	"github.com/galgranov/gke-analyzer/internal/app/store/users"
	"github.com/galgranov/gke-analyzer/internal/app/system/apperr"
	"github.com/galgranov/gke-analyzer/internal/app/system/httpjson"
	"github.com/galgranov/gke-analyzer/internal/app/system/timeouts"
	"github.com/galgranov/gke-analyzer/internal/domain/models"
)

// Handler serves the /users endpoints. Password hashes never appear in
// responses: records pass through Sanitized before encoding.
type Handler struct {
	store *userstore.Store
	Log   *zap.Logger
}

func NewHandler(store *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, Log: logger}
}

type createUserRequest struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	IsActive  *bool    `json:"isActive,omitempty"`
}

func (req *createUserRequest) validate() error {
	if strings.TrimSpace(req.Username) == "" {
		return apperr.New(apperr.Validation, "username is required")
	}
	if !auth.ValidEmail(req.Email) {
		return apperr.New(apperr.Validation, "email must be a valid email address")
	}
	if len(req.Password) < 8 {
		return apperr.New(apperr.Validation, "password must be at least 8 characters")
	}
	return nil
}

// Create handles POST /users (admin only). Unlike self-registration,
// admins may set roles and the active flag directly.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
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

	user, err := h.store.Create(ctx, userstore.CreateInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Roles:     req.Roles,
		IsActive:  req.IsActive,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, user.Sanitized())
}

// List handles GET /users (admin only).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.store.List(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	httpjson.Write(w, http.StatusOK, out)
}

// Get handles GET /users/{id} (any authenticated user).
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.store.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, user.Sanitized())
}

type updateUserRequest struct {
	Username  *string  `json:"username,omitempty"`
	Email     *string  `json:"email,omitempty"`
	Password  *string  `json:"password,omitempty"`
	FirstName *string  `json:"firstName,omitempty"`
	LastName  *string  `json:"lastName,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	IsActive  *bool    `json:"isActive,omitempty"`
}

func (req *updateUserRequest) validate() error {
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		return apperr.New(apperr.Validation, "username must not be empty")
	}
	if req.Email != nil && !auth.ValidEmail(*req.Email) {
		return apperr.New(apperr.Validation, "email must be a valid email address")
	}
	if req.Password != nil && len(*req.Password) < 8 {
		return apperr.New(apperr.Validation, "password must be at least 8 characters")
	}
	return nil
}

// Update handles PATCH /users/{id}: a partial merge; a provided password
// is rehashed by the store.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
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

	user, err := h.store.Update(ctx, chi.URLParam(r, "id"), userstore.UpdateInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Roles:     req.Roles,
		IsActive:  req.IsActive,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, user.Sanitized())
}

// Delete handles DELETE /users/{id} (admin only) and returns the removed
// record.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.store.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, user.Sanitized())
}
