package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/galgranov/gke-analyzer/internal/app/system/apperr"
)

func TestKindOf(t *testing.T) {
	if got := apperr.KindOf(apperr.New(apperr.NotFound, "pod not found")); got != apperr.NotFound {
		t.Errorf("KindOf: got %v, want NotFound", got)
	}
	if got := apperr.KindOf(errors.New("boom")); got != apperr.Internal {
		t.Errorf("KindOf(plain error): got %v, want Internal", got)
	}
	if got := apperr.KindOf(nil); got != apperr.Internal {
		t.Errorf("KindOf(nil): got %v, want Internal", got)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading user: %w", apperr.New(apperr.Conflict, "email already exists"))
	if !apperr.IsKind(err, apperr.Conflict) {
		t.Error("expected Conflict kind through wrapping")
	}
}

func TestWrap_HidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Wrap(apperr.Authentication, "registration failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Message != "registration failed" {
		t.Errorf("Message: got %q", err.Message)
	}
}

func TestMissingRolesError(t *testing.T) {
	err := apperr.MissingRolesError([]string{"admin"})
	if err.Kind != apperr.Authorization {
		t.Errorf("Kind: got %v, want Authorization", err.Kind)
	}
	if len(err.MissingRoles) != 1 || err.MissingRoles[0] != "admin" {
		t.Errorf("MissingRoles: got %v", err.MissingRoles)
	}
	if err.Message != "user does not have required role: admin" {
		t.Errorf("Message: got %q", err.Message)
	}
}

func TestSentinelIs(t *testing.T) {
	var ErrNotFound = apperr.New(apperr.NotFound, "user not found")

	wrapped := fmt.Errorf("get profile: %w", ErrNotFound)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("expected errors.Is to match the sentinel through wrapping")
	}
}
