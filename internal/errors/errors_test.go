package errors

import (
	"fmt"
	"testing"
)

func TestFolioError_Error(t *testing.T) {
	err := &FolioError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "section not found: intro",
	}

	expected := "NOT_FOUND: section not found: intro"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("status is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "status is required" {
		t.Errorf("Message = %q, want %q", err.Message, "status is required")
	}
}

func TestNewInvalidField(t *testing.T) {
	err := NewInvalidField("categories", "unknown category \"cooking\"")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Details["field"] != "categories" {
		t.Errorf("Details[field] = %v, want %q", err.Details["field"], "categories")
	}
}

func TestNewUnauthorized(t *testing.T) {
	err := NewUnauthorized()

	if err.Code != ErrUnauthorized {
		t.Errorf("Code = %q, want %q", err.Code, ErrUnauthorized)
	}
	if err.Status != 401 {
		t.Errorf("Status = %d, want 401", err.Status)
	}
}

func TestNewInvalidCredentials(t *testing.T) {
	err := NewInvalidCredentials()

	if err.Code != ErrUnauthorized {
		t.Errorf("Code = %q, want %q", err.Code, ErrUnauthorized)
	}
	if err.Message == NewUnauthorized().Message {
		t.Errorf("Message = %q, want a login-specific message", err.Message)
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("project", "my-site")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "my-site" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "my-site")
	}
	if err.Details["kind"] != "project" {
		t.Errorf("Details[kind] = %v, want %q", err.Details["kind"], "project")
	}
}

func TestNewConflict(t *testing.T) {
	err := NewConflict("project", "id", "my-site")

	if err.Code != ErrConflict {
		t.Errorf("Code = %q, want %q", err.Code, ErrConflict)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["value"] != "my-site" {
		t.Errorf("Details[value] = %v, want %q", err.Details["value"], "my-site")
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		err := NewInternal(fmt.Errorf("disk full"))

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want generic message", err.Message)
		}
		if err.Details["internal_error"] != "disk full" {
			t.Errorf("Details[internal_error] = %v, want %q", err.Details["internal_error"], "disk full")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)
		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		if !Is(NewNotFound("section", "x"), ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		if Is(NewNotFound("section", "x"), ErrConflict) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		if Is(fmt.Errorf("plain"), ErrNotFound) {
			t.Error("Is() = true, want false for non-FolioError")
		}
	})

	t.Run("wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("case study 2: %w", NewInvalidRequest("bad"))
		if !Is(wrapped, ErrInvalidRequest) {
			t.Error("Is() = false, want true for wrapped FolioError")
		}
	})
}
