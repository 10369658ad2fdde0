package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestUnauthorized(t *testing.T) {
	t.Parallel()
	err := Unauthorized()

	if !errors.Is(err, ErrUnauthorized) {
		t.Error("expected error to match ErrUnauthorized")
	}
	if err.Error() != "unauthorized" {
		t.Errorf("expected opaque message, got %q", err.Error())
	}
}

func TestNotFound(t *testing.T) {
	t.Parallel()
	err := NotFound("job", "abc123")

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected error to match ErrNotFound")
	}
	if err.Error() != "job abc123 not found" {
		t.Errorf("unexpected message %q", err.Error())
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected error to be *Error")
	}
	if appErr.Resource != "job" {
		t.Errorf("expected resource 'job', got %q", appErr.Resource)
	}
}

func TestCollaboratorWrapsCause(t *testing.T) {
	t.Parallel()
	cause := fmt.Errorf("connection refused")
	err := Collaborator("workflow.submit", cause)

	if !errors.Is(err, ErrCollaborator) {
		t.Error("expected error to match ErrCollaborator")
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected error to be *Error")
	}
	if appErr.Op != "workflow.submit" || appErr.Cause != cause {
		t.Errorf("expected op and cause to be preserved, got %+v", appErr)
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{Validation("name", "name is required"), http.StatusBadRequest},
		{Unauthorized(), http.StatusUnauthorized},
		{NotFound("job", "x"), http.StatusNotFound},
		{NotReady("x"), http.StatusConflict},
		{Collaborator("workflow.list", errors.New("boom")), http.StatusBadGateway},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
