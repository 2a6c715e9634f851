package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", ValidationError("name is required"), http.StatusBadRequest},
		{"parse", ParseError("malformed json", errors.New("eof")), http.StatusBadRequest},
		{"unauthenticated", UnauthenticatedError("login required"), http.StatusUnauthorized},
		{"forbidden", ForbiddenError("not the owner"), http.StatusForbidden},
		{"not found", NotFoundError("widget %d not found", 7), http.StatusNotFound},
		{"method not allowed", MethodNotAllowedError("TRACE"), http.StatusMethodNotAllowed},
		{"internal", InternalError("boom", nil), http.StatusInternalServerError},
		{"foreign error", errors.New("disk on fire"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("show: %w", NotFoundError("gone")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPublicMessageHidesServerErrors(t *testing.T) {
	err := InternalError("query failed", errors.New("password=hunter2"))
	if got := PublicMessage(err); got != "Internal Server Error" {
		t.Errorf("PublicMessage() = %q", got)
	}
	if got := PublicMessage(errors.New("raw")); got != "Internal Server Error" {
		t.Errorf("PublicMessage(raw) = %q", got)
	}
	if got := PublicMessage(ValidationError("name is required")); got != "name is required" {
		t.Errorf("PublicMessage(validation) = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("eof")
	err := ParseError("malformed json", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Error() != "[PARSE] malformed json: eof" {
		t.Errorf("Error() = %q", err.Error())
	}
}
