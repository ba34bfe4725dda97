package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"studiosite/internal/apperr"
)

func TestErr(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", apperr.Invalidf("title: cannot be blank."), http.StatusBadRequest, "title: cannot be blank."},
		{"not found", apperr.NotFound("blog post"), http.StatusNotFound, "blog post not found"},
		{"unauthorized", fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized), http.StatusUnauthorized, "invalid credentials: unauthorized"},
		{"conflict", fmt.Errorf("create: %w", apperr.ErrConflict), http.StatusConflict, "conflicts with an existing document"},
		{"internal", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Err(rr, httptest.NewRequest(http.MethodGet, "/api/blog", nil), tt.err)

			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			var body ErrorBody
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Error != tt.message {
				t.Errorf("error = %q, want %q", body.Error, tt.message)
			}
		})
	}
}

func TestJSONContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusCreated, map[string]int{"likes": 3})
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rr.Body.String() != "{\"likes\":3}\n" {
		t.Errorf("body = %q", rr.Body.String())
	}
}
