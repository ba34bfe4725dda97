// Package handlers implements the JSON HTTP API: content collections,
// contact messages, the admin back office, authentication and uploads.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studiosite/internal/apperr"
	"studiosite/internal/middleware"
	"studiosite/internal/models"
)

// maxJSONBody limits JSON request bodies (1 MB).
const maxJSONBody = 1 << 20

// decodeJSON reads a single JSON document from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return decodeBytes(http.MaxBytesReader(w, r.Body, maxJSONBody), v)
}

func decodeBytes(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			return apperr.Invalidf("request body too large")
		case errors.Is(err, io.EOF):
			return apperr.Invalidf("request body is empty")
		default:
			return apperr.Invalidf("invalid JSON: %v", err)
		}
	}
	return nil
}

// readBody reads the raw JSON request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, apperr.Invalidf("request body too large")
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, apperr.Invalidf("request body is empty")
	}
	return body, nil
}

// pathID parses the {id} URL parameter. A malformed ID cannot match any
// document, so it is reported as not found.
func pathID(r *http.Request, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound(what)
	}
	return id, nil
}

// parseIDs converts request IDs, rejecting malformed ones.
func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, apperr.Invalidf("invalid id %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// listQuery reads the list filters. highlight names the boolean flag the
// collection filters on ("featured" or "popular"). Hidden documents and
// the status filter are honoured only for an authenticated admin.
func listQuery(r *http.Request, highlight string) models.ListQuery {
	v := r.URL.Query()
	q := models.ListQuery{
		Category: strings.TrimSpace(v.Get("category")),
		Search:   strings.TrimSpace(v.Get("search")),
		Page:     atoi(v.Get("page")),
		Limit:    atoi(v.Get("limit")),
	}
	if q.Category == "All" {
		q.Category = ""
	}
	if highlight != "" {
		if b, err := strconv.ParseBool(v.Get(highlight)); err == nil {
			q.Highlighted = &b
		}
	}
	if middleware.IsAdmin(r) {
		q.IncludeHidden = v.Get("admin") == "true"
		q.Status = v.Get("status")
	}
	return q
}

// atoi parses a non-negative integer; anything else is 0 (use the default).
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
