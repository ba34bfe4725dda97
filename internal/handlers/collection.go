// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studiosite/internal/apperr"
	"studiosite/internal/content"
	"studiosite/internal/metrics"
	"studiosite/internal/middleware"
	"studiosite/internal/models"
	"studiosite/internal/respond"
	"studiosite/internal/upload"
)

// ListResponse is the body of collection list endpoints.
type ListResponse[T any] struct {
	Data       []T               `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

// ItemResponse is the body of write endpoints.
type ItemResponse[T any] struct {
	Data *T `json:"data"`
}

// DetailResponse is the body of the single-document read endpoint.
type DetailResponse[T any] struct {
	Data    *T  `json:"data"`
	Related []T `json:"related"`
}

// CollectionRoutes is the handler set of one content collection, as
// mounted under /api/{name}.
type CollectionRoutes interface {
	Name() models.Collection
	List(http.ResponseWriter, *http.Request)
	Get(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
	Like(http.ResponseWriter, *http.Request)
	Share(http.ResponseWriter, *http.Request)
}

// Collection serves the REST endpoints of one content collection.
type Collection[T any, PT interface {
	*T
	models.Entry
}] struct {
	svc     *content.Service[T, PT]
	uploads *upload.Service
	// highlight is the query parameter of the collection's highlight flag.
	highlight string
	share     func(ctx context.Context, id uuid.UUID) (int, error)
}

// NewCollection creates the handler group for svc. uploads may be nil, in
// which case multipart creates are rejected.
func NewCollection[T any, PT interface {
	*T
	models.Entry
}](svc *content.Service[T, PT], uploads *upload.Service, highlight string) *Collection[T, PT] {
	return &Collection[T, PT]{svc: svc, uploads: uploads, highlight: highlight}
}

// WithShare enables the share counter endpoint.
func (c *Collection[T, PT]) WithShare(fn func(ctx context.Context, id uuid.UUID) (int, error)) *Collection[T, PT] {
	c.share = fn
	return c
}

// Name returns the collection's path segment.
func (c *Collection[T, PT]) Name() models.Collection { return c.svc.Collection() }

// List handles GET /api/{collection}.
func (c *Collection[T, PT]) List(w http.ResponseWriter, r *http.Request) {
	items, page, err := c.svc.List(r.Context(), listQuery(r, c.highlight))
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, ListResponse[T]{Data: items, Pagination: page})
}

// Get handles GET /api/{collection}/{id}; the parameter may be an ID or a slug.
func (c *Collection[T, PT]) Get(w http.ResponseWriter, r *http.Request) {
	doc, related, err := c.svc.Get(r.Context(), chi.URLParam(r, "id"), middleware.IsAdmin(r))
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	if related == nil {
		related = []T{}
	}
	respond.JSON(w, http.StatusOK, DetailResponse[T]{Data: doc, Related: related})
}

// Create handles POST /api/{collection} with a JSON body or a multipart
// form holding the document in a "data" part plus "image" and "images" files.
func (c *Collection[T, PT]) Create(w http.ResponseWriter, r *http.Request) {
	doc := PT(new(T))

	var stored []models.Media
	if isMultipart(r) {
		var err error
		stored, err = c.decodeMultipart(w, r, doc)
		if err != nil {
			writeUploadErr(w, r, err)
			return
		}
	} else if err := decodeJSON(w, r, doc); err != nil {
		respond.Err(w, r, err)
		return
	}

	out, err := c.svc.Create(r.Context(), doc)
	if err != nil {
		c.discard(r.Context(), stored)
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, ItemResponse[T]{Data: out})
}

// decodeMultipart fills doc from the "data" part and stores the attached
// images under the collection's upload category.
func (c *Collection[T, PT]) decodeMultipart(w http.ResponseWriter, r *http.Request, doc PT) ([]models.Media, error) {
	if c.uploads == nil {
		return nil, apperr.Invalidf("file uploads are not configured")
	}
	limit := c.uploads.MaxSize()*int64(c.uploads.MaxFiles()+1) + maxJSONBody
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, fmt.Errorf("%w: request exceeds %d MB", upload.ErrTooLarge, limit>>20)
		}
		return nil, apperr.Invalidf("invalid multipart form: %v", err)
	}
	defer r.MultipartForm.RemoveAll()

	if data := r.FormValue("data"); data != "" {
		if err := json.Unmarshal([]byte(data), doc); err != nil {
			return nil, apperr.Invalidf("invalid JSON in data field: %v", err)
		}
	}

	category := string(c.svc.Collection())
	var stored []models.Media
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		m, err := c.uploads.SaveFile(r.Context(), category, files[0])
		if err != nil {
			return nil, err
		}
		stored = append(stored, *m)
		doc.SetImage(m.URL)
	}
	if files := r.MultipartForm.File["images"]; len(files) > 0 {
		ms, err := c.uploads.SaveFiles(r.Context(), category, files)
		if err != nil {
			c.discard(r.Context(), stored)
			return nil, err
		}
		for _, m := range ms {
			doc.AddImages(m.URL)
		}
		stored = append(stored, ms...)
	}
	return stored, nil
}

// discard removes uploads stored for a document that was then rejected.
func (c *Collection[T, PT]) discard(ctx context.Context, stored []models.Media) {
	for _, m := range stored {
		if _, err := c.uploads.Delete(ctx, m.Path); err != nil {
			slog.Warn("orphan upload cleanup failed", "path", m.Path, "error", err)
		}
	}
}

// Update handles PUT /api/{collection}/{id}. Fields present in the body
// overwrite the stored document.
func (c *Collection[T, PT]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, c.svc.Label())
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	out, err := c.svc.Update(r.Context(), id, func(doc PT) error {
		if err := json.Unmarshal(body, doc); err != nil {
			return apperr.Invalidf("invalid JSON: %v", err)
		}
		return nil
	})
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, ItemResponse[T]{Data: out})
}

// Delete handles DELETE /api/{collection}/{id}.
func (c *Collection[T, PT]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, c.svc.Label())
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	if err := c.svc.Delete(r.Context(), id); err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": c.svc.Label() + " deleted"})
}

// Like handles POST /api/{collection}/{id}/like.
func (c *Collection[T, PT]) Like(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, c.svc.Label())
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	n, err := c.svc.Like(r.Context(), id)
	if err != nil {
		respond.Err(w, r, notFoundAs(err, c.svc.Label()))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int{"likes": n})
}

// Share handles POST /api/portfolio/{id}/share.
func (c *Collection[T, PT]) Share(w http.ResponseWriter, r *http.Request) {
	if c.share == nil {
		respond.Error(w, http.StatusNotFound, "not found")
		return
	}
	id, err := pathID(r, c.svc.Label())
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	n, err := c.share(r.Context(), id)
	if err != nil {
		respond.Err(w, r, notFoundAs(err, c.svc.Label()))
		return
	}
	metrics.Interaction(string(c.svc.Collection()), "share")
	respond.JSON(w, http.StatusOK, map[string]int{"shares": n})
}

// notFoundAs relabels a store-level not-found error with the document label.
func notFoundAs(err error, label string) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound(label)
	}
	return err
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}
