package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"studiosite/internal/models"
)

// Params are the list filters. Zero values are omitted.
type Params struct {
	Category string
	// Highlighted filters on the collection's flag: featured, or popular
	// for services.
	Highlighted *bool
	Search      string
	Status      string
	Page        int
	Limit       int
	// Admin includes unpublished documents; it needs a session.
	Admin bool
}

func (p Params) values(highlight string) url.Values {
	v := url.Values{}
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.Highlighted != nil {
		v.Set(highlight, strconv.FormatBool(*p.Highlighted))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Admin {
		v.Set("admin", "true")
	}
	return v
}

// Resource is the typed API of one content collection.
type Resource[T any] struct {
	c         *Client
	name      models.Collection
	highlight string
}

func (r *Resource[T]) path(parts ...string) string {
	p := "/api/" + string(r.name)
	for _, s := range parts {
		p += "/" + url.PathEscape(s)
	}
	return p
}

// GetAll returns one page of the collection.
func (r *Resource[T]) GetAll(ctx context.Context, p Params) (*List[T], error) {
	raw, err := r.c.do(ctx, http.MethodGet, r.path(), p.values(r.highlight), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}

// GetByID fetches one document. The API counts a view for every fetch.
func (r *Resource[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	return r.get(ctx, id.String())
}

// GetBySlug fetches one document by slug through the same endpoint as GetByID.
func (r *Resource[T]) GetBySlug(ctx context.Context, slug string) (*T, error) {
	return r.get(ctx, slug)
}

func (r *Resource[T]) get(ctx context.Context, ident string) (*T, error) {
	raw, err := r.c.do(ctx, http.MethodGet, r.path(ident), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeItem[T](raw)
}

// Create stores a new document and returns it as saved.
func (r *Resource[T]) Create(ctx context.Context, doc T) (*T, error) {
	raw, err := r.c.do(ctx, http.MethodPost, r.path(), nil, doc)
	if err != nil {
		return nil, err
	}
	return decodeItem[T](raw)
}

// Update overwrites the fields present in patch, typically a map or a
// struct with omitempty fields.
func (r *Resource[T]) Update(ctx context.Context, id uuid.UUID, patch any) (*T, error) {
	raw, err := r.c.do(ctx, http.MethodPut, r.path(id.String()), nil, patch)
	if err != nil {
		return nil, err
	}
	return decodeItem[T](raw)
}

// Delete removes a document.
func (r *Resource[T]) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.path(id.String()), nil, nil)
	return err
}

// Like adds a like and returns the new total.
func (r *Resource[T]) Like(ctx context.Context, id uuid.UUID) (int, error) {
	return r.counter(ctx, id, "like", "likes")
}

func (r *Resource[T]) counter(ctx context.Context, id uuid.UUID, action, field string) (int, error) {
	raw, err := r.c.do(ctx, http.MethodPost, r.path(id.String(), action), nil, nil)
	if err != nil {
		return 0, err
	}
	var body map[string]int
	if err := json.Unmarshal(raw, &body); err != nil {
		return 0, fmt.Errorf("decode %s: %w", action, err)
	}
	return body[field], nil
}

// PortfolioResource adds the share counter to the portfolio API.
type PortfolioResource struct {
	*Resource[models.Portfolio]
}

// Share records a share and returns the new total.
func (r PortfolioResource) Share(ctx context.Context, id uuid.UUID) (int, error) {
	return r.counter(ctx, id, "share", "shares")
}

// Portfolio returns the portfolio API.
func (c *Client) Portfolio() PortfolioResource {
	return PortfolioResource{&Resource[models.Portfolio]{c: c, name: models.CollectionPortfolio, highlight: "featured"}}
}

// Services returns the services API.
func (c *Client) Services() *Resource[models.Service] {
	return &Resource[models.Service]{c: c, name: models.CollectionServices, highlight: "popular"}
}

// Blog returns the blog API.
func (c *Client) Blog() *Resource[models.Post] {
	return &Resource[models.Post]{c: c, name: models.CollectionBlog, highlight: "featured"}
}

// Testimonials returns the testimonials API.
func (c *Client) Testimonials() *Resource[models.Testimonial] {
	return &Resource[models.Testimonial]{c: c, name: models.CollectionTestimonials, highlight: "featured"}
}

// SendMessage submits the public contact form.
func (c *Client) SendMessage(ctx context.Context, m models.Message) error {
	_, err := c.do(ctx, http.MethodPost, "/api/contact", nil, m)
	return err
}

// Messages lists contact messages, optionally filtered by status. It needs a session.
func (c *Client) Messages(ctx context.Context, status string, page, limit int) (*List[models.Message], error) {
	p := Params{Status: status, Page: page, Limit: limit}
	raw, err := c.do(ctx, http.MethodGet, "/api/contact/messages", p.values(""), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Message](raw)
}
