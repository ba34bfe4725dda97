package client

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"studiosite/internal/fallback"
	"studiosite/internal/models"
)

// ErrNoContent means neither the API nor the bundled content had anything
// to show; public pages render their empty state.
var ErrNoContent = errors.New("client: no content available")

// Public reads content for the public site. When the API fails, it serves
// the bundled sample content instead and never returns a transport error.
type Public struct {
	c    *Client
	data func() (*fallback.Data, error)
}

// NewPublic wraps c with the bundled fallback content.
func NewPublic(c *Client) *Public {
	return &Public{c: c, data: fallback.Default}
}

// Portfolio lists portfolio items.
func (p *Public) Portfolio(ctx context.Context, params Params) (*List[models.Portfolio], error) {
	return publicList(ctx, p, p.c.Portfolio().Resource, params, func(d *fallback.Data) []models.Portfolio { return d.Portfolio })
}

// PortfolioItem fetches one portfolio item by ID or slug.
func (p *Public) PortfolioItem(ctx context.Context, ident string) (*models.Portfolio, error) {
	return publicGet(ctx, p, p.c.Portfolio().Resource, ident, func(d *fallback.Data) []models.Portfolio { return d.Portfolio })
}

// Services lists services.
func (p *Public) Services(ctx context.Context, params Params) (*List[models.Service], error) {
	return publicList(ctx, p, p.c.Services(), params, func(d *fallback.Data) []models.Service { return d.Services })
}

// Service fetches one service by ID or slug.
func (p *Public) Service(ctx context.Context, ident string) (*models.Service, error) {
	return publicGet(ctx, p, p.c.Services(), ident, func(d *fallback.Data) []models.Service { return d.Services })
}

// Posts lists blog posts.
func (p *Public) Posts(ctx context.Context, params Params) (*List[models.Post], error) {
	return publicList(ctx, p, p.c.Blog(), params, func(d *fallback.Data) []models.Post { return d.Blog })
}

// Post fetches one blog post by ID or slug.
func (p *Public) Post(ctx context.Context, ident string) (*models.Post, error) {
	return publicGet(ctx, p, p.c.Blog(), ident, func(d *fallback.Data) []models.Post { return d.Blog })
}

// Testimonials lists testimonials.
func (p *Public) Testimonials(ctx context.Context, params Params) (*List[models.Testimonial], error) {
	return publicList(ctx, p, p.c.Testimonials(), params, func(d *fallback.Data) []models.Testimonial { return d.Testimonials })
}

type entry[T any] interface {
	*T
	models.Entry
}

func publicList[T any, PT entry[T]](ctx context.Context, p *Public, r *Resource[T], params Params, pick func(*fallback.Data) []T) (*List[T], error) {
	list, err := r.GetAll(ctx, params)
	if err == nil {
		if len(list.Items) == 0 {
			return nil, ErrNoContent
		}
		return list, nil
	}
	slog.Warn("api unavailable, serving bundled content", "collection", r.name, "error", err)

	data, derr := p.data()
	if derr != nil {
		slog.Error("bundled content unreadable", "error", derr)
		return nil, ErrNoContent
	}

	matched := []T{}
	for _, it := range pick(data) {
		doc := PT(&it)
		if !doc.Visible() {
			continue
		}
		if params.Category != "" && params.Category != "All" && doc.GetCategory() != params.Category {
			continue
		}
		matched = append(matched, it)
	}

	q := models.ListQuery{Page: max(params.Page, 1), Limit: params.Limit}
	if q.Limit < 1 {
		q.Limit = len(matched)
	}
	start := min(q.Offset(), len(matched))
	end := min(start+q.Limit, len(matched))
	if start == end {
		return nil, ErrNoContent
	}
	page := models.NewPagination(q, len(matched), end-start)
	return &List[T]{Items: matched[start:end], Pagination: &page}, nil
}

func publicGet[T any, PT entry[T]](ctx context.Context, p *Public, r *Resource[T], ident string, pick func(*fallback.Data) []T) (*T, error) {
	doc, err := r.get(ctx, ident)
	if err == nil {
		return doc, nil
	}
	if IsNotFound(err) {
		slog.Debug("item not found, checking bundled content", "collection", r.name, "ident", ident)
	} else {
		slog.Warn("api unavailable, serving bundled content", "collection", r.name, "ident", ident, "error", err)
	}

	data, derr := p.data()
	if derr != nil {
		slog.Error("bundled content unreadable", "error", derr)
		return nil, ErrNoContent
	}
	slug := func(t *T) string {
		if s, ok := any(PT(t)).(models.Sluggable); ok {
			return s.GetSlug()
		}
		return ""
	}
	found, ok := fallback.Find(pick(data), ident, func(t *T) uuid.UUID { return PT(t).GetID() }, slug)
	if !ok {
		return nil, ErrNoContent
	}
	return found, nil
}
