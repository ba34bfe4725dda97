// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content implements the operations shared by every content
// collection (portfolio, services, blog, testimonials): paged listing,
// lookup by ID or slug with view counting, validated writes with unique
// slugs, likes and admin bulk actions.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"studiosite/internal/apperr"
	"studiosite/internal/cache"
	"studiosite/internal/metrics"
	"studiosite/internal/models"
	"studiosite/internal/resolve"
	"studiosite/internal/slug"
)

const (
	// MaxLimit caps the page size of list requests.
	MaxLimit = 100
	// RelatedLimit is the number of related documents returned with a single item.
	RelatedLimit = 3
	// slugAttempts bounds how often a write is retried after losing a slug race.
	slugAttempts = 3
)

// Repository is the persistence a Service needs. The stores in
// internal/store implement it for each collection.
type Repository[T any] interface {
	List(ctx context.Context, q models.ListQuery) ([]T, int, error)
	All(ctx context.Context) ([]T, error)
	Count(ctx context.Context, q models.ListQuery) (int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindBySlug(ctx context.Context, slug string) (*T, error)
	SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	Related(ctx context.Context, category string, exclude uuid.UUID, limit int) ([]T, error)
	Create(ctx context.Context, doc *T) (*T, error)
	Update(ctx context.Context, id uuid.UUID, doc *T) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementViews(ctx context.Context, id uuid.UUID) (int, error)
	IncrementLikes(ctx context.Context, id uuid.UUID) (int, error)
	Recent(ctx context.Context, limit int) ([]models.Summary, error)
	Engagement(ctx context.Context) (models.Engagement, error)
	BulkTarget
	SetHighlighted(ctx context.Context, ids []uuid.UUID, on bool) (int64, error)
	ToggleHighlighted(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// Options configures a Service for one collection.
type Options[T any] struct {
	Collection models.Collection
	// Label names one document in messages, e.g. "portfolio item".
	Label        string
	DefaultLimit int
	Mode         resolve.Mode
	// Prune trims a document for list responses.
	Prune func(*T)
	// Render fills derived read-only fields of single-item responses.
	Render func(*T) error
}

// Service runs the collection operations for documents of type T.
type Service[T any, PT interface {
	*T
	models.Entry
}] struct {
	repo     Repository[T]
	resolver *resolve.Resolver[T]
	opts     Options[T]
	purge    *cache.Invalidator
	now      func() time.Time
}

// New creates a Service. inv may be nil when no response cache is used.
func New[T any, PT interface {
	*T
	models.Entry
}](repo Repository[T], opts Options[T], inv *cache.Invalidator) *Service[T, PT] {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	return &Service[T, PT]{
		repo: repo,
		resolver: resolve.New(resolve.Lookups[T]{
			ByID:   repo.FindByID,
			BySlug: repo.FindBySlug,
		}, opts.Mode),
		opts:  opts,
		purge: inv,
		now:   time.Now,
	}
}

func (s *Service[T, PT]) Collection() models.Collection { return s.opts.Collection }

func (s *Service[T, PT]) Label() string { return s.opts.Label }

// Normalize applies the collection's default page size and the global cap.
func (s *Service[T, PT]) Normalize(q models.ListQuery) models.ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = s.opts.DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q.ClampPage()
}

// List returns one page of documents and its pagination metadata.
func (s *Service[T, PT]) List(ctx context.Context, q models.ListQuery) ([]T, models.Pagination, error) {
	q = s.Normalize(q)
	items, count, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	s.prune(items)
	return items, models.NewPagination(q, count, len(items)), nil
}

// Get resolves ident (an ID or a slug), counts the view and returns the
// document with up to RelatedLimit documents of the same category. Hidden
// documents are only returned when includeHidden is set.
func (s *Service[T, PT]) Get(ctx context.Context, ident string, includeHidden bool) (*T, []T, error) {
	doc, err := s.resolver.Resolve(ctx, ident)
	if err != nil {
		return nil, nil, fmt.Errorf("get %s: %w", s.opts.Label, err)
	}
	if doc == nil || (!includeHidden && !PT(doc).Visible()) {
		return nil, nil, apperr.NotFound(s.opts.Label)
	}
	p := PT(doc)

	if n, err := s.repo.IncrementViews(ctx, p.GetID()); err != nil {
		slog.Warn("view increment failed", "collection", s.opts.Collection, "id", p.GetID(), "error", err)
	} else {
		p.SetViews(n)
		metrics.Interaction(string(s.opts.Collection), "view")
	}

	related, err := s.repo.Related(ctx, p.GetCategory(), p.GetID(), RelatedLimit)
	if err != nil {
		slog.Warn("related lookup failed", "collection", s.opts.Collection, "id", p.GetID(), "error", err)
		related = []T{}
	}
	s.prune(related)

	if s.opts.Render != nil {
		if err := s.opts.Render(doc); err != nil {
			slog.Warn("render failed", "collection", s.opts.Collection, "id", p.GetID(), "error", err)
		}
	}
	return doc, related, nil
}

// Create validates doc, assigns a unique slug and stores it.
func (s *Service[T, PT]) Create(ctx context.Context, doc PT) (*T, error) {
	doc.Prepare(s.now())
	if err := doc.Validate(); err != nil {
		return nil, apperr.Invalid(err)
	}

	base := ""
	if sl, ok := any(doc).(models.Sluggable); ok {
		base = sl.GetSlug()
		if base == "" {
			base = sl.SlugSource()
		}
	}
	out, err := s.write(ctx, doc, uuid.Nil, base, func() (*T, error) {
		return s.repo.Create(ctx, (*T)(doc))
	})
	if err != nil {
		return nil, err
	}
	s.purge.Purge(ctx, s.prefix())
	return out, nil
}

// Update loads the document, lets apply overwrite the fields present in the
// request, re-validates and stores it. The slug is recomputed when the
// title or the slug itself changed.
func (s *Service[T, PT]) Update(ctx context.Context, id uuid.UUID, apply func(PT) error) (*T, error) {
	cur, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.opts.Label, err)
	}
	if cur == nil {
		return nil, apperr.NotFound(s.opts.Label)
	}

	doc := PT(cur)
	var oldSlug, oldSource string
	sl, sluggable := any(doc).(models.Sluggable)
	if sluggable {
		oldSlug, oldSource = sl.GetSlug(), sl.SlugSource()
	}

	if err := apply(doc); err != nil {
		return nil, err
	}
	doc.Prepare(s.now())
	if err := doc.Validate(); err != nil {
		return nil, apperr.Invalid(err)
	}

	base := ""
	if sluggable {
		switch {
		case sl.GetSlug() == "":
			base = sl.SlugSource()
		case sl.GetSlug() != oldSlug:
			base = sl.GetSlug()
		case sl.SlugSource() != oldSource:
			base = sl.SlugSource()
		}
	}
	out, err := s.write(ctx, doc, id, base, func() (*T, error) {
		return s.repo.Update(ctx, id, cur)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, apperr.NotFound(s.opts.Label)
	}
	s.purge.Purge(ctx, s.prefix())
	return out, nil
}

// write assigns a unique slug derived from base (when base is not empty)
// and runs save. A unique-index conflict means another writer took the slug
// between the check and the write; the slug is recomputed and save retried.
func (s *Service[T, PT]) write(ctx context.Context, doc PT, self uuid.UUID, base string, save func() (*T, error)) (*T, error) {
	sl, sluggable := any(doc).(models.Sluggable)
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return s.repo.SlugExists(ctx, candidate, self)
	}

	for attempt := 1; ; attempt++ {
		if sluggable && base != "" {
			unique, err := slug.Unique(ctx, slug.Generate(base), exists)
			if err != nil {
				return nil, fmt.Errorf("assign %s slug: %w", s.opts.Label, err)
			}
			sl.SetSlug(unique)
		}

		out, err := save()
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, apperr.ErrConflict) || !sluggable || attempt >= slugAttempts {
			return nil, err
		}
		if base == "" {
			base = sl.GetSlug()
		}
		slog.Info("slug conflict, retrying", "collection", s.opts.Collection, "slug", sl.GetSlug(), "attempt", attempt)
	}
}

// Delete removes a document. Deleting a missing document is ErrNotFound.
func (s *Service[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound(s.opts.Label)
	}
	s.purge.Purge(ctx, s.prefix())
	return nil
}

// Like adds one like and returns the new total.
func (s *Service[T, PT]) Like(ctx context.Context, id uuid.UUID) (int, error) {
	n, err := s.repo.IncrementLikes(ctx, id)
	if err != nil {
		return 0, err
	}
	metrics.Interaction(string(s.opts.Collection), "like")
	return n, nil
}

// Stats counts all, highlighted and publicly visible documents.
func (s *Service[T, PT]) Stats(ctx context.Context) (models.CollectionStats, error) {
	var (
		st  models.CollectionStats
		err error
		yes = true
	)
	if st.Total, err = s.repo.Count(ctx, models.ListQuery{IncludeHidden: true}); err != nil {
		return st, err
	}
	if st.Highlighted, err = s.repo.Count(ctx, models.ListQuery{IncludeHidden: true, Highlighted: &yes}); err != nil {
		return st, err
	}
	if st.Published, err = s.repo.Count(ctx, models.ListQuery{}); err != nil {
		return st, err
	}
	return st, nil
}

func (s *Service[T, PT]) Recent(ctx context.Context, limit int) ([]models.Summary, error) {
	return s.repo.Recent(ctx, limit)
}

func (s *Service[T, PT]) Engagement(ctx context.Context) (models.Engagement, error) {
	return s.repo.Engagement(ctx)
}

// Export returns every document, hidden ones included, as a []T.
func (s *Service[T, PT]) Export(ctx context.Context) (any, error) {
	return s.repo.All(ctx)
}

// Bulk applies an admin bulk action to the listed documents.
func (s *Service[T, PT]) Bulk(ctx context.Context, action BulkAction, ids []uuid.UUID, patch models.BulkPatch) (int64, error) {
	n, err := ApplyBulk(ctx, s.repo, s.opts.Collection, action, ids, patch)
	if err != nil {
		return 0, err
	}
	s.purge.Purge(ctx, s.prefix())
	return n, nil
}

func (s *Service[T, PT]) prefix() string {
	return "/api/" + string(s.opts.Collection)
}

func (s *Service[T, PT]) prune(items []T) {
	if s.opts.Prune == nil {
		return
	}
	for i := range items {
		s.opts.Prune(&items[i])
	}
}
