// Package contenttest provides an in-memory content.Repository for tests of
// code built on internal/content.
package contenttest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studiosite/internal/apperr"
	"studiosite/internal/models"
)

// Fields gives the repository access to the columns it manages itself.
type Fields[T any] struct {
	ID        func(*T) *uuid.UUID
	Views     func(*T) *int
	Likes     func(*T) *int
	Highlight func(*T) *bool // nil when the collection has no flag
	Created   func(*T) *time.Time
}

var (
	PortfolioFields = Fields[models.Portfolio]{
		ID:        func(p *models.Portfolio) *uuid.UUID { return &p.ID },
		Views:     func(p *models.Portfolio) *int { return &p.Views },
		Likes:     func(p *models.Portfolio) *int { return &p.Likes },
		Highlight: func(p *models.Portfolio) *bool { return &p.Featured },
		Created:   func(p *models.Portfolio) *time.Time { return &p.CreatedAt },
	}
	ServiceFields = Fields[models.Service]{
		ID:        func(s *models.Service) *uuid.UUID { return &s.ID },
		Views:     func(s *models.Service) *int { return &s.Views },
		Likes:     func(s *models.Service) *int { return &s.Likes },
		Highlight: func(s *models.Service) *bool { return &s.Popular },
		Created:   func(s *models.Service) *time.Time { return &s.CreatedAt },
	}
	PostFields = Fields[models.Post]{
		ID:        func(p *models.Post) *uuid.UUID { return &p.ID },
		Views:     func(p *models.Post) *int { return &p.Views },
		Likes:     func(p *models.Post) *int { return &p.Likes },
		Highlight: func(p *models.Post) *bool { return &p.Featured },
		Created:   func(p *models.Post) *time.Time { return &p.CreatedAt },
	}
	TestimonialFields = Fields[models.Testimonial]{
		ID:        func(t *models.Testimonial) *uuid.UUID { return &t.ID },
		Views:     func(t *models.Testimonial) *int { return &t.Views },
		Likes:     func(t *models.Testimonial) *int { return &t.Likes },
		Highlight: func(t *models.Testimonial) *bool { return &t.Featured },
		Created:   func(t *models.Testimonial) *time.Time { return &t.CreatedAt },
	}
)

// Repo is a mutex-guarded in-memory repository. Reads return copies, the
// way a database would.
type Repo[T any, PT interface {
	*T
	models.Entry
}] struct {
	mu    sync.Mutex
	f     Fields[T]
	items []T
	tick  time.Time

	// CreateConflicts makes the next n Create calls fail with apperr.ErrConflict.
	CreateConflicts int
	// Err, when set, is returned by every read and write.
	Err error
}

// New returns an empty repository.
func New[T any, PT interface {
	*T
	models.Entry
}](f Fields[T]) *Repo[T, PT] {
	return &Repo[T, PT]{f: f, tick: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Put stores doc as-is (after assigning an ID and timestamp when missing)
// and returns the stored copy.
func (r *Repo[T, PT]) Put(doc T) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp(&doc)
	r.items = append(r.items, doc)
	return doc
}

// Len returns the number of stored documents.
func (r *Repo[T, PT]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Repo[T, PT]) stamp(doc *T) {
	if *r.f.ID(doc) == uuid.Nil {
		*r.f.ID(doc) = uuid.New()
	}
	if r.f.Created(doc).IsZero() {
		r.tick = r.tick.Add(time.Minute)
		*r.f.Created(doc) = r.tick
	}
}

func (r *Repo[T, PT]) index(id uuid.UUID) int {
	for i := range r.items {
		if *r.f.ID(&r.items[i]) == id {
			return i
		}
	}
	return -1
}

func (r *Repo[T, PT]) matches(doc *T, q models.ListQuery) bool {
	p := PT(doc)
	if !q.IncludeHidden && !p.Visible() {
		return false
	}
	if q.Category != "" && q.Category != "All" && p.GetCategory() != "" && p.GetCategory() != q.Category {
		return false
	}
	if q.Highlighted != nil && r.f.Highlight != nil && *r.f.Highlight(doc) != *q.Highlighted {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		sl, ok := any(p).(models.Sluggable)
		if !ok || !strings.Contains(strings.ToLower(sl.SlugSource()), s) {
			return false
		}
	}
	return true
}

// filtered returns matching copies, newest first.
func (r *Repo[T, PT]) filtered(q models.ListQuery) []T {
	out := []T{}
	for i := range r.items {
		if r.matches(&r.items[i], q) {
			out = append(out, r.items[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return r.f.Created(&out[i]).After(*r.f.Created(&out[j]))
	})
	return out
}

func (r *Repo[T, PT]) List(_ context.Context, q models.ListQuery) ([]T, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, 0, r.Err
	}
	all := r.filtered(q)
	start := min(q.Offset(), len(all))
	end := len(all)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(all))
	}
	return all[start:end], len(all), nil
}

func (r *Repo[T, PT]) All(context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.filtered(models.ListQuery{IncludeHidden: true}), nil
}

func (r *Repo[T, PT]) Count(_ context.Context, q models.ListQuery) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return len(r.filtered(q)), nil
}

func (r *Repo[T, PT]) FindByID(_ context.Context, id uuid.UUID) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if i := r.index(id); i >= 0 {
		v := r.items[i]
		return &v, nil
	}
	return nil, nil
}

func (r *Repo[T, PT]) FindBySlug(_ context.Context, slug string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for i := range r.items {
		if sl, ok := any(PT(&r.items[i])).(models.Sluggable); ok && sl.GetSlug() == slug {
			v := r.items[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (r *Repo[T, PT]) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	for i := range r.items {
		sl, ok := any(PT(&r.items[i])).(models.Sluggable)
		if ok && sl.GetSlug() == slug && *r.f.ID(&r.items[i]) != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repo[T, PT]) Related(_ context.Context, category string, exclude uuid.UUID, limit int) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []T{}
	if category == "" {
		return out, nil
	}
	for _, v := range r.filtered(models.ListQuery{Category: category}) {
		if *r.f.ID(&v) != exclude && len(out) < limit {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *Repo[T, PT]) Create(_ context.Context, doc *T) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if r.CreateConflicts > 0 {
		r.CreateConflicts--
		return nil, apperr.ErrConflict
	}
	v := *doc
	*r.f.ID(&v) = uuid.Nil
	*r.f.Created(&v) = time.Time{}
	*r.f.Views(&v), *r.f.Likes(&v) = 0, 0
	r.stamp(&v)
	r.items = append(r.items, v)
	return &v, nil
}

func (r *Repo[T, PT]) Update(_ context.Context, id uuid.UUID, doc *T) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	i := r.index(id)
	if i < 0 {
		return nil, nil
	}
	old := &r.items[i]
	v := *doc
	*r.f.ID(&v) = id
	*r.f.Created(&v) = *r.f.Created(old)
	*r.f.Views(&v), *r.f.Likes(&v) = *r.f.Views(old), *r.f.Likes(old)
	r.items[i] = v
	return &v, nil
}

func (r *Repo[T, PT]) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	i := r.index(id)
	if i < 0 {
		return false, nil
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return true, nil
}

func (r *Repo[T, PT]) increment(id uuid.UUID, field func(*T) *int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	i := r.index(id)
	if i < 0 {
		return 0, apperr.NotFound("document")
	}
	*field(&r.items[i])++
	return *field(&r.items[i]), nil
}

func (r *Repo[T, PT]) IncrementViews(_ context.Context, id uuid.UUID) (int, error) {
	return r.increment(id, r.f.Views)
}

func (r *Repo[T, PT]) IncrementLikes(_ context.Context, id uuid.UUID) (int, error) {
	return r.increment(id, r.f.Likes)
}

func (r *Repo[T, PT]) Recent(_ context.Context, limit int) ([]models.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := []models.Summary{}
	for _, v := range r.filtered(models.ListQuery{IncludeHidden: true}) {
		if len(out) == limit {
			break
		}
		p := PT(&v)
		s := models.Summary{ID: p.GetID(), Category: p.GetCategory(), CreatedAt: *r.f.Created(&v)}
		if sl, ok := any(p).(models.Sluggable); ok {
			s.Title, s.Slug = sl.SlugSource(), sl.GetSlug()
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *Repo[T, PT]) Engagement(context.Context) (models.Engagement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var e models.Engagement
	if r.Err != nil {
		return e, r.Err
	}
	for i := range r.items {
		e.Views += int64(*r.f.Views(&r.items[i]))
		e.Likes += int64(*r.f.Likes(&r.items[i]))
	}
	return e, nil
}

func (r *Repo[T, PT]) BulkDelete(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if i := r.index(id); i >= 0 {
			r.items = append(r.items[:i], r.items[i+1:]...)
			n++
		}
	}
	return n, nil
}

// BulkUpdate supports the highlight flag only.
func (r *Repo[T, PT]) BulkUpdate(ctx context.Context, ids []uuid.UUID, patch models.BulkPatch) (int64, error) {
	on := patch.Featured
	if on == nil {
		on = patch.Popular
	}
	if on == nil || r.f.Highlight == nil {
		return 0, apperr.Invalidf("no updatable fields")
	}
	return r.SetHighlighted(ctx, ids, *on)
}

func (r *Repo[T, PT]) SetHighlighted(_ context.Context, ids []uuid.UUID, on bool) (int64, error) {
	return r.eachHighlight(ids, func(b *bool) { *b = on })
}

func (r *Repo[T, PT]) ToggleHighlighted(_ context.Context, ids []uuid.UUID) (int64, error) {
	return r.eachHighlight(ids, func(b *bool) { *b = !*b })
}

func (r *Repo[T, PT]) eachHighlight(ids []uuid.UUID, fn func(*bool)) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f.Highlight == nil {
		return 0, apperr.Invalidf("cannot be featured")
	}
	var n int64
	for _, id := range ids {
		if i := r.index(id); i >= 0 {
			fn(r.f.Highlight(&r.items[i]))
			n++
		}
	}
	return n, nil
}
