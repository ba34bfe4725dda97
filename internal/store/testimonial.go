package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"studiosite/internal/models"
)

// TestimonialStore handles testimonial persistence. Testimonials have no
// slug and no category.
type TestimonialStore struct {
	base
}

// NewTestimonialStore creates a new TestimonialStore with the given database connection.
func NewTestimonialStore(db *sql.DB) *TestimonialStore {
	return &TestimonialStore{base{db: db, t: table{
		name:      "testimonials",
		label:     "testimonial",
		titleCol:  "name",
		highlight: "featured",
		search:    []string{"name", "company", "content"},
		order:     "featured DESC, created_at DESC",
		patchable: map[string]string{"featured": "featured"},
	}}}
}

const testimonialColumns = `id, name, role, company, content, rating, avatar, images,
	featured, views, likes, created_at, updated_at`

func scanTestimonial(s scanner) (*models.Testimonial, error) {
	var t models.Testimonial
	err := s.Scan(
		&t.ID, &t.Name, &t.Role, &t.Company, &t.Content, &t.Rating, &t.Avatar, &t.Images,
		&t.Featured, &t.Views, &t.Likes, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TestimonialStore) List(ctx context.Context, q models.ListQuery) ([]models.Testimonial, int, error) {
	return list(ctx, &s.base, testimonialColumns, scanTestimonial, q)
}

func (s *TestimonialStore) All(ctx context.Context) ([]models.Testimonial, error) {
	return queryAll(ctx, s.db, scanTestimonial, "all testimonials",
		`SELECT `+testimonialColumns+` FROM testimonials ORDER BY `+s.t.order)
}

func (s *TestimonialStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	return queryOne(ctx, s.db, scanTestimonial, "find testimonial by id",
		`SELECT `+testimonialColumns+` FROM testimonials WHERE id = $1`, id)
}

// FindBySlug always misses: testimonials are addressed by ID only.
func (s *TestimonialStore) FindBySlug(context.Context, string) (*models.Testimonial, error) {
	return nil, nil
}

// Related always returns an empty list: testimonials have no category.
func (s *TestimonialStore) Related(ctx context.Context, category string, exclude uuid.UUID, limit int) ([]models.Testimonial, error) {
	return related(ctx, &s.base, testimonialColumns, scanTestimonial, category, exclude, limit)
}

func (s *TestimonialStore) Create(ctx context.Context, t *models.Testimonial) (*models.Testimonial, error) {
	out, err := scanTestimonial(s.db.QueryRowContext(ctx, `
		INSERT INTO testimonials (name, role, company, content, rating, avatar, images, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+testimonialColumns,
		t.Name, t.Role, t.Company, t.Content, t.Rating, t.Avatar, t.Images, t.Featured,
	))
	if err != nil {
		return nil, wrapWrite("create testimonial", err)
	}
	return out, nil
}

func (s *TestimonialStore) Update(ctx context.Context, id uuid.UUID, t *models.Testimonial) (*models.Testimonial, error) {
	out, err := scanTestimonial(s.db.QueryRowContext(ctx, `
		UPDATE testimonials SET
			name = $2, role = $3, company = $4, content = $5, rating = $6,
			avatar = $7, images = $8, featured = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING `+testimonialColumns,
		id, t.Name, t.Role, t.Company, t.Content, t.Rating,
		t.Avatar, t.Images, t.Featured,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapWrite("update testimonial", err)
	}
	return out, nil
}
