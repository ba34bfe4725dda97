package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"studiosite/internal/models"
)

// ServiceStore handles service persistence.
type ServiceStore struct {
	base
}

// NewServiceStore creates a new ServiceStore with the given database connection.
func NewServiceStore(db *sql.DB) *ServiceStore {
	return &ServiceStore{base{db: db, t: table{
		name:      "services",
		label:     "service",
		titleCol:  "title",
		slug:      true,
		category:  true,
		highlight: "popular",
		search:    []string{"title", "description", "short_description", "features::text"},
		order:     "popular DESC, created_at DESC",
		patchable: map[string]string{
			"category": "category",
			"popular":  "popular",
			"featured": "popular",
		},
	}}}
}

const serviceColumns = `id, title, slug, description, short_description, category, price,
	price_unit, duration, features, image, images, icon, popular, views, likes,
	created_at, updated_at`

func scanService(s scanner) (*models.Service, error) {
	var v models.Service
	err := s.Scan(
		&v.ID, &v.Title, &v.Slug, &v.Description, &v.ShortDescription, &v.Category, &v.Price,
		&v.PriceUnit, &v.Duration, &v.Features, &v.Image, &v.Images, &v.Icon, &v.Popular, &v.Views, &v.Likes,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *ServiceStore) List(ctx context.Context, q models.ListQuery) ([]models.Service, int, error) {
	return list(ctx, &s.base, serviceColumns, scanService, q)
}

func (s *ServiceStore) All(ctx context.Context) ([]models.Service, error) {
	return queryAll(ctx, s.db, scanService, "all services",
		`SELECT `+serviceColumns+` FROM services ORDER BY `+s.t.order)
}

func (s *ServiceStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	return queryOne(ctx, s.db, scanService, "find service by id",
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
}

func (s *ServiceStore) FindBySlug(ctx context.Context, slug string) (*models.Service, error) {
	return queryOne(ctx, s.db, scanService, "find service by slug",
		`SELECT `+serviceColumns+` FROM services WHERE slug = $1`, slug)
}

func (s *ServiceStore) Related(ctx context.Context, category string, exclude uuid.UUID, limit int) ([]models.Service, error) {
	return related(ctx, &s.base, serviceColumns, scanService, category, exclude, limit)
}

func (s *ServiceStore) Create(ctx context.Context, v *models.Service) (*models.Service, error) {
	out, err := scanService(s.db.QueryRowContext(ctx, `
		INSERT INTO services (title, slug, description, short_description, category, price,
			price_unit, duration, features, image, images, icon, popular)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+serviceColumns,
		v.Title, v.Slug, v.Description, v.ShortDescription, v.Category, v.Price,
		v.PriceUnit, v.Duration, v.Features, v.Image, v.Images, v.Icon, v.Popular,
	))
	if err != nil {
		return nil, wrapWrite("create service", err)
	}
	return out, nil
}

// Update overwrites the editable fields of a service. Returns nil if it does not exist.
func (s *ServiceStore) Update(ctx context.Context, id uuid.UUID, v *models.Service) (*models.Service, error) {
	out, err := scanService(s.db.QueryRowContext(ctx, `
		UPDATE services SET
			title = $2, slug = $3, description = $4, short_description = $5, category = $6,
			price = $7, price_unit = $8, duration = $9, features = $10, image = $11,
			images = $12, icon = $13, popular = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING `+serviceColumns,
		id, v.Title, v.Slug, v.Description, v.ShortDescription, v.Category,
		v.Price, v.PriceUnit, v.Duration, v.Features, v.Image,
		v.Images, v.Icon, v.Popular,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapWrite("update service", err)
	}
	return out, nil
}
