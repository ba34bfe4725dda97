// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"studiosite/internal/models"
)

// PortfolioStore handles portfolio item persistence.
type PortfolioStore struct {
	base
}

// NewPortfolioStore creates a new PortfolioStore with the given database connection.
func NewPortfolioStore(db *sql.DB) *PortfolioStore {
	return &PortfolioStore{base{db: db, t: table{
		name:      "portfolio_items",
		label:     "portfolio item",
		titleCol:  "title",
		slug:      true,
		category:  true,
		status:    true,
		highlight: "featured",
		visible:   "status = 'published'",
		search:    []string{"title", "description", "tags::text"},
		order:     "featured DESC, priority DESC, created_at DESC",
		patchable: map[string]string{
			"category": "category",
			"status":   "status",
			"featured": "featured",
			"priority": "priority",
		},
	}}}
}

const portfolioColumns = `id, title, slug, description, category, image, images, tags,
	technologies, client, project_url, completed_at, featured, status, priority,
	views, likes, shares, created_at, updated_at`

func scanPortfolio(s scanner) (*models.Portfolio, error) {
	var p models.Portfolio
	err := s.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.Category, &p.Image, &p.Images, &p.Tags,
		&p.Technologies, &p.Client, &p.ProjectURL, &p.CompletedAt, &p.Featured, &p.Status, &p.Priority,
		&p.Views, &p.Likes, &p.Shares, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns one page of items matching q and the total match count.
func (s *PortfolioStore) List(ctx context.Context, q models.ListQuery) ([]models.Portfolio, int, error) {
	return list(ctx, &s.base, portfolioColumns, scanPortfolio, q)
}

// All returns every item in listing order, for exports.
func (s *PortfolioStore) All(ctx context.Context) ([]models.Portfolio, error) {
	return queryAll(ctx, s.db, scanPortfolio, "all portfolio items",
		`SELECT `+portfolioColumns+` FROM portfolio_items ORDER BY `+s.t.order)
}

// FindByID retrieves an item by its UUID. Returns nil if not found.
func (s *PortfolioStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Portfolio, error) {
	return queryOne(ctx, s.db, scanPortfolio, "find portfolio item by id",
		`SELECT `+portfolioColumns+` FROM portfolio_items WHERE id = $1`, id)
}

// FindBySlug retrieves an item by its slug. Returns nil if not found.
func (s *PortfolioStore) FindBySlug(ctx context.Context, slug string) (*models.Portfolio, error) {
	return queryOne(ctx, s.db, scanPortfolio, "find portfolio item by slug",
		`SELECT `+portfolioColumns+` FROM portfolio_items WHERE slug = $1`, slug)
}

// Related returns up to limit published items in the same category.
func (s *PortfolioStore) Related(ctx context.Context, category string, exclude uuid.UUID, limit int) ([]models.Portfolio, error) {
	return related(ctx, &s.base, portfolioColumns, scanPortfolio, category, exclude, limit)
}

// Create inserts a new item and returns it with the generated ID and timestamps.
func (s *PortfolioStore) Create(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error) {
	out, err := scanPortfolio(s.db.QueryRowContext(ctx, `
		INSERT INTO portfolio_items (title, slug, description, category, image, images, tags,
			technologies, client, project_url, completed_at, featured, status, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+portfolioColumns,
		p.Title, p.Slug, p.Description, p.Category, p.Image, p.Images, p.Tags,
		p.Technologies, p.Client, p.ProjectURL, p.CompletedAt, p.Featured, p.Status, p.Priority,
	))
	if err != nil {
		return nil, wrapWrite("create portfolio item", err)
	}
	return out, nil
}

// Update overwrites the editable fields of an item. Counters are left
// untouched. Returns nil if the item does not exist.
func (s *PortfolioStore) Update(ctx context.Context, id uuid.UUID, p *models.Portfolio) (*models.Portfolio, error) {
	out, err := scanPortfolio(s.db.QueryRowContext(ctx, `
		UPDATE portfolio_items SET
			title = $2, slug = $3, description = $4, category = $5, image = $6, images = $7,
			tags = $8, technologies = $9, client = $10, project_url = $11, completed_at = $12,
			featured = $13, status = $14, priority = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING `+portfolioColumns,
		id, p.Title, p.Slug, p.Description, p.Category, p.Image, p.Images,
		p.Tags, p.Technologies, p.Client, p.ProjectURL, p.CompletedAt,
		p.Featured, p.Status, p.Priority,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapWrite("update portfolio item", err)
	}
	return out, nil
}

// IncrementShares atomically adds one share and returns the new count.
func (s *PortfolioStore) IncrementShares(ctx context.Context, id uuid.UUID) (int, error) {
	return s.increment(ctx, id, "shares")
}

// TopByEngagement ranks items by views + 5*likes + 10*shares.
func (s *PortfolioStore) TopByEngagement(ctx context.Context, limit int) ([]models.ScoredItem, error) {
	return queryAll(ctx, s.db, func(sc scanner) (*models.ScoredItem, error) {
		var it models.ScoredItem
		if err := sc.Scan(&it.ID, &it.Title, &it.Slug, &it.Category, &it.CreatedAt, &it.Views, &it.Likes, &it.Score); err != nil {
			return nil, err
		}
		return &it, nil
	}, "top portfolio items", `
		SELECT id, title, slug, category, created_at, views, likes,
		       views + 5 * likes + 10 * shares AS score
		FROM portfolio_items
		ORDER BY score DESC, created_at DESC
		LIMIT $1`, limit)
}
