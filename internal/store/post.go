package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"studiosite/internal/models"
)

// PostStore handles blog post persistence.
type PostStore struct {
	base
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{base{db: db, t: table{
		name:      "blog_posts",
		label:     "blog post",
		titleCol:  "title",
		slug:      true,
		category:  true,
		highlight: "featured",
		visible:   "published = TRUE",
		search:    []string{"title", "excerpt", "content", "tags::text"},
		order:     "featured DESC, published_at DESC NULLS LAST, created_at DESC",
		patchable: map[string]string{
			"category":  "category",
			"featured":  "featured",
			"published": "published",
		},
	}}}
}

const postColumns = `id, title, slug, excerpt, content, category, tags, image, images,
	author, published, featured, published_at, read_time, views, likes,
	created_at, updated_at`

func scanPost(s scanner) (*models.Post, error) {
	var p models.Post
	err := s.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Category, &p.Tags, &p.Image, &p.Images,
		&p.Author, &p.Published, &p.Featured, &p.PublishedAt, &p.ReadTime, &p.Views, &p.Likes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostStore) List(ctx context.Context, q models.ListQuery) ([]models.Post, int, error) {
	return list(ctx, &s.base, postColumns, scanPost, q)
}

func (s *PostStore) All(ctx context.Context) ([]models.Post, error) {
	return queryAll(ctx, s.db, scanPost, "all blog posts",
		`SELECT `+postColumns+` FROM blog_posts ORDER BY `+s.t.order)
}

func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return queryOne(ctx, s.db, scanPost, "find blog post by id",
		`SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id)
}

func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return queryOne(ctx, s.db, scanPost, "find blog post by slug",
		`SELECT `+postColumns+` FROM blog_posts WHERE slug = $1`, slug)
}

func (s *PostStore) Related(ctx context.Context, category string, exclude uuid.UUID, limit int) ([]models.Post, error) {
	return related(ctx, &s.base, postColumns, scanPost, category, exclude, limit)
}

func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	out, err := scanPost(s.db.QueryRowContext(ctx, `
		INSERT INTO blog_posts (title, slug, excerpt, content, category, tags, image, images,
			author, published, featured, published_at, read_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Excerpt, p.Content, p.Category, p.Tags, p.Image, p.Images,
		p.Author, p.Published, p.Featured, p.PublishedAt, p.ReadTime,
	))
	if err != nil {
		return nil, wrapWrite("create blog post", err)
	}
	return out, nil
}

// Update overwrites the editable fields of a post. Returns nil if it does not exist.
func (s *PostStore) Update(ctx context.Context, id uuid.UUID, p *models.Post) (*models.Post, error) {
	out, err := scanPost(s.db.QueryRowContext(ctx, `
		UPDATE blog_posts SET
			title = $2, slug = $3, excerpt = $4, content = $5, category = $6, tags = $7,
			image = $8, images = $9, author = $10, published = $11, featured = $12,
			published_at = $13, read_time = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING `+postColumns,
		id, p.Title, p.Slug, p.Excerpt, p.Content, p.Category, p.Tags,
		p.Image, p.Images, p.Author, p.Published, p.Featured,
		p.PublishedAt, p.ReadTime,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapWrite("update blog post", err)
	}
	return out, nil
}
