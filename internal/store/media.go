// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"studiosite/internal/models"
)

// MediaStore keeps metadata for uploaded files.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

// mediaColumns lists the columns selected in media queries.
const mediaColumns = `id, category, path, url, thumb_path, thumb_url, filename,
	mime_type, size_bytes, created_at`

func scanMedia(s scanner) (*models.Media, error) {
	var m models.Media
	err := s.Scan(
		&m.ID, &m.Category, &m.Path, &m.URL, &m.ThumbPath, &m.ThumbURL, &m.Filename,
		&m.MimeType, &m.SizeBytes, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new media record and returns it with the generated ID.
func (s *MediaStore) Create(ctx context.Context, m *models.Media) (*models.Media, error) {
	out, err := scanMedia(s.db.QueryRowContext(ctx, `
		INSERT INTO media (category, path, url, thumb_path, thumb_url, filename, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+mediaColumns,
		m.Category, m.Path, m.URL, m.ThumbPath, m.ThumbURL, m.Filename, m.MimeType, m.SizeBytes,
	))
	if err != nil {
		return nil, wrapWrite("create media", err)
	}
	return out, nil
}

// FindByPath retrieves a media record by its storage path. Returns nil if not found.
func (s *MediaStore) FindByPath(ctx context.Context, path string) (*models.Media, error) {
	return queryOne(ctx, s.db, scanMedia, "find media by path",
		`SELECT `+mediaColumns+` FROM media WHERE path = $1`, path)
}

// List returns media newest first. An empty category lists every folder.
func (s *MediaStore) List(ctx context.Context, category string, limit, offset int) ([]models.Media, error) {
	if category == "" {
		return queryAll(ctx, s.db, scanMedia, "list media",
			`SELECT `+mediaColumns+` FROM media ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	}
	return queryAll(ctx, s.db, scanMedia, "list media",
		`SELECT `+mediaColumns+` FROM media WHERE category = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		category, limit, offset)
}

// DeleteByPath removes a media record and returns it so the caller can
// remove the stored objects. Returns nil if not found.
func (s *MediaStore) DeleteByPath(ctx context.Context, path string) (*models.Media, error) {
	return queryOne(ctx, s.db, scanMedia, "delete media",
		`DELETE FROM media WHERE path = $1 RETURNING `+mediaColumns, path)
}

// Count returns the number of media records in category (all when empty).
func (s *MediaStore) Count(ctx context.Context, category string) (int, error) {
	var (
		count int
		err   error
	)
	if category == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media WHERE category = $1`, category).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return count, nil
}
