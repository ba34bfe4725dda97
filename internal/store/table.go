// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"studiosite/internal/apperr"
	"studiosite/internal/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

// table describes a content table so list filters, counters and bulk
// operations can be shared by every collection store.
type table struct {
	name  string
	label string // used in error messages, e.g. "portfolio item"

	titleCol  string
	slug      bool
	category  bool
	status    bool   // has a filterable status column
	highlight string // "featured" or "popular"; empty when absent
	visible   string // predicate for anonymous reads; empty means always visible
	search    []string
	order     string

	// patchable maps BulkPatch fields to the columns this table accepts.
	patchable map[string]string
}

// base implements the operations that only depend on the table layout.
type base struct {
	db *sql.DB
	t  table
}

// filter builds the WHERE clause (with leading space) and its arguments.
func (t table) filter(q models.ListQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if !q.IncludeHidden && t.visible != "" {
		conds = append(conds, t.visible)
	}
	if t.category && q.Category != "" && q.Category != "All" {
		conds = append(conds, "category = "+arg(q.Category))
	}
	if t.highlight != "" && q.Highlighted != nil {
		conds = append(conds, t.highlight+" = "+arg(*q.Highlighted))
	}
	if t.status && q.Status != "" {
		conds = append(conds, "status = "+arg(q.Status))
	}
	if s := strings.TrimSpace(q.Search); s != "" && len(t.search) > 0 {
		p := arg("%" + escapeLike(s) + "%")
		parts := make([]string, len(t.search))
		for i, col := range t.search {
			parts[i] = col + " ILIKE " + p
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// page appends ORDER BY, LIMIT and OFFSET to a filtered select.
func (t table) page(where string, args []any, q models.ListQuery) (string, []any) {
	n := len(args)
	args = append(args, q.Limit, q.Offset())
	return where + " ORDER BY " + t.order +
		" LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// idArray renders ids as a PostgreSQL array literal for "= ANY($n::uuid[])".
func idArray(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// wrapWrite wraps a write error, mapping unique-index conflicts to apperr.ErrConflict.
func wrapWrite(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %s", op, apperr.ErrConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Count returns the number of documents matching q (ignoring paging).
func (b *base) Count(ctx context.Context, q models.ListQuery) (int, error) {
	where, args := b.t.filter(q)
	var n int
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+b.t.name+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", b.t.name, err)
	}
	return n, nil
}

// SlugExists reports whether slug is used by a document other than exclude.
func (b *base) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	if !b.t.slug {
		return false, nil
	}
	var exists bool
	err := b.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+b.t.name+` WHERE slug = $1 AND id <> $2)`,
		slug, exclude,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s slug: %w", b.t.label, err)
	}
	return exists, nil
}

// Delete removes a document. It reports false when nothing was deleted.
func (b *base) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := b.db.ExecContext(ctx, `DELETE FROM `+b.t.name+` WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", b.t.label, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", b.t.label, err)
	}
	return n > 0, nil
}

// increment atomically adds one to a counter column and returns the new value.
// It returns apperr.ErrNotFound when the document does not exist.
func (b *base) increment(ctx context.Context, id uuid.UUID, col string) (int, error) {
	var n int
	err := b.db.QueryRowContext(ctx,
		`UPDATE `+b.t.name+` SET `+col+` = `+col+` + 1 WHERE id = $1 RETURNING `+col, id,
	).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound(b.t.label)
	}
	if err != nil {
		return 0, fmt.Errorf("increment %s %s: %w", b.t.label, col, err)
	}
	return n, nil
}

func (b *base) IncrementViews(ctx context.Context, id uuid.UUID) (int, error) {
	return b.increment(ctx, id, "views")
}

func (b *base) IncrementLikes(ctx context.Context, id uuid.UUID) (int, error) {
	return b.increment(ctx, id, "likes")
}

// Recent returns the newest documents projected for the dashboard.
func (b *base) Recent(ctx context.Context, limit int) ([]models.Summary, error) {
	slugCol, catCol := "''", "''"
	if b.t.slug {
		slugCol = "slug"
	}
	if b.t.category {
		catCol = "category"
	}
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, `+b.t.titleCol+`, `+slugCol+`, `+catCol+`, created_at FROM `+b.t.name+
			` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent %s: %w", b.t.name, err)
	}
	defer rows.Close()

	items := []models.Summary{}
	for rows.Next() {
		var s models.Summary
		if err := rows.Scan(&s.ID, &s.Title, &s.Slug, &s.Category, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent %s: %w", b.t.name, err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// Engagement sums views and likes across the collection.
func (b *base) Engagement(ctx context.Context) (models.Engagement, error) {
	var e models.Engagement
	err := b.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(views), 0), COALESCE(SUM(likes), 0) FROM `+b.t.name,
	).Scan(&e.Views, &e.Likes)
	if err != nil {
		return e, fmt.Errorf("sum %s engagement: %w", b.t.name, err)
	}
	return e, nil
}

// BulkDelete removes every listed document and returns how many existed.
func (b *base) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return b.exec(ctx, "bulk delete", `DELETE FROM `+b.t.name+` WHERE id = ANY($1::uuid[])`, idArray(ids))
}

// SetHighlighted sets the featured (or popular) flag on every listed document.
func (b *base) SetHighlighted(ctx context.Context, ids []uuid.UUID, on bool) (int64, error) {
	if b.t.highlight == "" {
		return 0, apperr.Invalidf("%s cannot be featured", b.t.label)
	}
	return b.exec(ctx, "bulk feature",
		`UPDATE `+b.t.name+` SET `+b.t.highlight+` = $2, updated_at = NOW() WHERE id = ANY($1::uuid[])`,
		idArray(ids), on)
}

// ToggleHighlighted flips the featured (or popular) flag on every listed document.
func (b *base) ToggleHighlighted(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if b.t.highlight == "" {
		return 0, apperr.Invalidf("%s cannot be featured", b.t.label)
	}
	col := b.t.highlight
	return b.exec(ctx, "bulk toggle",
		`UPDATE `+b.t.name+` SET `+col+` = NOT `+col+`, updated_at = NOW() WHERE id = ANY($1::uuid[])`,
		idArray(ids))
}

// BulkUpdate applies the patch fields this table supports to every listed
// document. A patch with no applicable field is a validation error.
func (b *base) BulkUpdate(ctx context.Context, ids []uuid.UUID, patch models.BulkPatch) (int64, error) {
	fields := map[string]any{}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.Featured != nil {
		fields["featured"] = *patch.Featured
	}
	if patch.Popular != nil {
		fields["popular"] = *patch.Popular
	}
	if patch.Published != nil {
		fields["published"] = *patch.Published
	}
	if patch.Priority != nil {
		fields["priority"] = *patch.Priority
	}

	args := []any{idArray(ids)}
	var sets []string
	seen := map[string]bool{}
	for _, field := range []string{"category", "status", "featured", "popular", "published", "priority"} {
		v, ok := fields[field]
		col, allowed := b.t.patchable[field]
		if !ok || !allowed || seen[col] {
			continue
		}
		seen[col] = true
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
		if col == "published" && v == true {
			sets = append(sets, "published_at = COALESCE(published_at, NOW())")
		}
	}
	if len(sets) == 0 {
		return 0, apperr.Invalidf("no updatable fields for %s", b.t.label)
	}
	sets = append(sets, "updated_at = NOW()")

	return b.exec(ctx, "bulk update",
		`UPDATE `+b.t.name+` SET `+strings.Join(sets, ", ")+` WHERE id = ANY($1::uuid[])`,
		args...)
}

func (b *base) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := b.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", op, b.t.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", op, b.t.name, err)
	}
	return n, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryOne runs a single-row query; sql.ErrNoRows becomes (nil, nil).
func queryOne[T any](ctx context.Context, db *sql.DB, scan func(scanner) (*T, error), op, query string, args ...any) (*T, error) {
	v, err := scan(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// queryAll runs a query and scans every row. It never returns a nil slice.
func queryAll[T any](ctx context.Context, db *sql.DB, scan func(scanner) (*T, error), op, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		items = append(items, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// list runs the count and page queries for q.
func list[T any](ctx context.Context, b *base, cols string, scan func(scanner) (*T, error), q models.ListQuery) ([]T, int, error) {
	total, err := b.Count(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	where, args := b.t.filter(q)
	tail, args := b.t.page(where, args, q)
	items, err := queryAll(ctx, b.db, scan, "list "+b.t.name, `SELECT `+cols+` FROM `+b.t.name+tail, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// related returns up to limit visible documents sharing category, excluding one ID.
func related[T any](ctx context.Context, b *base, cols string, scan func(scanner) (*T, error), category string, exclude uuid.UUID, limit int) ([]T, error) {
	if !b.t.category || category == "" {
		return []T{}, nil
	}
	query := `SELECT ` + cols + ` FROM ` + b.t.name + ` WHERE category = $1 AND id <> $2`
	if b.t.visible != "" {
		query += ` AND ` + b.t.visible
	}
	query += ` ORDER BY ` + b.t.order + ` LIMIT $3`
	return queryAll(ctx, b.db, scan, "related "+b.t.name, query, category, exclude, limit)
}
