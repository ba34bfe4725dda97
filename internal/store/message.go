package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"studiosite/internal/apperr"
	"studiosite/internal/models"
)

// MessageStore handles contact message persistence.
type MessageStore struct {
	db *sql.DB
}

// NewMessageStore creates a new MessageStore with the given database connection.
func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

const messageColumns = `id, name, email, phone, subject, message, status, created_at, updated_at`

func scanMessage(s scanner) (*models.Message, error) {
	var m models.Message
	if err := s.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create stores a new message.
func (s *MessageStore) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	out, err := scanMessage(s.db.QueryRowContext(ctx, `
		INSERT INTO messages (name, email, phone, subject, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+messageColumns,
		m.Name, m.Email, m.Phone, m.Subject, m.Message, m.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return out, nil
}

// List returns one page of messages, newest first, optionally filtered by status.
func (s *MessageStore) List(ctx context.Context, status string, q models.ListQuery) ([]models.Message, int, error) {
	where, args := "", []any{}
	if status != "" {
		where = " WHERE status = $1"
		args = append(args, status)
	}

	total, err := s.count(ctx, where, args...)
	if err != nil {
		return nil, 0, err
	}

	n := len(args)
	args = append(args, q.Limit, q.Offset())
	items, err := queryAll(ctx, s.db, scanMessage, "list messages",
		`SELECT `+messageColumns+` FROM messages`+where+
			` ORDER BY created_at DESC LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2), args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// All returns every message, newest first, for exports.
func (s *MessageStore) All(ctx context.Context) ([]models.Message, error) {
	return queryAll(ctx, s.db, scanMessage, "all messages",
		`SELECT `+messageColumns+` FROM messages ORDER BY created_at DESC`)
}

// FindByID retrieves a message. Returns nil if not found.
func (s *MessageStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	return queryOne(ctx, s.db, scanMessage, "find message by id",
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)
}

// UpdateStatus sets a message's status. Returns nil if not found.
func (s *MessageStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MessageStatus) (*models.Message, error) {
	return queryOne(ctx, s.db, scanMessage, "update message status", `
		UPDATE messages SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+messageColumns, id, status)
}

// Delete removes a message. It reports false when nothing was deleted.
func (s *MessageStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of messages, optionally only those with status.
func (s *MessageStore) Count(ctx context.Context, status string) (int, error) {
	if status == "" {
		return s.count(ctx, "")
	}
	return s.count(ctx, " WHERE status = $1", status)
}

func (s *MessageStore) count(ctx context.Context, where string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// CountByStatus returns message counts keyed by status; every status is present.
func (s *MessageStore) CountByStatus(ctx context.Context) (map[models.MessageStatus]int, error) {
	out := map[models.MessageStatus]int{
		models.MessageNew:     0,
		models.MessageRead:    0,
		models.MessageReplied: 0,
	}
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM messages GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count messages by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status models.MessageStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan message status count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// Recent returns the newest messages projected for the dashboard: the
// subject becomes the title and the status the category.
func (s *MessageStore) Recent(ctx context.Context, limit int) ([]models.Summary, error) {
	return queryAll(ctx, s.db, func(sc scanner) (*models.Summary, error) {
		var sum models.Summary
		if err := sc.Scan(&sum.ID, &sum.Title, &sum.Category, &sum.CreatedAt); err != nil {
			return nil, err
		}
		return &sum, nil
	}, "recent messages",
		`SELECT id, subject, status, created_at FROM messages ORDER BY created_at DESC LIMIT $1`, limit)
}

// BulkDelete removes every listed message.
func (s *MessageStore) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return s.exec(ctx, "bulk delete messages", `DELETE FROM messages WHERE id = ANY($1::uuid[])`, idArray(ids))
}

// BulkUpdate applies a status patch to every listed message.
func (s *MessageStore) BulkUpdate(ctx context.Context, ids []uuid.UUID, patch models.BulkPatch) (int64, error) {
	if patch.Status == nil {
		return 0, apperr.Invalidf("messages only support status updates")
	}
	if !models.ValidMessageStatus(*patch.Status) {
		return 0, apperr.Invalidf("unknown message status %q", *patch.Status)
	}
	return s.exec(ctx, "bulk update messages",
		`UPDATE messages SET status = $2, updated_at = NOW() WHERE id = ANY($1::uuid[])`,
		idArray(ids), *patch.Status)
}

func (s *MessageStore) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
