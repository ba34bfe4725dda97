package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"studiosite/internal/apperr"
	"studiosite/internal/models"
)

func TestMessageStoreListByStatus(t *testing.T) {
	db, mock := newMock(t)
	s := NewMessageStore(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM messages WHERE status = \$1`).
		WithArgs("new").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM messages WHERE status = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("new", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "subject", "message", "status", "created_at", "updated_at"}).
			AddRow(uuid.New(), "Ana", "ana@example.com", "", "Logo", "Hello", "new", now, now))

	items, total, err := s.List(context.Background(), "new", models.ListQuery{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Status != models.MessageNew {
		t.Errorf("List = %+v, %d", items, total)
	}
}

func TestMessageStoreCountByStatus(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM messages GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("new", 4).AddRow("replied", 2))

	got, err := NewMessageStore(db).CountByStatus(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got[models.MessageNew] != 4 || got[models.MessageReplied] != 2 {
		t.Errorf("counts = %v", got)
	}
	if _, ok := got[models.MessageRead]; !ok {
		t.Error("missing zero entry for read")
	}
}

func TestMessageStoreBulkUpdateValidatesStatus(t *testing.T) {
	s := NewMessageStore(nil)
	ids := []uuid.UUID{uuid.New()}

	if _, err := s.BulkUpdate(context.Background(), ids, models.BulkPatch{}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty patch err = %v", err)
	}
	if _, err := s.BulkUpdate(context.Background(), ids, models.BulkPatch{Status: strPtr("spam")}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad status err = %v", err)
	}
}

func TestMessageStoreUpdateStatusNotFound(t *testing.T) {
	db, mock := newMock(t)
	id := uuid.New()
	mock.ExpectQuery(`UPDATE messages SET status = \$2`).
		WithArgs(id, models.MessageRead).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := NewMessageStore(db).UpdateStatus(context.Background(), id, models.MessageRead)
	if err != nil || got != nil {
		t.Errorf("UpdateStatus = %v, %v", got, err)
	}
}
