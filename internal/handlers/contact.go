package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studiosite/internal/apperr"
	"studiosite/internal/content"
	"studiosite/internal/mailer"
	"studiosite/internal/metrics"
	"studiosite/internal/models"
	"studiosite/internal/respond"
)

// notifyTimeout bounds the background notification email.
const notifyTimeout = 30 * time.Second

// MessageRepository is the persistence of contact messages.
// store.MessageStore implements it.
type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) (*models.Message, error)
	List(ctx context.Context, status string, q models.ListQuery) ([]models.Message, int, error)
	All(ctx context.Context) ([]models.Message, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.MessageStatus) (*models.Message, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context, status string) (int, error)
	CountByStatus(ctx context.Context) (map[models.MessageStatus]int, error)
	Recent(ctx context.Context, limit int) ([]models.Summary, error)
	content.BulkTarget
}

// Contact serves the public contact form and the admin message inbox.
type Contact struct {
	messages MessageRepository
	notifier mailer.Notifier
	wg       sync.WaitGroup
}

// NewContact creates the contact handler group.
func NewContact(messages MessageRepository, notifier mailer.Notifier) *Contact {
	return &Contact{messages: messages, notifier: notifier}
}

// Wait blocks until pending notification emails are sent or abandoned.
func (c *Contact) Wait() { c.wg.Wait() }

// Submit handles POST /api/contact.
func (c *Contact) Submit(w http.ResponseWriter, r *http.Request) {
	var msg models.Message
	if err := decodeJSON(w, r, &msg); err != nil {
		respond.Err(w, r, err)
		return
	}
	msg.Prepare()
	if err := msg.Validate(); err != nil {
		respond.Err(w, r, apperr.Invalid(err))
		return
	}

	saved, err := c.messages.Create(r.Context(), &msg)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		err := c.notifier.NotifyContact(ctx, saved)
		if err != nil {
			slog.Warn("contact notification failed", "id", saved.ID, "error", err)
		}
		metrics.ContactMessage(err == nil)
	}()

	respond.JSON(w, http.StatusCreated, map[string]any{
		"message": "Thank you for your message. We will get back to you soon.",
		"id":      saved.ID,
	})
}

// List handles GET /api/contact/messages?status=&page=&limit=.
func (c *Contact) List(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && !models.ValidMessageStatus(status) {
		respond.Error(w, http.StatusBadRequest, "status must be one of new, read, replied")
		return
	}
	q := listQuery(r, "")
	if q.Limit < 1 {
		q.Limit = 20
	}
	if q.Limit > content.MaxLimit {
		q.Limit = content.MaxLimit
	}
	q = q.ClampPage()

	items, count, err := c.messages.List(r.Context(), status, q)
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, ListResponse[models.Message]{
		Data:       items,
		Pagination: models.NewPagination(q, count, len(items)),
	})
}

// UpdateStatus handles PATCH /api/contact/messages/{id}.
func (c *Contact) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "message")
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respond.Err(w, r, err)
		return
	}
	if !models.ValidMessageStatus(body.Status) {
		respond.Error(w, http.StatusBadRequest, "status must be one of new, read, replied")
		return
	}

	m, err := c.messages.UpdateStatus(r.Context(), id, models.MessageStatus(body.Status))
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	if m == nil {
		respond.Err(w, r, apperr.NotFound("message"))
		return
	}
	respond.JSON(w, http.StatusOK, ItemResponse[models.Message]{Data: m})
}

// Delete handles DELETE /api/contact/messages/{id}.
func (c *Contact) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "message")
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	ok, err := c.messages.Delete(r.Context(), id)
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	if !ok {
		respond.Err(w, r, apperr.NotFound("message"))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "message deleted"})
}
