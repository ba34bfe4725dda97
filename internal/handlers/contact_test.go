package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"studiosite/internal/models"
)

func contactBody() map[string]any {
	return map[string]any{
		"name":    "Ana",
		"email":   "ana@example.com",
		"subject": "New logo",
		"message": "We need a logo.",
	}
}

func TestContactSubmitNotifies(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/contact", contactBody(), false)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body)
	}

	select {
	case m := <-api.notifier.sent:
		if m.Subject != "New logo" || m.Status != models.MessageNew {
			t.Errorf("notified %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification not sent")
	}
	api.contact.Wait()
}

func TestContactSubmitValidation(t *testing.T) {
	api := newTestAPI(t)
	body := contactBody()
	body["email"] = "not-an-email"

	if rec := api.do(t, http.MethodPost, "/api/contact", body, false); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid email = %d, want 400", rec.Code)
	}
	if len(api.messages.items) != 0 {
		t.Error("invalid message must not be stored")
	}
}

func TestMessagesInbox(t *testing.T) {
	api := newTestAPI(t)
	for i := 0; i < 3; i++ {
		api.do(t, http.MethodPost, "/api/contact", contactBody(), false)
	}
	api.contact.Wait()

	if rec := api.do(t, http.MethodGet, "/api/contact/messages", nil, false); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous inbox = %d, want 401", rec.Code)
	}

	id := api.messages.items[0].ID.String()
	path := "/api/contact/messages/" + id

	if rec := api.do(t, http.MethodPatch, path, map[string]string{"status": "archived"}, true); rec.Code != http.StatusBadRequest {
		t.Errorf("bad status = %d, want 400", rec.Code)
	}
	rec := api.do(t, http.MethodPatch, path, map[string]string{"status": "read"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch = %d %s", rec.Code, rec.Body)
	}

	var list ListResponse[models.Message]
	decode(t, api.do(t, http.MethodGet, "/api/contact/messages?status=new", nil, true), &list)
	if list.Pagination.Count != 2 {
		t.Errorf("new messages = %d, want 2", list.Pagination.Count)
	}

	if rec := api.do(t, http.MethodDelete, path, nil, true); rec.Code != http.StatusOK {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec := api.do(t, http.MethodDelete, path, nil, true); rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
	if rec := api.do(t, http.MethodPatch, "/api/contact/messages/"+uuid.NewString(), map[string]string{"status": "read"}, true); rec.Code != http.StatusNotFound {
		t.Errorf("patch missing = %d, want 404", rec.Code)
	}
}
