// handler_test.go provides shared test infrastructure for the handler
// tests: in-memory repositories behind the real services and a chi router
// wired like the production one.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studiosite/internal/apperr"
	"studiosite/internal/auth"
	"studiosite/internal/content"
	"studiosite/internal/content/contenttest"
	"studiosite/internal/markdown"
	"studiosite/internal/middleware"
	"studiosite/internal/models"
	"studiosite/internal/resolve"
	"studiosite/internal/session"
	"studiosite/internal/storage"
	"studiosite/internal/upload"
)

const testSecret = "handler-test-secret-0123456789abcdef"

// memMessages is an in-memory MessageRepository.
type memMessages struct {
	mu    sync.Mutex
	items []models.Message
}

func (m *memMessages) Create(_ context.Context, in *models.Message) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := *in
	out.ID = uuid.New()
	out.CreatedAt = time.Now()
	out.UpdatedAt = out.CreatedAt
	m.items = append(m.items, out)
	return &out, nil
}

func (m *memMessages) filter(status string) []models.Message {
	out := []models.Message{}
	for _, it := range m.items {
		if status == "" || string(it.Status) == status {
			out = append(out, it)
		}
	}
	return out
}

func (m *memMessages) List(_ context.Context, status string, q models.ListQuery) ([]models.Message, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.filter(status)
	start := min(q.Offset(), len(all))
	end := min(start+q.Limit, len(all))
	return all[start:end], len(all), nil
}

func (m *memMessages) All(context.Context) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(""), nil
}

func (m *memMessages) UpdateStatus(_ context.Context, id uuid.UUID, status models.MessageStatus) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			out := m.items[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memMessages) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	n, err := m.BulkDelete(context.Background(), []uuid.UUID{id})
	return n > 0, err
}

func (m *memMessages) Count(_ context.Context, status string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filter(status)), nil
}

func (m *memMessages) CountByStatus(context.Context) (map[models.MessageStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[models.MessageStatus]int{models.MessageNew: 0, models.MessageRead: 0, models.MessageReplied: 0}
	for _, it := range m.items {
		out[it.Status]++
	}
	return out, nil
}

func (m *memMessages) Recent(_ context.Context, limit int) ([]models.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := append([]models.Message(nil), m.items...)
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	out := []models.Summary{}
	for i := 0; i < len(items) && i < limit; i++ {
		out = append(out, models.Summary{ID: items[i].ID, Title: items[i].Subject, Category: string(items[i].Status), CreatedAt: items[i].CreatedAt})
	}
	return out, nil
}

func (m *memMessages) BulkDelete(_ context.Context, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	kept := m.items[:0]
	for _, it := range m.items {
		if containsID(ids, it.ID) {
			n++
			continue
		}
		kept = append(kept, it)
	}
	m.items = kept
	return n, nil
}

func (m *memMessages) BulkUpdate(_ context.Context, ids []uuid.UUID, patch models.BulkPatch) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if patch.Status == nil {
		return 0, nil
	}
	var n int64
	for i := range m.items {
		if containsID(ids, m.items[i].ID) {
			m.items[i].Status = models.MessageStatus(*patch.Status)
			n++
		}
	}
	return n, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// memMedia is an in-memory upload.MediaRepository.
type memMedia struct {
	mu    sync.Mutex
	items []models.Media
}

func (m *memMedia) Create(_ context.Context, in *models.Media) (*models.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := *in
	out.ID = uuid.New()
	m.items = append(m.items, out)
	return &out, nil
}

func (m *memMedia) List(_ context.Context, category string, limit, offset int) ([]models.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Media{}
	for _, it := range m.items {
		if category == "" || it.Category == category {
			out = append(out, it)
		}
	}
	start := min(offset, len(out))
	return out[start:min(start+limit, len(out))], nil
}

func (m *memMedia) Count(ctx context.Context, category string) (int, error) {
	items, err := m.List(ctx, category, 1<<30, 0)
	return len(items), err
}

func (m *memMedia) DeleteByPath(_ context.Context, path string) (*models.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it.Path == path {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return &it, nil
		}
	}
	return nil, nil
}

// topFunc adapts a function to TopRanker.
type topFunc func(ctx context.Context, limit int) ([]models.ScoredItem, error)

func (f topFunc) TopByEngagement(ctx context.Context, limit int) ([]models.ScoredItem, error) {
	return f(ctx, limit)
}

// recordingNotifier captures contact notifications.
type recordingNotifier struct {
	sent chan *models.Message
}

func (n *recordingNotifier) NotifyContact(_ context.Context, m *models.Message) error {
	n.sent <- m
	return nil
}

// testAPI bundles a router with direct access to its fakes.
type testAPI struct {
	handler   http.Handler
	portfolio *contenttest.Repo[models.Portfolio, *models.Portfolio]
	posts     *contenttest.Repo[models.Post, *models.Post]
	messages  *memMessages
	media     *memMedia
	notifier  *recordingNotifier
	contact   *Contact
	sessions  *session.Store
	cookie    *http.Cookie
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	api := &testAPI{
		portfolio: contenttest.New[models.Portfolio](contenttest.PortfolioFields),
		posts:     contenttest.New[models.Post](contenttest.PostFields),
		messages:  &memMessages{},
		media:     &memMedia{},
		notifier:  &recordingNotifier{sent: make(chan *models.Message, 10)},
		sessions:  session.NewStore(nil, testSecret, false),
	}
	services := contenttest.New[models.Service](contenttest.ServiceFields)
	testimonials := contenttest.New[models.Testimonial](contenttest.TestimonialFields)

	cols := content.NewCollections(content.Repos{
		Portfolio:    api.portfolio,
		Services:     services,
		Posts:        api.posts,
		Testimonials: testimonials,
	}, resolve.Fallback, nil, markdown.New(markdown.DefaultStyle))

	disk, err := storage.NewDisk(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	uploads := upload.New(disk, api.media, upload.Options{})

	verifier, err := auth.NewStaticVerifier("admin", "s3cret-pass", "")
	if err != nil {
		t.Fatalf("NewStaticVerifier: %v", err)
	}

	var sharesMu sync.Mutex
	shares := map[uuid.UUID]int{}
	portfolio := NewCollection(cols.Portfolio, uploads, "featured").WithShare(func(ctx context.Context, id uuid.UUID) (int, error) {
		if doc, _ := api.portfolio.FindByID(ctx, id); doc == nil {
			return 0, apperr.NotFound("portfolio item")
		}
		sharesMu.Lock()
		defer sharesMu.Unlock()
		shares[id]++
		return shares[id], nil
	})
	api.contact = NewContact(api.messages, api.notifier)
	admin := NewAdmin(cols.Portfolio, cols.Services, cols.Blog, cols.Testimonials, api.messages,
		topFunc(func(context.Context, int) ([]models.ScoredItem, error) { return []models.ScoredItem{}, nil }))
	authH := NewAuth(auth.NewAuthenticator(verifier, ""), api.sessions)
	uploadH := NewUploads(uploads)

	r := chi.NewRouter()
	r.Use(middleware.LoadSession(api.sessions))
	r.Get("/health", Health(nil))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authH.Login)
		r.Get("/auth/logout", authH.Logout)
		r.Get("/auth/check", authH.Check)

		mountTestCollection(r, portfolio)
		mountTestCollection(r, NewCollection(cols.Services, uploads, "popular"))
		mountTestCollection(r, NewCollection(cols.Blog, uploads, "featured"))
		mountTestCollection(r, NewCollection(cols.Testimonials, uploads, "featured"))

		r.Post("/contact", api.contact.Submit)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/contact/messages", api.contact.List)
			r.Patch("/contact/messages/{id}", api.contact.UpdateStatus)
			r.Delete("/contact/messages/{id}", api.contact.Delete)

			r.Get("/admin/stats", admin.Stats)
			r.Get("/admin/recent", admin.Recent)
			r.Get("/admin/analytics", admin.Analytics)
			r.Post("/admin/bulk-action", admin.BulkAction)
			r.Get("/admin/export/{type}", admin.Export)

			r.Post("/upload/single", uploadH.Single)
			r.Post("/upload/multiple", uploadH.Multiple)
			r.Delete("/upload/delete", uploadH.Delete)
			r.Get("/upload/list", uploadH.List)
		})
	})
	api.handler = r

	rec := httptest.NewRecorder()
	if _, err := api.sessions.Create(context.Background(), rec, "admin"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	api.cookie = rec.Result().Cookies()[0]
	return api
}

func mountTestCollection(r chi.Router, c CollectionRoutes) {
	r.Route("/"+string(c.Name()), func(r chi.Router) {
		r.Get("/", c.List)
		r.Get("/{id}", c.Get)
		r.Post("/{id}/like", c.Like)
		r.Post("/{id}/share", c.Share)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", c.Create)
			r.Put("/{id}", c.Update)
			r.Delete("/{id}", c.Delete)
		})
	})
}

// do sends a request; admin requests carry the session cookie.
func (api *testAPI) do(t *testing.T, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.AddCookie(api.cookie)
	}
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a JSON response body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func portfolioBody(title string) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "A project",
		"category":    "Logo Design",
		"image":       "/uploads/portfolio/a.png",
		"tags":        "logo, red\nbrand",
	}
}
