package content

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"studiosite/internal/apperr"
	"studiosite/internal/cache"
	"studiosite/internal/content/contenttest"
	"studiosite/internal/models"
	"studiosite/internal/resolve"
)

type portfolioService = Service[models.Portfolio, *models.Portfolio]

func newPortfolio(t *testing.T, inv *cache.Invalidator) (*portfolioService, *contenttest.Repo[models.Portfolio, *models.Portfolio]) {
	t.Helper()
	repo := contenttest.New[models.Portfolio](contenttest.PortfolioFields)
	svc := New[models.Portfolio](repo, Options[models.Portfolio]{
		Collection:   models.CollectionPortfolio,
		Label:        "portfolio item",
		DefaultLimit: 12,
		Mode:         resolve.Fallback,
	}, inv)
	return svc, repo
}

func item(title string) *models.Portfolio {
	return &models.Portfolio{
		Title:       title,
		Description: "A project",
		Category:    "Logo Design",
		Image:       "/uploads/portfolio/a.png",
		Status:      models.PortfolioPublished,
	}
}

func TestCreateAssignsUniqueSlugs(t *testing.T) {
	svc, _ := newPortfolio(t, nil)
	ctx := context.Background()

	want := []string{"red-logo-concept", "red-logo-concept-1", "red-logo-concept-2"}
	for _, w := range want {
		got, err := svc.Create(ctx, item("Red Logo Concept"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if got.Slug != w {
			t.Errorf("slug = %q, want %q", got.Slug, w)
		}
		if got.Status != models.PortfolioPublished {
			t.Errorf("status = %q, want published default", got.Status)
		}
	}
}

func TestCreateUsesExplicitSlug(t *testing.T) {
	svc, _ := newPortfolio(t, nil)
	doc := item("Whatever")
	doc.Slug = "Custom Slug!"

	got, err := svc.Create(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Slug != "custom-slug" {
		t.Errorf("slug = %q", got.Slug)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, repo := newPortfolio(t, nil)
	doc := item("")
	doc.Category = "Pottery"

	_, err := svc.Create(context.Background(), doc)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || !strings.Contains(ve.Msg, "title") {
		t.Errorf("message %q should name the title field", err)
	}
	if repo.Len() != 0 {
		t.Error("invalid document was stored")
	}
}

func TestCreateRetriesSlugConflict(t *testing.T) {
	ctx := context.Background()

	t.Run("recovers", func(t *testing.T) {
		svc, repo := newPortfolio(t, nil)
		repo.CreateConflicts = 2
		got, err := svc.Create(ctx, item("Race"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if got.Slug != "race" {
			t.Errorf("slug = %q", got.Slug)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		svc, repo := newPortfolio(t, nil)
		repo.CreateConflicts = slugAttempts
		_, err := svc.Create(ctx, item("Race"))
		if !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("err = %v, want ErrConflict", err)
		}
	})
}

func TestGetByIDAndSlugCountsViews(t *testing.T) {
	svc, _ := newPortfolio(t, nil)
	ctx := context.Background()
	created, err := svc.Create(ctx, item("Red Logo Concept"))
	if err != nil {
		t.Fatal(err)
	}

	got, _, err := svc.Get(ctx, created.ID.String(), false)
	if err != nil {
		t.Fatalf("Get by id: %v", err)
	}
	if got.Views != 1 {
		t.Errorf("views after first get = %d", got.Views)
	}

	got, _, err = svc.Get(ctx, "red-logo-concept", false)
	if err != nil {
		t.Fatalf("Get by slug: %v", err)
	}
	if got.ID != created.ID || got.Views != 2 {
		t.Errorf("got id=%s views=%d", got.ID, got.Views)
	}
}

func TestGetMisses(t *testing.T) {
	svc, _ := newPortfolio(t, nil)
	ctx := context.Background()

	draft := item("Secret")
	draft.Status = models.PortfolioDraft
	created, err := svc.Create(ctx, draft)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		ident string
	}{
		{"well-formed missing id", uuid.NewString()},
		{"unknown slug", "no-such-item"},
		{"draft hidden from public", created.ID.String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Get(ctx, tt.ident, false)
			if !errors.Is(err, apperr.ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
			if err.Error() != "portfolio item not found" {
				t.Errorf("message = %q", err.Error())
			}
		})
	}

	if _, _, err := svc.Get(ctx, created.ID.String(), true); err != nil {
		t.Errorf("admin get of draft: %v", err)
	}
}

func TestGetReturnsRelated(t *testing.T) {
	svc, repo := newPortfolio(t, nil)
	ctx := context.Background()
	for _, title := range []string{"One", "Two", "Three", "Four", "Five"} {
		if _, err := svc.Create(ctx, item(title)); err != nil {
			t.Fatal(err)
		}
	}
	other := item("Other category")
	other.Category = "Branding"
	repo.Put(*other)

	doc, related, err := svc.Get(ctx, "three", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(related) != RelatedLimit {
		t.Fatalf("related = %d, want %d", len(related), RelatedLimit)
	}
	for _, r := range related {
		if r.ID == doc.ID || r.Category != doc.Category {
			t.Errorf("bad related item %q", r.Title)
		}
	}
}

func TestGetRenders(t *testing.T) {
	repo := contenttest.New[models.Post](contenttest.PostFields)
	svc := New[models.Post](repo, Options[models.Post]{
		Collection: models.CollectionBlog,
		Label:      "blog post",
		Prune:      func(p *models.Post) { p.Content = "" },
		Render: func(p *models.Post) error {
			p.ContentHTML = "<p>" + p.Content + "</p>"
			return nil
		},
	}, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &models.Post{Title: "Hello", Content: "body", Category: "News", Published: true}); err != nil {
		t.Fatal(err)
	}

	items, _, err := svc.List(ctx, models.ListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Content != "" {
		t.Errorf("list items should omit content: %+v", items)
	}

	post, _, err := svc.Get(ctx, "hello", false)
	if err != nil {
		t.Fatal(err)
	}
	if post.ContentHTML != "<p>body</p>" || post.PublishedAt == nil {
		t.Errorf("post = %+v", post)
	}
}

func TestListPagination(t *testing.T) {
	svc, repo := newPortfolio(t, nil)
	for i := 0; i < 5; i++ {
		repo.Put(*item("Item"))
	}
	hidden := item("Hidden")
	hidden.Status = models.PortfolioDraft
	repo.Put(*hidden)

	tests := []struct {
		name      string
		q         models.ListQuery
		wantLen   int
		wantPages int
		wantNext  bool
		wantLimit int
	}{
		{"defaults", models.ListQuery{}, 5, 1, false, 12},
		{"first page", models.ListQuery{Page: 1, Limit: 2}, 2, 3, true, 2},
		{"last page", models.ListQuery{Page: 3, Limit: 2}, 1, 3, false, 2},
		{"past the end", models.ListQuery{Page: 9, Limit: 2}, 0, 3, false, 2},
		{"huge page", models.ListQuery{Page: math.MaxInt, Limit: 12}, 0, 1, false, 12},
		{"capped", models.ListQuery{Limit: 500}, 5, 1, false, MaxLimit},
		{"admin sees drafts", models.ListQuery{IncludeHidden: true}, 6, 1, false, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, p, err := svc.List(context.Background(), tt.q)
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != tt.wantLen || p.Total != tt.wantPages || p.HasNext != tt.wantNext || p.Limit != tt.wantLimit {
				t.Errorf("len=%d pagination=%+v", len(items), p)
			}
			skip := (p.Current - 1) * p.Limit
			if p.HasNext != (skip+len(items) < p.Count) {
				t.Errorf("has_next inconsistent with count: %+v", p)
			}
		})
	}
}

func TestUpdatePartial(t *testing.T) {
	svc, _ := newPortfolio(t, nil)
	ctx := context.Background()
	created, err := svc.Create(ctx, item("Red Logo Concept"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Like(ctx, created.ID); err != nil {
		t.Fatal(err)
	}

	decode := func(body string) func(*models.Portfolio) error {
		return func(p *models.Portfolio) error { return json.Unmarshal([]byte(body), p) }
	}

	got, err := svc.Update(ctx, created.ID, decode(`{"description":"New text","tags":"a, b"}`))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Slug != "red-logo-concept" || got.Title != "Red Logo Concept" {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if got.Description != "New text" || len(got.Tags) != 2 || got.Likes != 1 {
		t.Errorf("update not applied: %+v", got)
	}

	got, err = svc.Update(ctx, created.ID, decode(`{"title":"Blue Logo"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got.Slug != "blue-logo" {
		t.Errorf("slug after rename = %q", got.Slug)
	}

	if _, err := svc.Update(ctx, created.ID, decode(`{"priority":1000}`)); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	if _, err := svc.Update(ctx, uuid.New(), decode(`{}`)); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateKeepsOwnSlug(t *testing.T) {
	svc, _ := newPortfolio(t, nil)
	ctx := context.Background()
	a, _ := svc.Create(ctx, item("Alpha"))

	got, err := svc.Update(ctx, a.ID, func(p *models.Portfolio) error {
		p.Slug = "Alpha"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Slug != "alpha" {
		t.Errorf("slug = %q, own slug must not count as taken", got.Slug)
	}
}

func TestDeleteTwice(t *testing.T) {
	svc, _ := newPortfolio(t, nil)
	ctx := context.Background()
	created, _ := svc.Create(ctx, item("Gone"))

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestConcurrentLikes(t *testing.T) {
	svc, _ := newPortfolio(t, nil)
	ctx := context.Background()
	created, _ := svc.Create(ctx, item("Popular"))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Like(ctx, created.ID); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	got, _, err := svc.Get(ctx, created.ID.String(), false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Likes != n {
		t.Errorf("likes = %d, want %d", got.Likes, n)
	}

	if _, err := svc.Like(ctx, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("like of missing item err = %v", err)
	}
}

func TestConcurrentViews(t *testing.T) {
	svc, _ := newPortfolio(t, nil)
	ctx := context.Background()
	created, err := svc.Create(ctx, item("Busy Page"))
	if err != nil {
		t.Fatal(err)
	}

	const n = 50
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int]bool{}
	)
	for i := 0; i < n; i++ {
		ident := created.ID.String()
		if i%2 == 1 {
			ident = created.Slug
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _, err := svc.Get(ctx, ident, false)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			seen[got.Views] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("distinct view counts returned = %d, want %d", len(seen), n)
	}
	got, _, err := svc.Get(ctx, created.ID.String(), false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Views != n+1 {
		t.Errorf("views = %d, want %d", got.Views, n+1)
	}
}

func TestWritePolicyPurgesCollection(t *testing.T) {
	mem := cache.NewMemory(0)
	defer mem.Close()
	ctx := context.Background()

	tests := []struct {
		policy   cache.Policy
		wantKept bool
	}{
		{cache.PolicyTTL, true},
		{cache.PolicyWrite, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			mem.Set(ctx, "/api/portfolio?page=1", []byte(`{}`), time.Minute)
			mem.Set(ctx, "/api/services", []byte(`{}`), time.Minute)

			svc, _ := newPortfolio(t, cache.NewInvalidator(mem, tt.policy))
			if _, err := svc.Create(ctx, item("Fresh")); err != nil {
				t.Fatal(err)
			}

			if _, ok := mem.Get(ctx, "/api/portfolio?page=1"); ok != tt.wantKept {
				t.Errorf("portfolio entry kept = %v, want %v", ok, tt.wantKept)
			}
			if _, ok := mem.Get(ctx, "/api/services"); !ok {
				t.Error("other collection was purged")
			}
		})
	}
}

func TestStats(t *testing.T) {
	svc, repo := newPortfolio(t, nil)
	a := item("A")
	a.Featured = true
	repo.Put(*a)
	repo.Put(*item("B"))
	d := item("C")
	d.Status = models.PortfolioDraft
	repo.Put(*d)

	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st != (models.CollectionStats{Total: 3, Highlighted: 1, Published: 2}) {
		t.Errorf("stats = %+v", st)
	}
}

func TestBulk(t *testing.T) {
	svc, repo := newPortfolio(t, nil)
	ctx := context.Background()
	a := repo.Put(*item("A"))
	b := repo.Put(*item("B"))
	ids := []uuid.UUID{a.ID, b.ID, uuid.New()}

	n, err := svc.Bulk(ctx, BulkFeature, ids, models.BulkPatch{})
	if err != nil || n != 2 {
		t.Fatalf("feature = %d, %v", n, err)
	}
	if st, _ := svc.Stats(ctx); st.Highlighted != 2 {
		t.Errorf("highlighted = %d", st.Highlighted)
	}

	if _, err := svc.Bulk(ctx, BulkToggleFeature, ids[:1], models.BulkPatch{}); err != nil {
		t.Fatal(err)
	}
	if st, _ := svc.Stats(ctx); st.Highlighted != 1 {
		t.Errorf("highlighted after toggle = %d", st.Highlighted)
	}

	n, err = svc.Bulk(ctx, BulkDelete, ids, models.BulkPatch{})
	if err != nil || n != 2 || repo.Len() != 0 {
		t.Errorf("delete = %d, %v, remaining %d", n, err, repo.Len())
	}

	for _, action := range []BulkAction{"explode", BulkDelete} {
		var in []uuid.UUID
		if action != BulkDelete {
			in = ids
		}
		if _, err := svc.Bulk(ctx, action, in, models.BulkPatch{}); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", action, err)
		}
	}
}

type messagesOnly struct{ deleted, updated int }

func (m *messagesOnly) BulkDelete(_ context.Context, ids []uuid.UUID) (int64, error) {
	m.deleted += len(ids)
	return int64(len(ids)), nil
}

func (m *messagesOnly) BulkUpdate(_ context.Context, ids []uuid.UUID, _ models.BulkPatch) (int64, error) {
	m.updated += len(ids)
	return int64(len(ids)), nil
}

func TestApplyBulkUpdateValidatesPatch(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }

	tests := []struct {
		name       string
		collection models.Collection
		patch      models.BulkPatch
		wantErr    bool
	}{
		{"portfolio category outside the set", models.CollectionPortfolio, models.BulkPatch{Category: str("Not A Category")}, true},
		{"portfolio known category", models.CollectionPortfolio, models.BulkPatch{Category: str("Branding")}, false},
		{"portfolio empty category", models.CollectionPortfolio, models.BulkPatch{Category: str("")}, true},
		{"portfolio priority above range", models.CollectionPortfolio, models.BulkPatch{Priority: num(999)}, true},
		{"portfolio priority below range", models.CollectionPortfolio, models.BulkPatch{Priority: num(-1)}, true},
		{"portfolio priority bounds", models.CollectionPortfolio, models.BulkPatch{Priority: num(100)}, false},
		{"portfolio unknown status", models.CollectionPortfolio, models.BulkPatch{Status: str("deleted")}, true},
		{"portfolio archived", models.CollectionPortfolio, models.BulkPatch{Status: str("archived")}, false},
		{"services empty category", models.CollectionServices, models.BulkPatch{Category: str("")}, true},
		{"services free category", models.CollectionServices, models.BulkPatch{Category: str("Anything Goes")}, false},
		{"blog category too long", models.CollectionBlog, models.BulkPatch{Category: str(strings.Repeat("x", 101))}, true},
		{"messages unknown status", models.CollectionMessages, models.BulkPatch{Status: str("spam")}, true},
		{"messages replied", models.CollectionMessages, models.BulkPatch{Status: str("replied")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &messagesOnly{}
			_, err := ApplyBulk(context.Background(), target, tt.collection, BulkUpdate, []uuid.UUID{uuid.New()}, tt.patch)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Errorf("err = %v, want ErrValidation", err)
				}
				if target.updated != 0 {
					t.Errorf("invalid patch reached the store")
				}
				return
			}
			if err != nil || target.updated != 1 {
				t.Errorf("err = %v, updated = %d", err, target.updated)
			}
		})
	}
}

func TestApplyBulkWithoutHighlight(t *testing.T) {
	target := &messagesOnly{}
	ids := []uuid.UUID{uuid.New()}

	if _, err := ApplyBulk(context.Background(), target, models.CollectionMessages, BulkFeature, ids, models.BulkPatch{}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("feature err = %v", err)
	}
	if n, err := ApplyBulk(context.Background(), target, models.CollectionMessages, BulkDelete, ids, models.BulkPatch{}); err != nil || n != 1 {
		t.Errorf("delete = %d, %v", n, err)
	}
}
