// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"studiosite/internal/apperr"
	"studiosite/internal/content"
	"studiosite/internal/export"
	"studiosite/internal/models"
	"studiosite/internal/respond"
)

const (
	// recentLimit is the number of newest documents per collection on the dashboard.
	recentLimit = 5
	// topLimit is the number of portfolio items ranked by engagement.
	topLimit = 5
)

// AdminCollection is what the back office needs from a content
// collection. content.Service implements it.
type AdminCollection interface {
	Collection() models.Collection
	Stats(ctx context.Context) (models.CollectionStats, error)
	Recent(ctx context.Context, limit int) ([]models.Summary, error)
	Engagement(ctx context.Context) (models.Engagement, error)
	Export(ctx context.Context) (any, error)
	Bulk(ctx context.Context, action content.BulkAction, ids []uuid.UUID, patch models.BulkPatch) (int64, error)
}

// TopRanker ranks portfolio items by engagement score.
type TopRanker interface {
	TopByEngagement(ctx context.Context, limit int) ([]models.ScoredItem, error)
}

// Admin serves the back office dashboard, bulk actions and exports.
type Admin struct {
	portfolio    AdminCollection
	services     AdminCollection
	blog         AdminCollection
	testimonials AdminCollection
	messages     MessageRepository
	top          TopRanker
	now          func() time.Time
}

// NewAdmin creates the admin handler group.
func NewAdmin(portfolio, services, blog, testimonials AdminCollection, messages MessageRepository, top TopRanker) *Admin {
	return &Admin{
		portfolio:    portfolio,
		services:     services,
		blog:         blog,
		testimonials: testimonials,
		messages:     messages,
		top:          top,
		now:          time.Now,
	}
}

func (a *Admin) collections() []AdminCollection {
	return []AdminCollection{a.portfolio, a.services, a.blog, a.testimonials}
}

func (a *Admin) collection(name string) (AdminCollection, bool) {
	for _, c := range a.collections() {
		if string(c.Collection()) == name {
			return c, true
		}
	}
	return nil, false
}

// Stats handles GET /api/admin/stats. The counts run concurrently; any
// failure fails the whole response.
func (a *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	var st models.Stats
	g, ctx := errgroup.WithContext(r.Context())

	targets := []*models.CollectionStats{&st.Portfolio, &st.Services, &st.Blog, &st.Testimonials}
	for i, c := range a.collections() {
		g.Go(func() error {
			s, err := c.Stats(ctx)
			if err != nil {
				return fmt.Errorf("%s stats: %w", c.Collection(), err)
			}
			*targets[i] = s
			return nil
		})
	}
	g.Go(func() (err error) {
		st.Messages.Total, err = a.messages.Count(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		st.Messages.New, err = a.messages.Count(ctx, string(models.MessageNew))
		return err
	})

	if err := g.Wait(); err != nil {
		respond.Err(w, r, fmt.Errorf("admin stats: %w", err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"data": st})
}

// Recent handles GET /api/admin/recent.
func (a *Admin) Recent(w http.ResponseWriter, r *http.Request) {
	var rec models.Recent
	g, ctx := errgroup.WithContext(r.Context())

	targets := []*[]models.Summary{&rec.Portfolio, &rec.Services, &rec.Blog, &rec.Testimonials}
	for i, c := range a.collections() {
		g.Go(func() error {
			items, err := c.Recent(ctx, recentLimit)
			if err != nil {
				return fmt.Errorf("%s recent: %w", c.Collection(), err)
			}
			*targets[i] = items
			return nil
		})
	}
	g.Go(func() (err error) {
		rec.Messages, err = a.messages.Recent(ctx, recentLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		respond.Err(w, r, fmt.Errorf("admin recent: %w", err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"data": rec})
}

// Analytics handles GET /api/admin/analytics.
func (a *Admin) Analytics(w http.ResponseWriter, r *http.Request) {
	cols := a.collections()
	engagement := make([]models.Engagement, len(cols))
	var out models.Analytics

	g, ctx := errgroup.WithContext(r.Context())
	for i, c := range cols {
		g.Go(func() (err error) {
			engagement[i], err = c.Engagement(ctx)
			return err
		})
	}
	g.Go(func() (err error) {
		out.TopPortfolio, err = a.top.TopByEngagement(ctx, topLimit)
		return err
	})
	g.Go(func() (err error) {
		out.MessagesByStatus, err = a.messages.CountByStatus(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		respond.Err(w, r, fmt.Errorf("admin analytics: %w", err))
		return
	}
	out.Engagement = make(map[models.Collection]models.Engagement, len(cols))
	for i, c := range cols {
		out.Engagement[c.Collection()] = engagement[i]
	}
	respond.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// bulkRequest is the body of POST /api/admin/bulk-action.
type bulkRequest struct {
	Type   string             `json:"type"`
	Action content.BulkAction `json:"action"`
	IDs    []string           `json:"ids"`
	Data   models.BulkPatch   `json:"data"`
}

// BulkAction handles POST /api/admin/bulk-action.
func (a *Admin) BulkAction(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	var n int64
	if req.Type == string(models.CollectionMessages) {
		n, err = content.ApplyBulk(r.Context(), a.messages, models.CollectionMessages, req.Action, ids, req.Data)
	} else if c, ok := a.collection(req.Type); ok {
		n, err = c.Bulk(r.Context(), req.Action, ids, req.Data)
	} else {
		err = apperr.Invalidf("unknown collection type %q", req.Type)
	}
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	slog.Info("bulk action applied", "type", req.Type, "action", req.Action, "ids", len(ids), "affected", n)
	respond.JSON(w, http.StatusOK, map[string]int64{"affected": n})
}

// Export handles GET /api/admin/export/{type}?format=json|csv|xlsx.
func (a *Admin) Export(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "type")
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	var docs any
	if name == string(models.CollectionMessages) {
		docs, err = a.messages.All(r.Context())
	} else if c, ok := a.collection(name); ok {
		docs, err = c.Export(r.Context())
	} else {
		err = apperr.Invalidf("unknown collection type %q", name)
	}
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, name, docs); err != nil {
		respond.Err(w, r, fmt.Errorf("export %s: %w", name, err))
		return
	}

	h := w.Header()
	h.Set("Content-Type", format.ContentType())
	h.Set("Content-Disposition", `attachment; filename="`+export.Filename(name, format, a.now())+`"`)
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("export write failed", "type", name, "error", err)
	}
}
