package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"studiosite/internal/fallback"
	"studiosite/internal/models"
)

// Seed loads the bundled sample content into every empty collection.
// Collections that already hold documents are left alone.
func Seed(ctx context.Context, s *Stores, data *fallback.Data) error {
	now := time.Now()
	all := models.ListQuery{IncludeHidden: true}

	if err := seedCollection(ctx, "portfolio", s.Portfolio.Count, all, data.Portfolio, now, s.Portfolio.Create); err != nil {
		return err
	}
	if err := seedCollection(ctx, "services", s.Services.Count, all, data.Services, now, s.Services.Create); err != nil {
		return err
	}
	if err := seedCollection(ctx, "blog", s.Posts.Count, all, data.Blog, now, s.Posts.Create); err != nil {
		return err
	}
	return seedCollection(ctx, "testimonials", s.Testimonials.Count, all, data.Testimonials, now, s.Testimonials.Create)
}

func seedCollection[T any, PT interface {
	*T
	models.Entry
}](
	ctx context.Context,
	name string,
	count func(context.Context, models.ListQuery) (int, error),
	all models.ListQuery,
	items []T,
	now time.Time,
	create func(context.Context, PT) (PT, error),
) error {
	n, err := count(ctx, all)
	if err != nil {
		return fmt.Errorf("seed check %s: %w", name, err)
	}
	if n > 0 {
		slog.Info("collection already seeded, skipping", "collection", name, "count", n)
		return nil
	}

	for i := range items {
		v := items[i]
		doc := PT(&v)
		doc.Prepare(now)
		if _, err := create(ctx, doc); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
	}
	slog.Info("collection seeded", "collection", name, "count", len(items))
	return nil
}
