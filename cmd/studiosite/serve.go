package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"studiosite/internal/auth"
	"studiosite/internal/cache"
	"studiosite/internal/config"
	"studiosite/internal/content"
	"studiosite/internal/database"
	"studiosite/internal/handlers"
	"studiosite/internal/imaging"
	"studiosite/internal/mailer"
	"studiosite/internal/markdown"
	"studiosite/internal/middleware"
	"studiosite/internal/router"
	"studiosite/internal/session"
	"studiosite/internal/storage"
	"studiosite/internal/store"
	"studiosite/internal/upload"
)

// shutdownTimeout bounds how long in-flight requests may take after a
// shutdown signal.
const shutdownTimeout = 30 * time.Second

func serve(ctx context.Context, _ *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"cache", cfg.CacheBackend,
		"cache_invalidation", cfg.CacheInvalidation,
		"id_lookup", cfg.IDLookup,
		"storage", cfg.StorageBackend,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL and apply pending migrations.
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}
	stores := store.New(db)

	// Response cache: in-process by default, Valkey when configured. The
	// Valkey client also backs session revocation.
	var (
		responses cache.Cache
		valkey    *redis.Client
	)
	switch cfg.CacheBackend {
	case config.CacheValkey:
		valkey, err = cache.ConnectValkey(ctx, cfg.ValkeyAddr(), cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			return err
		}
		defer valkey.Close()
		responses = cache.NewValkey(valkey)
	default:
		mem := cache.NewMemory(time.Minute)
		defer mem.Close()
		responses = mem
	}
	sessions := session.NewStore(valkey, cfg.SessionSecret, !cfg.IsDev())

	files, fileServer, err := newStorage(cfg)
	if err != nil {
		return err
	}
	uploads := upload.New(files, stores.Media, upload.Options{
		MaxSize:    cfg.UploadMaxSize,
		MaxFiles:   cfg.UploadMaxFiles,
		ThumbWidth: imaging.ThumbWidth,
	})

	cols := content.NewCollections(content.Repos{
		Portfolio:    stores.Portfolio,
		Services:     stores.Services,
		Posts:        stores.Posts,
		Testimonials: stores.Testimonials,
	}, cfg.IDLookup, cache.NewInvalidator(responses, cfg.CacheInvalidation), markdown.New(markdown.DefaultStyle))

	verifier, err := auth.NewStaticVerifier(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash)
	if err != nil {
		return err
	}
	authenticator := auth.NewAuthenticator(verifier, cfg.TOTPSecret)
	if authenticator.TwoFactor() {
		slog.Info("two-factor login enabled")
	}

	notifier := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		To:       cfg.NotifyTo,
	})
	contact := handlers.NewContact(stores.Messages, notifier)

	loginLimit := middleware.NewRateLimiter(5, time.Minute)
	defer loginLimit.Stop()
	contactLimit := middleware.NewRateLimiter(3, time.Minute)
	defer contactLimit.Stop()

	r := router.New(router.Deps{
		Sessions:   sessions,
		Cache:      responses,
		CORSOrigin: cfg.CORSOrigin,
		Collections: []handlers.CollectionRoutes{
			handlers.NewCollection(cols.Portfolio, uploads, "featured").WithShare(stores.Portfolio.IncrementShares),
			handlers.NewCollection(cols.Services, uploads, "popular"),
			handlers.NewCollection(cols.Blog, uploads, "featured"),
			handlers.NewCollection(cols.Testimonials, uploads, "featured"),
		},
		Admin:        handlers.NewAdmin(cols.Portfolio, cols.Services, cols.Blog, cols.Testimonials, stores.Messages, stores.Portfolio),
		Auth:         handlers.NewAuth(authenticator, sessions),
		Contact:      contact,
		Uploads:      handlers.NewUploads(uploads),
		Health:       handlers.Health(db),
		Files:        fileServer,
		LoginLimit:   loginLimit,
		ContactLimit: contactLimit,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	contact.Wait()

	slog.Info("server stopped gracefully")
	return nil
}

// newStorage returns the configured upload backend and, for the disk
// backend, the handler that serves its files.
func newStorage(cfg *config.Config) (storage.Provider, http.Handler, error) {
	if cfg.StorageBackend == config.StorageS3 {
		s3, err := storage.NewS3(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s3, nil, nil
	}

	disk, err := storage.NewDisk(cfg.UploadDir, cfg.UploadURL)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("disk storage ready", "dir", cfg.UploadDir)
	return disk, disk.Handler(), nil
}
