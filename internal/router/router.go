// Package router sets up all HTTP routes and middleware chains for the
// studio site API. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"studiosite/internal/cache"
	"studiosite/internal/handlers"
	"studiosite/internal/metrics"
	"studiosite/internal/middleware"
	"studiosite/internal/models"
	"studiosite/internal/respond"
	"studiosite/internal/session"
)

// CacheTTLs is how long list responses of each collection stay cached.
var CacheTTLs = map[models.Collection]time.Duration{
	models.CollectionPortfolio:    5 * time.Minute,
	models.CollectionBlog:         5 * time.Minute,
	models.CollectionServices:     10 * time.Minute,
	models.CollectionTestimonials: 30 * time.Minute,
}

// Deps holds everything the router wires together.
type Deps struct {
	Sessions    *session.Store
	Cache       cache.Cache
	CORSOrigin  string
	Collections []handlers.CollectionRoutes
	Admin       *handlers.Admin
	Auth        *handlers.Auth
	Contact     *handlers.Contact
	Uploads     *handlers.Uploads
	Health      http.HandlerFunc
	// Files serves locally stored uploads under /uploads; nil when uploads
	// live in object storage.
	Files        http.Handler
	LoginLimit   *middleware.RateLimiter
	ContactLimit *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(d.CORSOrigin))
	r.Use(middleware.SameOrigin(d.CORSOrigin))
	r.Use(middleware.LoadSession(d.Sessions))

	r.Get("/health", d.Health)
	r.Handle("/metrics", metrics.Handler())
	if d.Files != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads", d.Files))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(d.LoginLimit.Middleware).Post("/login", d.Auth.Login)
			r.Get("/logout", d.Auth.Logout)
			r.Post("/logout", d.Auth.Logout)
			r.Get("/check", d.Auth.Check)
		})

		for _, c := range d.Collections {
			mountCollection(r, c, d.Cache)
		}

		r.With(d.ContactLimit.Middleware).Post("/contact", d.Contact.Submit)

		// Back office: everything below needs an admin session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Route("/contact/messages", func(r chi.Router) {
				r.Get("/", d.Contact.List)
				r.Patch("/{id}", d.Contact.UpdateStatus)
				r.Delete("/{id}", d.Contact.Delete)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", d.Admin.Stats)
				r.Get("/recent", d.Admin.Recent)
				r.Get("/analytics", d.Admin.Analytics)
				r.Post("/bulk-action", d.Admin.BulkAction)
				r.Get("/export/{type}", d.Admin.Export)
			})

			r.Route("/upload", func(r chi.Router) {
				r.Post("/single", d.Uploads.Single)
				r.Post("/multiple", d.Uploads.Multiple)
				r.Delete("/delete", d.Uploads.Delete)
				r.Get("/list", d.Uploads.List)
			})
		})
	})

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)
	return r
}

// mountCollection registers the REST endpoints of one collection. Only the
// list endpoint is cached: single reads count a view on every request.
func mountCollection(r chi.Router, c handlers.CollectionRoutes, rc cache.Cache) {
	ttl, ok := CacheTTLs[c.Name()]
	if !ok {
		ttl = 5 * time.Minute
	}

	r.Route("/"+string(c.Name()), func(r chi.Router) {
		r.With(cache.Middleware(rc, ttl, middleware.IsAdmin)).Get("/", c.List)
		r.Get("/{id}", c.Get)
		r.Post("/{id}/like", c.Like)
		if c.Name() == models.CollectionPortfolio {
			r.Post("/{id}/share", c.Share)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", c.Create)
			r.Put("/{id}", c.Update)
			r.Delete("/{id}", c.Delete)
		})
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	respond.Error(w, http.StatusNotFound, "route not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
}
