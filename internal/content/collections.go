package content

import (
	"studiosite/internal/cache"
	"studiosite/internal/markdown"
	"studiosite/internal/models"
	"studiosite/internal/resolve"
)

type (
	PortfolioService   = Service[models.Portfolio, *models.Portfolio]
	ServiceService     = Service[models.Service, *models.Service]
	PostService        = Service[models.Post, *models.Post]
	TestimonialService = Service[models.Testimonial, *models.Testimonial]
)

// Repos holds the repository of every content collection.
type Repos struct {
	Portfolio    Repository[models.Portfolio]
	Services     Repository[models.Service]
	Posts        Repository[models.Post]
	Testimonials Repository[models.Testimonial]
}

// Collections holds the configured service of every content collection.
type Collections struct {
	Portfolio    *PortfolioService
	Services     *ServiceService
	Blog         *PostService
	Testimonials *TestimonialService
}

// NewCollections configures the four content collections. md renders blog
// post bodies on single reads and may be nil.
func NewCollections(r Repos, mode resolve.Mode, inv *cache.Invalidator, md *markdown.Renderer) *Collections {
	blog := Options[models.Post]{
		Collection:   models.CollectionBlog,
		Label:        "blog post",
		DefaultLimit: 10,
		Mode:         mode,
		Prune:        func(p *models.Post) { p.Content = "" },
	}
	if md != nil {
		blog.Render = md.RenderPost
	}

	return &Collections{
		Portfolio: New[models.Portfolio](r.Portfolio, Options[models.Portfolio]{
			Collection:   models.CollectionPortfolio,
			Label:        "portfolio item",
			DefaultLimit: 12,
			Mode:         mode,
		}, inv),
		Services: New[models.Service](r.Services, Options[models.Service]{
			Collection:   models.CollectionServices,
			Label:        "service",
			DefaultLimit: 20,
			Mode:         mode,
		}, inv),
		Blog: New[models.Post](r.Posts, blog, inv),
		// Testimonials have no slug, so every identifier is looked up by ID.
		Testimonials: New[models.Testimonial](r.Testimonials, Options[models.Testimonial]{
			Collection:   models.CollectionTestimonials,
			Label:        "testimonial",
			DefaultLimit: 10,
			Mode:         resolve.Strict,
		}, inv),
	}
}
