// Package store implements PostgreSQL persistence for every collection.
// Read methods return (nil, nil) when a document does not exist.
package store

import "database/sql"

// Stores groups every store over one connection pool.
type Stores struct {
	Portfolio    *PortfolioStore
	Services     *ServiceStore
	Posts        *PostStore
	Testimonials *TestimonialStore
	Messages     *MessageStore
	Media        *MediaStore
}

// New creates every store over db.
func New(db *sql.DB) *Stores {
	return &Stores{
		Portfolio:    NewPortfolioStore(db),
		Services:     NewServiceStore(db),
		Posts:        NewPostStore(db),
		Testimonials: NewTestimonialStore(db),
		Messages:     NewMessageStore(db),
		Media:        NewMediaStore(db),
	}
}
