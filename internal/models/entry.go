// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the documents stored by the site: portfolio items,
// services, blog posts, testimonials, contact messages and upload metadata.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection names a content collection as it appears in API paths.
type Collection string

const (
	CollectionPortfolio    Collection = "portfolio"
	CollectionServices     Collection = "services"
	CollectionBlog         Collection = "blog"
	CollectionTestimonials Collection = "testimonials"
	CollectionMessages     Collection = "messages"
)

// Collections lists every collection in display order.
var Collections = []Collection{
	CollectionPortfolio,
	CollectionServices,
	CollectionBlog,
	CollectionTestimonials,
	CollectionMessages,
}

// ParseCollection maps a path segment to a Collection.
func ParseCollection(s string) (Collection, bool) {
	for _, c := range Collections {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Entry is implemented by every content document served by the generic
// collection endpoints.
type Entry interface {
	GetID() uuid.UUID
	GetCategory() string
	// Visible reports whether anonymous visitors may see the document.
	Visible() bool
	// Prepare fills defaults and derived fields before validation and save.
	Prepare(now time.Time)
	Validate() error
	SetViews(n int)
	// SetImage sets the main image (the avatar for testimonials).
	SetImage(url string)
	AddImages(urls ...string)
}

// Sluggable is implemented by documents addressable by slug.
type Sluggable interface {
	SlugSource() string
	GetSlug() string
	SetSlug(string)
}

// Summary is the projection used by the admin "recent items" view.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug,omitempty"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Engagement sums the interaction counters of a collection.
type Engagement struct {
	Views int64 `json:"views"`
	Likes int64 `json:"likes"`
}
