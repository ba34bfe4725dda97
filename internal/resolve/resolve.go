// Package resolve turns a path identifier that may be either a document ID
// or a slug into a document.
package resolve

import (
	"context"

	"github.com/google/uuid"
)

// Mode selects how an identifier is looked up.
type Mode string

const (
	// Strict performs exactly one lookup, chosen by the identifier's shape.
	Strict Mode = "strict"
	// Fallback retries with the other lookup when the first one misses.
	Fallback Mode = "fallback"
)

// IsID reports whether s has the canonical UUID shape
// (36 characters, 8-4-4-4-12 hex groups).
func IsID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// Lookups are the two finders a resolver chooses between. BySlug may be nil
// for collections without slugs. Both return (nil, nil) on a miss.
type Lookups[T any] struct {
	ByID   func(ctx context.Context, id uuid.UUID) (*T, error)
	BySlug func(ctx context.Context, slug string) (*T, error)
}

// Resolver looks documents up by ID or slug.
type Resolver[T any] struct {
	lookups Lookups[T]
	mode    Mode
}

// New creates a resolver. An unknown mode behaves like Strict.
func New[T any](l Lookups[T], mode Mode) *Resolver[T] {
	return &Resolver[T]{lookups: l, mode: mode}
}

// Resolve returns the document identified by ident, or (nil, nil) when
// nothing matches.
func (r *Resolver[T]) Resolve(ctx context.Context, ident string) (*T, error) {
	if IsID(ident) {
		doc, err := r.lookups.ByID(ctx, uuid.MustParse(ident))
		if err != nil || doc != nil || r.mode != Fallback {
			return doc, err
		}
		return r.bySlug(ctx, ident)
	}

	doc, err := r.bySlug(ctx, ident)
	if err != nil || doc != nil || r.mode != Fallback {
		return doc, err
	}
	// A slug-shaped identifier can still be a UUID in non-canonical form
	// (braces, urn: prefix).
	if id, perr := uuid.Parse(ident); perr == nil {
		return r.lookups.ByID(ctx, id)
	}
	return nil, nil
}

func (r *Resolver[T]) bySlug(ctx context.Context, slug string) (*T, error) {
	if r.lookups.BySlug == nil || slug == "" {
		return nil, nil
	}
	return r.lookups.BySlug(ctx, slug)
}
