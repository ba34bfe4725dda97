// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL identifiers from titles and makes them unique
// within a collection.
package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a title reduces to nothing (e.g. only punctuation).
const Fallback = "item"

// maxAttempts bounds the suffix search in Unique.
const maxAttempts = 1000

var (
	disallowed      = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// ErrExhausted is returned when no free suffix was found within maxAttempts.
var ErrExhausted = errors.New("slug: no free suffix")

// Generate lowercases s, folds accents, drops everything outside
// [a-z0-9], whitespace and hyphens, and joins words with single hyphens.
//
//	"Café Déjà Vu!" -> "cafe-deja-vu"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(fold(s)))
	result = disallowed.ReplaceAllString(result, "")
	result = whitespaceRun.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// fold decomposes s (NFKD) and removes combining marks.
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFKD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ExistsFunc reports whether candidate is already taken in the collection.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Unique returns base if it is free, otherwise the first free of base-1,
// base-2, ... An empty base is replaced by Fallback.
func Unique(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	if base == "" {
		base = Fallback
	}
	candidate := base
	for i := 1; i <= maxAttempts; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("%w for %q", ErrExhausted, base)
}
