// Package fallback bundles sample content used when the API cannot be
// reached and for seeding an empty development database.
package fallback

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"studiosite/internal/models"
)

//go:embed sample.yaml
var sampleYAML []byte

// Data is the bundled sample content.
type Data struct {
	Portfolio    []models.Portfolio   `json:"portfolio"`
	Services     []models.Service     `json:"services"`
	Blog         []models.Post        `json:"blog"`
	Testimonials []models.Testimonial `json:"testimonials"`
}

var (
	once    sync.Once
	loaded  *Data
	loadErr error
)

// Default returns the embedded sample content, parsed once.
func Default() (*Data, error) {
	once.Do(func() {
		loaded, loadErr = Parse(sampleYAML)
	})
	return loaded, loadErr
}

// Parse decodes YAML sample content. Documents go through their JSON
// decoders so list fields get the same normalization as API input.
func Parse(raw []byte) (*Data, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("parse sample yaml: %w", err)
	}
	b, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("convert sample data: %w", err)
	}
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode sample data: %w", err)
	}
	return &d, nil
}

// Find returns the item whose ID or slug equals ident.
func Find[T any](items []T, ident string, id func(*T) uuid.UUID, slug func(*T) string) (*T, bool) {
	for i := range items {
		it := &items[i]
		if id(it).String() == ident || (slug != nil && slug(it) != "" && slug(it) == ident) {
			return it, true
		}
	}
	return nil, false
}
