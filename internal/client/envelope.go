package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"studiosite/internal/models"
)

// listKeys are the fields a list payload may carry its items under, in
// lookup order.
var listKeys = []string{"data", "items", "portfolio", "services", "posts", "messages", "testimonials"}

// singleKeys are the fields a single-item payload may wrap its item in.
var singleKeys = []string{"data", "item"}

// List is one page of a collection.
type List[T any] struct {
	Items      []T
	Pagination *models.Pagination
}

// decodeList accepts a bare array or an object holding the array under
// one of listKeys, with optional pagination.
func decodeList[T any](raw []byte) (*List[T], error) {
	raw = bytes.TrimSpace(raw)
	out := &List[T]{Items: []T{}}

	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &out.Items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return out, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	for _, key := range listKeys {
		items, ok := obj[key]
		if !ok || !isArray(items) {
			continue
		}
		if err := json.Unmarshal(items, &out.Items); err != nil {
			return nil, fmt.Errorf("decode list %q: %w", key, err)
		}
		break
	}
	if p, ok := obj["pagination"]; ok {
		var page models.Pagination
		if err := json.Unmarshal(p, &page); err == nil {
			out.Pagination = &page
		}
	}
	return out, nil
}

// decodeItem accepts a bare object or one wrapped under singleKeys.
func decodeItem[T any](raw []byte) (*T, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	for _, key := range singleKeys {
		if inner, ok := obj[key]; ok && isObject(inner) {
			raw = inner
			break
		}
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return &out, nil
}

func isArray(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '['
}

func isObject(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}
