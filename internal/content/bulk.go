package content

import (
	"context"

	"github.com/google/uuid"

	"studiosite/internal/apperr"
	"studiosite/internal/models"
)

// BulkAction names an admin bulk operation.
type BulkAction string

const (
	BulkDelete        BulkAction = "delete"
	BulkUpdate        BulkAction = "update"
	BulkFeature       BulkAction = "feature"
	BulkUnfeature     BulkAction = "unfeature"
	BulkToggleFeature BulkAction = "toggle-feature"
)

// BulkTarget is the minimum a collection must support for bulk actions.
// Messages only implement this; content collections add highlighting.
type BulkTarget interface {
	BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error)
	BulkUpdate(ctx context.Context, ids []uuid.UUID, patch models.BulkPatch) (int64, error)
}

type highlighter interface {
	SetHighlighted(ctx context.Context, ids []uuid.UUID, on bool) (int64, error)
	ToggleHighlighted(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// ApplyBulk runs action against the documents of collection c held by t and
// returns the number of affected documents. Update patches are checked
// against c's field rules first.
func ApplyBulk(ctx context.Context, t BulkTarget, c models.Collection, action BulkAction, ids []uuid.UUID, patch models.BulkPatch) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.Invalidf("ids must not be empty")
	}

	switch action {
	case BulkDelete:
		return t.BulkDelete(ctx, ids)
	case BulkUpdate:
		if err := patch.Validate(c); err != nil {
			return 0, apperr.Invalid(err)
		}
		return t.BulkUpdate(ctx, ids, patch)
	case BulkFeature, BulkUnfeature, BulkToggleFeature:
		h, ok := t.(highlighter)
		if !ok {
			return 0, apperr.Invalidf("action %q is not supported here", action)
		}
		if action == BulkToggleFeature {
			return h.ToggleHighlighted(ctx, ids)
		}
		return h.SetHighlighted(ctx, ids, action == BulkFeature)
	default:
		return 0, apperr.Invalidf("unknown bulk action %q", action)
	}
}
