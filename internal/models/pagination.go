package models

import (
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxOffset is the deepest row a list query may skip to.
const MaxOffset = math.MaxInt32

// ListQuery carries the filters accepted by collection list endpoints.
type ListQuery struct {
	Category string
	// Highlighted filters on featured (or popular, for services) when set.
	Highlighted *bool
	Search      string
	Status      string
	// IncludeHidden lists drafts and unpublished documents (admin only).
	IncludeHidden bool
	Page          int
	Limit         int
}

// Offset returns the number of rows to skip for the query's page. Pages past
// MaxPage skip MaxPage's rows.
func (q ListQuery) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	return (min(q.Page, MaxPage(q.Limit)) - 1) * q.Limit
}

// MaxPage is the last page whose offset stays within MaxOffset.
func MaxPage(limit int) int {
	if limit < 1 {
		return 1
	}
	return MaxOffset/limit + 1
}

// ClampPage bounds Page to 1..MaxPage(Limit).
func (q ListQuery) ClampPage() ListQuery {
	q.Page = max(1, min(q.Page, MaxPage(q.Limit)))
	return q
}

// Pagination describes where a list response sits in the full result set.
type Pagination struct {
	Current int  `json:"current"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	Count   int  `json:"count"`
	Limit   int  `json:"limit"`
}

// NewPagination computes paging metadata for a page of returned documents
// out of count matches.
func NewPagination(q ListQuery, count, returned int) Pagination {
	p := Pagination{Current: q.Page, Count: count, Limit: q.Limit}
	if q.Limit > 0 {
		p.Total = (count + q.Limit - 1) / q.Limit
	}
	p.HasNext = q.Offset()+returned < count
	return p
}

// BulkPatch lists the fields an admin bulk "update" may set. Fields that do
// not exist on the target collection are ignored.
type BulkPatch struct {
	Category  *string `json:"category,omitempty"`
	Status    *string `json:"status,omitempty"`
	Featured  *bool   `json:"featured,omitempty"`
	Popular   *bool   `json:"popular,omitempty"`
	Published *bool   `json:"published,omitempty"`
	Priority  *int    `json:"priority,omitempty"`
}

// Validate applies the field rules of collection c to the fields the patch
// sets. Fields the collection does not have are left to the store to ignore.
func (p BulkPatch) Validate(c Collection) error {
	switch c {
	case CollectionPortfolio:
		return validation.ValidateStruct(&p,
			validation.Field(&p.Category, validation.NilOrNotEmpty, validation.In(anySlice(PortfolioCategories)...)),
			validation.Field(&p.Status, validation.NilOrNotEmpty,
				validation.In(string(PortfolioDraft), string(PortfolioPublished), string(PortfolioArchived))),
			validation.Field(&p.Priority, validation.Min(0), validation.Max(100)),
		)
	case CollectionServices, CollectionBlog:
		return validation.ValidateStruct(&p,
			validation.Field(&p.Category, validation.NilOrNotEmpty, validation.Length(1, 100)),
		)
	case CollectionMessages:
		return validation.ValidateStruct(&p,
			validation.Field(&p.Status, validation.NilOrNotEmpty,
				validation.In(string(MessageNew), string(MessageRead), string(MessageReplied))),
		)
	}
	return nil
}
