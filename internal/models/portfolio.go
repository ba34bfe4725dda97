// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// PortfolioStatus is the publishing state of a portfolio item.
type PortfolioStatus string

const (
	PortfolioDraft     PortfolioStatus = "draft"
	PortfolioPublished PortfolioStatus = "published"
	PortfolioArchived  PortfolioStatus = "archived"
)

// PortfolioCategories is the closed set of portfolio categories.
var PortfolioCategories = []string{
	"Logo Design",
	"Branding",
	"Web Design",
	"Print Design",
	"Packaging",
	"Illustration",
	"Social Media",
	"UI/UX Design",
}

// Portfolio is a showcased project.
type Portfolio struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Image        string          `json:"image"`
	Images       StringList      `json:"images"`
	Tags         StringList      `json:"tags"`
	Technologies StringList      `json:"technologies"`
	Client       string          `json:"client,omitempty"`
	ProjectURL   string          `json:"project_url,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	Featured     bool            `json:"featured"`
	Status       PortfolioStatus `json:"status"`
	Priority     int             `json:"priority"`
	Views        int             `json:"views"`
	Likes        int             `json:"likes"`
	Shares       int             `json:"shares"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// EngagementScore weights interactions: views x1, likes x5, shares x10.
func (p *Portfolio) EngagementScore() int {
	return p.Views + 5*p.Likes + 10*p.Shares
}

// MarshalJSON adds the derived engagement_score field.
func (p Portfolio) MarshalJSON() ([]byte, error) {
	type plain Portfolio
	return json.Marshal(struct {
		plain
		EngagementScore int `json:"engagement_score"`
	}{plain(p), p.EngagementScore()})
}

func (p *Portfolio) GetID() uuid.UUID         { return p.ID }
func (p *Portfolio) GetCategory() string      { return p.Category }
func (p *Portfolio) Visible() bool            { return p.Status == PortfolioPublished }
func (p *Portfolio) SlugSource() string       { return p.Title }
func (p *Portfolio) GetSlug() string          { return p.Slug }
func (p *Portfolio) SetSlug(s string)         { p.Slug = s }
func (p *Portfolio) SetViews(n int)           { p.Views = n }
func (p *Portfolio) SetImage(url string)      { p.Image = url }
func (p *Portfolio) AddImages(urls ...string) { p.Images = append(p.Images, urls...) }

// Prepare trims text fields and defaults the status to published.
func (p *Portfolio) Prepare(time.Time) {
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	if p.Status == "" {
		p.Status = PortfolioPublished
	}
}

func (p *Portfolio) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Description, validation.Required, validation.Length(1, 5000)),
		validation.Field(&p.Category, validation.Required, validation.In(anySlice(PortfolioCategories)...)),
		validation.Field(&p.Image, validation.Required),
		validation.Field(&p.ProjectURL, is.URL),
		validation.Field(&p.Status, validation.In(PortfolioDraft, PortfolioPublished, PortfolioArchived)),
		validation.Field(&p.Priority, validation.Min(0), validation.Max(100)),
	)
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
