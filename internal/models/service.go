package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Service is an offering listed on the services page.
type Service struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Description      string     `json:"description"`
	ShortDescription string     `json:"short_description,omitempty"`
	Category         string     `json:"category"`
	Price            float64    `json:"price"`
	PriceUnit        string     `json:"price_unit,omitempty"`
	Duration         string     `json:"duration,omitempty"`
	Features         StringList `json:"features"`
	Image            string     `json:"image,omitempty"`
	Images           StringList `json:"images"`
	Icon             string     `json:"icon,omitempty"`
	Popular          bool       `json:"popular"`
	Views            int        `json:"views"`
	Likes            int        `json:"likes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (s *Service) GetID() uuid.UUID         { return s.ID }
func (s *Service) GetCategory() string      { return s.Category }
func (s *Service) Visible() bool            { return true }
func (s *Service) SlugSource() string       { return s.Title }
func (s *Service) GetSlug() string          { return s.Slug }
func (s *Service) SetSlug(v string)         { s.Slug = v }
func (s *Service) SetViews(n int)           { s.Views = n }
func (s *Service) SetImage(url string)      { s.Image = url }
func (s *Service) AddImages(urls ...string) { s.Images = append(s.Images, urls...) }

func (s *Service) Prepare(time.Time) {
	s.Title = strings.TrimSpace(s.Title)
	s.Category = strings.TrimSpace(s.Category)
}

func (s *Service) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&s.Description, validation.Required, validation.Length(1, 5000)),
		validation.Field(&s.ShortDescription, validation.Length(0, 300)),
		validation.Field(&s.Category, validation.Required, validation.Length(1, 100)),
		validation.Field(&s.Price, validation.Min(0.0)),
	)
}
