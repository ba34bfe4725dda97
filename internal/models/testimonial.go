package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Testimonial is a client quote. Testimonials have no slug and resolve by ID only.
type Testimonial struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Role      string     `json:"role,omitempty"`
	Company   string     `json:"company,omitempty"`
	Content   string     `json:"content"`
	Rating    int        `json:"rating"`
	Avatar    string     `json:"avatar,omitempty"`
	Images    StringList `json:"images"`
	Featured  bool       `json:"featured"`
	Views     int        `json:"views"`
	Likes     int        `json:"likes"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (t *Testimonial) GetID() uuid.UUID         { return t.ID }
func (t *Testimonial) GetCategory() string      { return "" }
func (t *Testimonial) Visible() bool            { return true }
func (t *Testimonial) SetViews(n int)           { t.Views = n }
func (t *Testimonial) SetImage(url string)      { t.Avatar = url }
func (t *Testimonial) AddImages(urls ...string) { t.Images = append(t.Images, urls...) }

func (t *Testimonial) Prepare(time.Time) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Rating == 0 {
		t.Rating = 5
	}
}

func (t *Testimonial) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&t.Content, validation.Required, validation.Length(1, 2000)),
		validation.Field(&t.Rating, validation.Min(1), validation.Max(5)),
	)
}
