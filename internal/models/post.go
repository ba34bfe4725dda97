package models

import (
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	wordsPerMinute = 200
	excerptLength  = 200
	defaultAuthor  = "Admin"
)

// Post is a blog article. Content is Markdown; ContentHTML is rendered on
// single-item reads and never stored.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content,omitempty"`
	ContentHTML string     `json:"content_html,omitempty"`
	Category    string     `json:"category"`
	Tags        StringList `json:"tags"`
	Image       string     `json:"image,omitempty"`
	Images      StringList `json:"images"`
	Author      string     `json:"author"`
	Published   bool       `json:"published"`
	Featured    bool       `json:"featured"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ReadTime    int        `json:"read_time"`
	Views       int        `json:"views"`
	Likes       int        `json:"likes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *Post) GetID() uuid.UUID         { return p.ID }
func (p *Post) GetCategory() string      { return p.Category }
func (p *Post) Visible() bool            { return p.Published }
func (p *Post) SlugSource() string       { return p.Title }
func (p *Post) GetSlug() string          { return p.Slug }
func (p *Post) SetSlug(s string)         { p.Slug = s }
func (p *Post) SetViews(n int)           { p.Views = n }
func (p *Post) SetImage(url string)      { p.Image = url }
func (p *Post) AddImages(urls ...string) { p.Images = append(p.Images, urls...) }

// Prepare derives the read time and excerpt, defaults the author, and stamps
// PublishedAt the first time the post is published.
func (p *Post) Prepare(now time.Time) {
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	if strings.TrimSpace(p.Author) == "" {
		p.Author = defaultAuthor
	}
	p.ReadTime = ReadTime(p.Content)
	if strings.TrimSpace(p.Excerpt) == "" {
		p.Excerpt = excerpt(p.Content)
	}
	if p.Published && p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
}

func (p *Post) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Content, validation.Required),
		validation.Field(&p.Excerpt, validation.Length(0, 500)),
		validation.Field(&p.Category, validation.Required, validation.Length(1, 100)),
	)
}

// ReadTime estimates reading minutes at 200 words per minute, minimum 1.
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// excerpt takes the first excerptLength runes of the body on a word boundary.
func excerpt(content string) string {
	text := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	cut := string([]rune(text)[:excerptLength])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
