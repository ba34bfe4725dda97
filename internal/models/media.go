// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Media is the metadata of an uploaded file. The bytes live in the storage
// backend (disk or S3) under Path.
type Media struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"category"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	ThumbPath string    `json:"thumb_path,omitempty"`
	ThumbURL  string    `json:"thumb_url,omitempty"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mimetype"`
	SizeBytes int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadCategories are the folders uploads may be filed under.
var UploadCategories = []string{"portfolio", "services", "blog", "testimonials", "general"}

// ValidUploadCategory reports whether c is a known upload folder.
func ValidUploadCategory(c string) bool {
	for _, v := range UploadCategories {
		if v == c {
			return true
		}
	}
	return false
}
