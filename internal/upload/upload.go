// Package upload validates uploaded files, stores them through a
// storage.Provider together with a thumbnail, and records their metadata.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"studiosite/internal/apperr"
	"studiosite/internal/imaging"
	"studiosite/internal/metrics"
	"studiosite/internal/models"
	"studiosite/internal/storage"
)

const (
	// DefaultMaxSize is the per-file size limit when none is configured (10 MB).
	DefaultMaxSize = 10 << 20
	// DefaultMaxFiles bounds the files accepted by one multi-file upload.
	DefaultMaxFiles = 10
	// DefaultCategory is used when an upload names no category.
	DefaultCategory = "general"
)

// ErrTooLarge is returned for files above the size limit.
var ErrTooLarge = errors.New("file too large")

// allowedTypes defines MIME types accepted for upload.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
}

// MediaRepository records upload metadata. store.MediaStore implements it.
type MediaRepository interface {
	Create(ctx context.Context, m *models.Media) (*models.Media, error)
	List(ctx context.Context, category string, limit, offset int) ([]models.Media, error)
	Count(ctx context.Context, category string) (int, error)
	DeleteByPath(ctx context.Context, path string) (*models.Media, error)
}

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	MaxSize    int64
	MaxFiles   int
	ThumbWidth int
}

// Service handles uploads for the API and the content write endpoints.
type Service struct {
	files storage.Provider
	media MediaRepository
	opts  Options
	now   func() time.Time
}

// New creates a Service.
func New(files storage.Provider, media MediaRepository, opts Options) *Service {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = DefaultMaxFiles
	}
	if opts.ThumbWidth <= 0 {
		opts.ThumbWidth = imaging.ThumbWidth
	}
	return &Service{files: files, media: media, opts: opts, now: time.Now}
}

// MaxSize returns the per-file size limit in bytes.
func (s *Service) MaxSize() int64 { return s.opts.MaxSize }

// MaxFiles returns the number of files one request may carry.
func (s *Service) MaxFiles() int { return s.opts.MaxFiles }

// Category validates an upload category; empty selects DefaultCategory.
func Category(c string) (string, error) {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return DefaultCategory, nil
	}
	if !slices.Contains(models.UploadCategories, c) {
		return "", apperr.Invalidf("unknown upload category %q", c)
	}
	return c, nil
}

// DetectType sniffs the MIME type of data. SVGs sniff as XML or text and
// are recognised by their file extension.
func DetectType(filename string, data []byte) string {
	contentType := http.DetectContentType(data)
	if strings.HasSuffix(strings.ToLower(filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		return "image/svg+xml"
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return contentType
}

// Save validates and stores one file. Invalid input is rejected before
// anything is written.
func (s *Service) Save(ctx context.Context, category, filename string, data []byte) (*models.Media, error) {
	category, err := Category(category)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apperr.Invalidf("file %q is empty", filename)
	}
	if int64(len(data)) > s.opts.MaxSize {
		return nil, fmt.Errorf("%w: %q exceeds %d MB", ErrTooLarge, filename, s.opts.MaxSize>>20)
	}
	contentType := DetectType(filename, data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, apperr.Invalidf("file type %q is not allowed", contentType)
	}

	now := s.now()
	id := uuid.NewString()
	dir := fmt.Sprintf("%s/%d/%02d", category, now.Year(), now.Month())
	key := dir + "/" + id + ext

	if err := s.files.Put(ctx, key, contentType, data); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	m := &models.Media{
		Category:  category,
		Path:      key,
		URL:       s.files.URL(key),
		Filename:  filepath.Base(filename),
		MimeType:  contentType,
		SizeBytes: int64(len(data)),
	}

	if imaging.Thumbnailable(contentType) {
		s.thumbnail(ctx, m, dir+"/"+id+"_thumb.jpg", data)
	}

	created, err := s.media.Create(ctx, m)
	if err != nil {
		s.removeObjects(ctx, m)
		return nil, fmt.Errorf("record upload: %w", err)
	}
	metrics.Upload(category)
	slog.Info("file uploaded", "path", key, "type", contentType, "size", len(data))
	return created, nil
}

// thumbnail stores a scaled copy of data. Failures are logged and leave
// the media without a thumbnail.
func (s *Service) thumbnail(ctx context.Context, m *models.Media, key string, data []byte) {
	thumb, err := imaging.Thumbnail(data, s.opts.ThumbWidth)
	if err != nil {
		slog.Warn("thumbnail generation failed", "path", m.Path, "error", err)
		return
	}
	if thumb == nil {
		return
	}
	if err := s.files.Put(ctx, key, "image/jpeg", thumb); err != nil {
		slog.Warn("thumbnail upload failed", "path", key, "error", err)
		return
	}
	m.ThumbPath = key
	m.ThumbURL = s.files.URL(key)
}

// SaveFile reads a multipart file and stores it with Save.
func (s *Service) SaveFile(ctx context.Context, category string, fh *multipart.FileHeader) (*models.Media, error) {
	if fh.Size > s.opts.MaxSize {
		return nil, fmt.Errorf("%w: %q exceeds %d MB", ErrTooLarge, fh.Filename, s.opts.MaxSize>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.opts.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return s.Save(ctx, category, fh.Filename, data)
}

// SaveFiles stores every file or none: a rejected file rolls back the
// ones already stored.
func (s *Service) SaveFiles(ctx context.Context, category string, files []*multipart.FileHeader) ([]models.Media, error) {
	if len(files) == 0 {
		return nil, apperr.Invalidf("no files provided")
	}
	if len(files) > s.opts.MaxFiles {
		return nil, apperr.Invalidf("too many files: at most %d per request", s.opts.MaxFiles)
	}

	out := make([]models.Media, 0, len(files))
	for _, fh := range files {
		m, err := s.SaveFile(ctx, category, fh)
		if err != nil {
			for _, done := range out {
				if _, derr := s.Delete(ctx, done.Path); derr != nil {
					slog.Warn("upload rollback failed", "path", done.Path, "error", derr)
				}
			}
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

// Delete removes an upload by storage path or by its public URL.
func (s *Service) Delete(ctx context.Context, ref string) (*models.Media, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperr.Invalidf("path is required")
	}
	key := ref
	if k, ok := s.files.KeyFromURL(ref); ok {
		key = k
	}

	m, err := s.media.DeleteByPath(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("delete upload: %w", err)
	}
	if m == nil {
		return nil, apperr.NotFound("file")
	}
	s.removeObjects(ctx, m)
	return m, nil
}

// removeObjects deletes the stored file and its thumbnail, best-effort.
func (s *Service) removeObjects(ctx context.Context, m *models.Media) {
	if err := s.files.Delete(ctx, m.Path); err != nil {
		slog.Warn("stored file delete failed", "path", m.Path, "error", err)
	}
	if m.ThumbPath != "" {
		if err := s.files.Delete(ctx, m.ThumbPath); err != nil {
			slog.Warn("thumbnail delete failed", "path", m.ThumbPath, "error", err)
		}
	}
}

// List returns one page of uploads in category (every category when empty).
func (s *Service) List(ctx context.Context, category string, page, limit int) ([]models.Media, models.Pagination, error) {
	if category != "" {
		var err error
		if category, err = Category(category); err != nil {
			return nil, models.Pagination{}, err
		}
	}
	q := models.ListQuery{Page: page, Limit: limit}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 50
	}
	q = q.ClampPage()

	count, err := s.media.Count(ctx, category)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	items, err := s.media.List(ctx, category, q.Limit, q.Offset())
	if err != nil {
		return nil, models.Pagination{}, err
	}
	if items == nil {
		items = []models.Media{}
	}
	return items, models.NewPagination(q, count, len(items)), nil
}
