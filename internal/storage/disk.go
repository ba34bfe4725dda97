package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Disk implements Provider on the local file system.
type Disk struct {
	root    string // absolute upload directory
	baseURL string // URL prefix the directory is served under
}

// NewDisk creates a Disk provider rooted at dir, creating it if needed.
// Files are addressed as baseURL + "/" + key.
func NewDisk(dir, baseURL string) (*Disk, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &Disk{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// safePath resolves key against the root and rejects any result that
// escapes it.
func (d *Disk) safePath(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: absolute path %q", ErrInvalidKey, key)
	}
	abs := filepath.Join(d.root, cleaned)
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q escapes upload root", ErrInvalidKey, key)
	}
	return abs, nil
}

// Put atomically writes data: temp file, fsync, rename.
func (d *Disk) Put(_ context.Context, key, _ string, data []byte) error {
	abs, err := d.safePath(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a file. A missing file is not an error.
func (d *Disk) Delete(_ context.Context, key string) error {
	abs, err := d.safePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// URL returns the public URL of key.
func (d *Disk) URL(key string) string {
	return d.baseURL + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL extracts the key from a URL returned by URL.
func (d *Disk) KeyFromURL(rawURL string) (string, bool) {
	return strings.CutPrefix(rawURL, d.baseURL+"/")
}

// Handler serves the stored files. Directory listings are disabled.
func (d *Disk) Handler() http.Handler {
	fsrv := http.FileServer(http.Dir(d.root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fsrv.ServeHTTP(w, r)
	})
}
