package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		maxWidth int
		wantNil  bool
		wantW    int
		wantH    int
	}{
		{"scaled down", 800, 600, 400, false, 400, 300},
		{"already small", 300, 200, 400, true, 0, 0},
		{"default width", 1000, 100, 0, false, ThumbWidth, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Thumbnail(encodePNG(t, tt.w, tt.h), tt.maxWidth)
			if err != nil {
				t.Fatalf("Thumbnail: %v", err)
			}
			if tt.wantNil {
				if out != nil {
					t.Errorf("expected nil thumbnail, got %d bytes", len(out))
				}
				return
			}
			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("decode thumbnail: %v", err)
			}
			if format != "jpeg" || cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("got %s %dx%d, want jpeg %dx%d", format, cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	if _, err := Thumbnail([]byte("not an image"), 100); err == nil {
		t.Error("expected decode error")
	}
}

func TestThumbnailable(t *testing.T) {
	for ct, want := range map[string]bool{
		"image/jpeg":      true,
		"image/png":       true,
		"image/webp":      true,
		"image/gif":       false,
		"image/svg+xml":   false,
		"application/pdf": false,
	} {
		if got := Thumbnailable(ct); got != want {
			t.Errorf("Thumbnailable(%q) = %v, want %v", ct, got, want)
		}
	}
}
