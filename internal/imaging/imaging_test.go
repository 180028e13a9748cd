package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{20, 20, 20, 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(w, h), nil); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(w, h)); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	p, err := Normalize(bytes.NewReader(encodeJPEG(t, 320, 200)), Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if p.MIME != OutputMIME {
		t.Errorf("MIME = %q", p.MIME)
	}
	if p.Width != 320 || p.Height != 200 {
		t.Errorf("size = %dx%d, want 320x200", p.Width, p.Height)
	}
}

func TestNormalizeConvertsPNG(t *testing.T) {
	p, err := Normalize(bytes.NewReader(encodePNG(t, 64, 64)), Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(p.Data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	if cfg.Width != 64 || cfg.Height != 64 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestNormalizeDownscalesLongSide(t *testing.T) {
	p, err := Normalize(bytes.NewReader(encodeJPEG(t, 2000, 500)), Options{MaxDimension: 400})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if p.Width != 400 || p.Height != 100 {
		t.Errorf("size = %dx%d, want 400x100", p.Width, p.Height)
	}
}

func TestNormalizeRejects(t *testing.T) {
	if _, err := Normalize(strings.NewReader("GIF89a not really"), Options{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("text upload: got %v, want ErrUnsupported", err)
	}
	if _, err := Normalize(bytes.NewReader(encodeJPEG(t, 100, 100)), Options{MaxBytes: 16}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized upload: got %v, want ErrTooLarge", err)
	}
	if _, err := Normalize(bytes.NewReader([]byte("\xff\xd8\xff\xe0garbage")), Options{}); err == nil {
		t.Error("expected decode error for truncated jpeg")
	}
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{100, 100, 1024, 100, 100},
		{2048, 1024, 1024, 1024, 512},
		{1024, 4096, 1024, 256, 1024},
		{5000, 1, 1024, 1024, 1},
		{3000, 3000, 1024, 1024, 1024},
	}
	for _, tt := range tests {
		w, h := Dimensions(tt.w, tt.h, tt.limit)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("Dimensions(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
		}
	}
}
