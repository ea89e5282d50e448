package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := Crop(img, image.Rect(0, 0, 50, 50), 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	if result.Bounds().Dx() != 50 || result.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Bounds().Dx(), result.Bounds().Dy())
	}
}

func TestCrop_WithScale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	// Scale up 2x
	result, err := Crop(img, image.Rect(0, 0, 50, 50), 2.0)
	if err != nil {
		t.Fatalf("Crop with scale failed: %v", err)
	}

	if result.Bounds().Dx() != 100 || result.Bounds().Dy() != 100 {
		t.Errorf("scaled dimensions: got %dx%d, want 100x100", result.Bounds().Dx(), result.Bounds().Dy())
	}
}

func TestCrop_ScaleDown(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	// Scale down 0.5x
	result, err := Crop(img, image.Rect(0, 0, 100, 100), 0.5)
	if err != nil {
		t.Fatalf("Crop with scale down failed: %v", err)
	}

	if result.Bounds().Dx() != 50 || result.Bounds().Dy() != 50 {
		t.Errorf("scaled dimensions: got %dx%d, want 50x50", result.Bounds().Dx(), result.Bounds().Dy())
	}
}

func TestCrop_ClipsToBounds(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name   string
		region image.Rectangle
		w, h   int
	}{
		{"x1 negative", image.Rect(-10, 0, 50, 50), 50, 50},
		{"x2 too large", image.Rect(0, 0, 150, 50), 100, 50},
		{"all out of bounds", image.Rect(-1, -1, 200, 200), 100, 100},
		{"reversed corners", image.Rect(50, 50, 0, 0), 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Crop(img, tt.region, 1.0)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			if result.Bounds().Dx() != tt.w || result.Bounds().Dy() != tt.h {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Bounds().Dx(), result.Bounds().Dy(), tt.w, tt.h)
			}
		})
	}
}

func TestCrop_NoOverlap(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name   string
		region image.Rectangle
	}{
		{"right of image", image.Rect(100, 0, 150, 50)},
		{"above image", image.Rect(0, -50, 50, 0)},
		{"zero area", image.Rect(50, 50, 50, 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.region, 1.0); err == nil {
				t.Error("Crop should fail for a region outside the image")
			}
		})
	}
}

func TestCrop_NonZeroOrigin(t *testing.T) {
	base := createPatternImage(100, 100)
	sub := base.SubImage(image.Rect(50, 0, 100, 50))

	result, err := Crop(sub, image.Rect(60, 10, 70, 20), 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	r, g, b := rgb8(result.At(5, 5))
	if r != 0 || g != 255 || b != 0 {
		t.Errorf("cropped color: got (%d,%d,%d), want (0,255,0)", r, g, b)
	}
}

func TestCrop_VerifyContent(t *testing.T) {
	img := createPatternImage(100, 100)

	// Crop bottom-left quadrant (should be blue)
	result, err := Crop(img, image.Rect(0, 50, 50, 100), 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	r, g, b := rgb8(result.At(25, 25))
	if r != 0 || g != 0 || b != 255 {
		t.Errorf("cropped image color: got (%d,%d,%d), want (0,0,255)", r, g, b)
	}
}

func TestGrayscale(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{255, 0, 0, 255})

	gray := Grayscale(img)
	r, g, b := rgb8(gray.At(5, 5))
	if r != g || g != b {
		t.Errorf("grayscale pixel not gray: (%d,%d,%d)", r, g, b)
	}
	if gray.Bounds() != img.Bounds() {
		t.Errorf("bounds changed: %v != %v", gray.Bounds(), img.Bounds())
	}
}

func TestSavePNG(t *testing.T) {
	img := createPatternImage(40, 20)
	path := filepath.Join(t.TempDir(), "figure_1.png")

	if err := SavePNG(img, path); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 40 || decoded.Bounds().Dy() != 20 {
		t.Errorf("dimensions: got %v", decoded.Bounds())
	}
}

func TestSavePNG_BadPath(t *testing.T) {
	img := createPatternImage(4, 4)
	if err := SavePNG(img, filepath.Join(t.TempDir(), "missing", "x.png")); err == nil {
		t.Error("SavePNG should fail when the directory does not exist")
	}
}

func TestEncode(t *testing.T) {
	img := createPatternImage(30, 20)

	result, err := Encode(img)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if result.Width != 30 || result.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	if _, err := png.Decode(strings.NewReader(string(decoded))); err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	img := createInMemoryImage(200, 100, color.White)

	thumb := Thumbnail(img, 50)
	if thumb.Bounds().Dx() != 50 || thumb.Bounds().Dy() != 25 {
		t.Errorf("thumbnail: got %v, want 50x25", thumb.Bounds())
	}

	if same := Thumbnail(img, 400); same != img {
		t.Error("narrow image should be returned unchanged")
	}
}
