package document

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/figure-extractor/internal/geometry"
)

var (
	// ErrPageIndexOutOfRange is returned for page indexes outside [0, PageCount).
	ErrPageIndexOutOfRange = errors.New("page index out of range")

	// ErrInvalidDocument is returned when a source file cannot be used.
	ErrInvalidDocument = errors.New("invalid document")
)

// PointsPerInch is the native resolution of PDF user space.
const PointsPerInch = 72.0

// Renderer produces rasters of individual pages.
type Renderer interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// RenderPage rasterizes the zero-based page at the given resolution.
	// The result must be identical for identical arguments.
	RenderPage(index int, dpi float64) (*Page, error)
}

// Page is a rendered page. Callers own the image.
type Page struct {
	Index int
	DPI   float64
	Image image.Image

	// NativeWidth and NativeHeight are the page dimensions in points.
	NativeWidth  float64
	NativeHeight float64
}

// Size returns the raster dimensions in pixels.
func (p *Page) Size() geometry.Size {
	b := p.Image.Bounds()
	return geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// NativeSize returns the page dimensions in points.
func (p *Page) NativeSize() geometry.Size {
	return geometry.Size{Width: p.NativeWidth, Height: p.NativeHeight}
}

// CheckIndex returns ErrPageIndexOutOfRange unless 0 <= index < count.
func CheckIndex(index, count int) error {
	if index < 0 || index >= count {
		return fmt.Errorf("%w: page %d of %d", ErrPageIndexOutOfRange, index, count)
	}
	return nil
}

// ClampPage clamps a navigation target into [0, count). Documents without
// pages clamp to 0.
func ClampPage(index, count int) int {
	if index >= count {
		index = count - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}
