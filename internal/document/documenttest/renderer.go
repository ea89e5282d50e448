// Package documenttest provides an in-memory document.Renderer for tests.
package documenttest

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/ironsheep/figure-extractor/internal/document"
	"github.com/ironsheep/figure-extractor/internal/geometry"
)

// Block is a filled rectangle in native page coordinates.
type Block struct {
	Rect  geometry.Rect
	Color color.Color
}

// PageSpec describes one synthetic page.
type PageSpec struct {
	Native geometry.Size
	Blocks []Block
}

// Renderer renders synthetic white pages with optional colored blocks.
// Raster size is native * dpi / 72, rounded, like MuPDF.
type Renderer struct {
	Pages []PageSpec

	mu    sync.Mutex
	calls int
	fail  map[int]error
}

// Letter returns a renderer with n blank US letter pages (612x792 points).
func Letter(n int) *Renderer {
	pages := make([]PageSpec, n)
	for i := range pages {
		pages[i] = PageSpec{Native: geometry.Size{Width: 612, Height: 792}}
	}
	return &Renderer{Pages: pages}
}

// FailPage makes RenderPage return err for the page.
func (r *Renderer) FailPage(index int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail == nil {
		r.fail = make(map[int]error)
	}
	r.fail[index] = err
}

// Calls returns how many renders were performed.
func (r *Renderer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// PageCount implements document.Renderer.
func (r *Renderer) PageCount() int {
	return len(r.Pages)
}

// RenderPage implements document.Renderer.
func (r *Renderer) RenderPage(index int, dpi float64) (*document.Page, error) {
	if err := document.CheckIndex(index, len(r.Pages)); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.calls++
	err := r.fail[index]
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	spec := r.Pages[index]
	scale := dpi / document.PointsPerInch
	w := int(math.Round(spec.Native.Width * scale))
	h := int(math.Round(spec.Native.Height * scale))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for _, b := range spec.Blocks {
		px := geometry.Rect{
			Left:   b.Rect.Left * scale,
			Top:    b.Rect.Top * scale,
			Right:  b.Rect.Right * scale,
			Bottom: b.Rect.Bottom * scale,
		}.Pixels()
		draw.Draw(img, px, image.NewUniform(b.Color), image.Point{}, draw.Src)
	}

	return &document.Page{
		Index:        index,
		DPI:          dpi,
		Image:        img,
		NativeWidth:  spec.Native.Width,
		NativeHeight: spec.Native.Height,
	}, nil
}
