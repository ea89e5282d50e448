// Package geometry converts selection rectangles between the rendered page
// raster and the document's native coordinate space.
//
// Rendered coordinates are pixels of the page as it was rasterized for
// display, origin at the top-left. Native coordinates are the document's own
// units (PDF points, 72 per inch) with the same orientation. The two spaces
// are related by independent horizontal and vertical linear scales.
package geometry

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrDegenerateRegion is returned when a rectangle has no usable area after
// mapping, or lies entirely outside the page.
var ErrDegenerateRegion = errors.New("degenerate region")

// Point is a position on a rendered page.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is a width/height pair in either coordinate space.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Rect is an axis-aligned rectangle given by its four edges.
type Rect struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// RectFromPoints returns the normalized rectangle spanned by two corners.
func RectFromPoints(a, b Point) Rect {
	return Rect{Left: a.X, Top: a.Y, Right: b.X, Bottom: b.Y}.Normalize()
}

// Normalize swaps edges as needed so that Left <= Right and Top <= Bottom.
func (r Rect) Normalize() Rect {
	if r.Left > r.Right {
		r.Left, r.Right = r.Right, r.Left
	}
	if r.Top > r.Bottom {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
	return r
}

// Width of the rectangle. Negative for an unnormalized rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height of the rectangle. Negative for an unnormalized rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no positive area.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Bounds returns the edges as [left, top, right, bottom].
func (r Rect) Bounds() [4]float64 {
	return [4]float64{r.Left, r.Top, r.Right, r.Bottom}
}

// Intersect returns the overlap of r and o. The result is Empty when the two
// do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		Left:   math.Max(r.Left, o.Left),
		Top:    math.Max(r.Top, o.Top),
		Right:  math.Min(r.Right, o.Right),
		Bottom: math.Min(r.Bottom, o.Bottom),
	}
}

// Pixels rounds the rectangle outward to whole pixels.
func (r Rect) Pixels() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.Left)),
		int(math.Floor(r.Top)),
		int(math.Ceil(r.Right)),
		int(math.Ceil(r.Bottom)),
	)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g)-(%g,%g)", r.Left, r.Top, r.Right, r.Bottom)
}
