package geometry

import "fmt"

// ToNative maps a rectangle drawn on a raster of size rendered to the native
// coordinate space of a page of size native.
//
// The rectangle is normalized first. Each edge is scaled as
// v * native / rendered; multiplying before dividing keeps results exact
// whenever the exact value is representable, so (100, 100)-(400, 400) on a
// 1275x1650 raster of a 612x792 page maps to exactly (48, 48)-(192, 192).
//
// ErrDegenerateRegion is returned when either size is not positive, the
// mapped rectangle has zero width or height, or it does not overlap the page.
func ToNative(r Rect, rendered, native Size) (Rect, error) {
	if !rendered.Valid() || !native.Valid() {
		return Rect{}, fmt.Errorf("%w: invalid page sizes rendered=%gx%g native=%gx%g",
			ErrDegenerateRegion, rendered.Width, rendered.Height, native.Width, native.Height)
	}

	r = r.Normalize()
	out := Rect{
		Left:   r.Left * native.Width / rendered.Width,
		Top:    r.Top * native.Height / rendered.Height,
		Right:  r.Right * native.Width / rendered.Width,
		Bottom: r.Bottom * native.Height / rendered.Height,
	}

	if out.Empty() {
		return Rect{}, fmt.Errorf("%w: %s has no area", ErrDegenerateRegion, out)
	}
	page := Rect{Right: native.Width, Bottom: native.Height}
	if out.Intersect(page).Empty() {
		return Rect{}, fmt.Errorf("%w: %s lies outside page %gx%g",
			ErrDegenerateRegion, out, native.Width, native.Height)
	}
	return out, nil
}

// ToRendered is the inverse of ToNative: it maps a native rectangle onto a
// raster of size rendered. No validation is performed; sizes must be valid.
func ToRendered(r Rect, rendered, native Size) Rect {
	r = r.Normalize()
	return Rect{
		Left:   r.Left * rendered.Width / native.Width,
		Top:    r.Top * rendered.Height / native.Height,
		Right:  r.Right * rendered.Width / native.Width,
		Bottom: r.Bottom * rendered.Height / native.Height,
	}
}

// Scale returns the native-per-rendered ratios for each axis.
func Scale(rendered, native Size) (x, y float64) {
	return native.Width / rendered.Width, native.Height / rendered.Height
}
