package server

import (
	"fmt"
	"image"

	"github.com/ironsheep/figure-extractor/internal/document"
	"github.com/ironsheep/figure-extractor/internal/geometry"
	"github.com/ironsheep/figure-extractor/internal/imaging"
	"github.com/ironsheep/figure-extractor/internal/session"
)

// PreviewBoxes returns the overlay boxes for page: every committed region on
// it plus the pending selection when st is showing that page.
//
// Region rectangles are re-mapped through native space, so regions drawn at
// a different display resolution still land on the right pixels.
func PreviewBoxes(page *document.Page, st session.State) []imaging.Box {
	var boxes []imaging.Box

	for _, r := range st.Regions {
		if r.Page != page.Index {
			continue
		}
		native, err := geometry.ToNative(r.Rect, r.Surface, page.NativeSize())
		if err != nil {
			continue
		}
		box := imaging.Box{
			Rect:   geometry.ToRendered(native, page.Size(), page.NativeSize()).Pixels(),
			Figure: r.FigureNumber,
			Label:  fmt.Sprint(r.FigureNumber),
		}
		switch r.Kind {
		case session.Full:
			box.Style = imaging.StyleFull
		case session.Panel:
			box.Style = imaging.StylePanel
			box.Label = fmt.Sprintf("%d.%d", r.FigureNumber, r.PanelNumber)
		default:
			box.Style = imaging.StyleSingle
		}
		boxes = append(boxes, box)
	}

	if st.HasPending() && st.Page == page.Index && !st.Pending.Empty() {
		pending := st.Pending
		if st.Surface.Valid() && st.Surface != page.Size() {
			pending = geometry.ToRendered(pending, page.Size(), st.Surface)
		}
		boxes = append(boxes, imaging.Box{Rect: pending.Pixels(), Style: imaging.StylePending})
	}

	return boxes
}

// RenderPreview draws the boxes of PreviewBoxes over the page raster.
func RenderPreview(page *document.Page, st session.State) *image.RGBA {
	return imaging.Overlay(page.Image, PreviewBoxes(page, st))
}
