package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// BoxStyle selects how a box outline is drawn.
type BoxStyle int

const (
	// StyleSingle is a 2px outline.
	StyleSingle BoxStyle = iota
	// StyleFull is a 3px outline.
	StyleFull
	// StylePanel is a 1px outline.
	StylePanel
	// StylePending is the red outline of the selection being dragged.
	StylePending
)

// Box is a rectangle to draw over a page raster.
type Box struct {
	Rect   image.Rectangle
	Figure int
	Label  string
	Style  BoxStyle
}

var pendingColor = color.RGBA{255, 0, 0, 255}

// FigureColor returns a stable, saturated color for a figure number.
// Consecutive numbers are spread around the hue circle by the golden angle
// so neighbouring figures are easy to tell apart.
func FigureColor(figure int) color.RGBA {
	hue := math.Mod(float64(figure)*137.508, 360)
	c := colorful.Hsv(hue, 0.85, 0.85).Clamped()
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}
}

// Overlay draws box outlines and labels over a copy of img.
func Overlay(img image.Image, boxes []Box) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	labelColor := color.RGBA{255, 255, 255, 255}

	for _, b := range boxes {
		c := FigureColor(b.Figure)
		width := 2
		switch b.Style {
		case StyleFull:
			width = 3
		case StylePanel:
			width = 1
		case StylePending:
			c = pendingColor
		}

		r := b.Rect.Canon().Add(bounds.Min)
		drawOutline(result, r, width, c)
		if b.Label != "" {
			drawLabel(result, r.Min.X+width+1, r.Min.Y+width+1, b.Label, labelColor, c)
		}
	}

	return result
}

func drawOutline(img *image.RGBA, r image.Rectangle, width int, c color.RGBA) {
	u := image.NewUniform(c)
	for i := 0; i < width; i++ {
		edges := []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y+i, r.Max.X, r.Min.Y+i+1),
			image.Rect(r.Min.X, r.Max.Y-i-1, r.Max.X, r.Max.Y-i),
			image.Rect(r.Min.X+i, r.Min.Y, r.Min.X+i+1, r.Max.Y),
			image.Rect(r.Max.X-i-1, r.Min.Y, r.Max.X-i, r.Max.Y),
		}
		for _, e := range edges {
			draw.Draw(img, e.Intersect(img.Bounds()), u, image.Point{}, draw.Src)
		}
	}
}

// drawLabel draws a label using a 3x5 pixel font that covers digits, '.',
// 'F' and 'P'. Unknown runes leave a gap.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		'.': {"000", "000", "000", "000", "010"},
		'F': {"111", "100", "111", "100", "100"},
		'P': {"111", "101", "111", "100", "100"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len([]rune(text)) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if (image.Point{px, py}).In(bounds) {
				img.SetRGBA(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				px, py := cx+col, y+row
				if (image.Point{px, py}).In(bounds) {
					img.SetRGBA(px, py, fg)
				}
			}
		}
		cx += charWidth
	}
}
