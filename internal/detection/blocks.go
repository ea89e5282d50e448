package detection

import (
	"image"
	"sort"

	"github.com/anthonynsimon/bild/segment"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive), matching image.Rectangle.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts the bounds to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Point represents a cell coordinate in the detection grid.
type Point struct {
	X int
	Y int
}

// Block is a candidate figure region found on a page.
type Block struct {
	// Bounds is the tight bounding box of the ink inside the block.
	Bounds Bounds `json:"bounds"`

	// Width and Height are the block's extent in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Area is Width × Height.
	Area int `json:"area"`

	// InkRatio is the fraction of pixels in Bounds darker than the threshold.
	// Text paragraphs tend to sit around 0.05-0.15; plots and photos higher.
	InkRatio float64 `json:"ink_ratio"`

	// TextScore in [0, 1] rates how much the block looks like running text.
	TextScore float64 `json:"text_score"`

	// Text is TextScore >= TextThreshold.
	Text bool `json:"text"`
}

// BlocksResult contains the blocks detected on one page.
type BlocksResult struct {
	// Blocks is sorted by area, largest first.
	Blocks []Block `json:"blocks"`

	// Count is the number of blocks.
	Count int `json:"count"`
}

// BlockOptions tunes DetectBlocks.
type BlockOptions struct {
	// Threshold is the luminance (0-255) below which a pixel counts as ink.
	Threshold uint8

	// CellSize is the side of the square cells ink is pooled into. Larger
	// cells merge nearby marks (letters into lines, lines into paragraphs).
	CellSize int

	// Gap is how many empty cells may separate two parts of one block.
	Gap int

	// MinArea drops blocks smaller than this many square pixels.
	MinArea int

	// MaxBlocks limits the result, 0 means no limit.
	MaxBlocks int

	// ExcludeText drops blocks classified as running text.
	ExcludeText bool
}

// DefaultBlockOptions suits pages rendered around 150 DPI.
func DefaultBlockOptions() BlockOptions {
	return BlockOptions{
		Threshold: 200,
		CellSize:  8,
		Gap:       2,
		MinArea:   5000,
	}
}

// DetectBlocks finds separated regions of content on a rendered page.
//
// The host offers the results as starting rectangles for a selection; they
// are suggestions only and never committed automatically.
//
// # Algorithm
//
//  1. Threshold: bild's segment.Threshold turns the page into a binary mask
//     where pixels darker than opts.Threshold are ink.
//  2. Pooling: the mask is divided into CellSize×CellSize cells; a cell is
//     inked if any of its pixels is.
//  3. Grouping: inked cells within Gap cells of each other are joined by an
//     iterative flood fill.
//  4. Tightening: each group's bounding box is shrunk to the ink it contains.
//  5. Classification: blocks made of regular thin bands of ink at low
//     density are marked as text.
//  6. Filtering: groups below MinArea (and text, with ExcludeText) are
//     dropped, the rest sorted by area.
func DetectBlocks(img image.Image, opts BlockOptions) (*BlocksResult, error) {
	if opts.CellSize <= 0 {
		opts.CellSize = 8
	}
	if opts.Gap < 0 {
		opts.Gap = 0
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	mask := segment.Threshold(img, opts.Threshold)
	ink := func(x, y int) bool {
		return mask.GrayAt(mask.Rect.Min.X+x, mask.Rect.Min.Y+y).Y == 0
	}

	cols := (width + opts.CellSize - 1) / opts.CellSize
	rows := (height + opts.CellSize - 1) / opts.CellSize
	cells := make([][]bool, rows)
	for cy := 0; cy < rows; cy++ {
		cells[cy] = make([]bool, cols)
		for cx := 0; cx < cols; cx++ {
			cells[cy][cx] = cellHasInk(ink, cx, cy, opts.CellSize, width, height)
		}
	}

	groups := findGroups(cells, cols, rows, opts.Gap)

	blocks := make([]Block, 0, len(groups))
	for _, g := range groups {
		b, ok := tighten(ink, g, opts.CellSize, width, height)
		if !ok || b.Area < opts.MinArea {
			continue
		}
		b.TextScore = textScore(ink, b.Bounds, b.InkRatio)
		b.Text = b.TextScore >= TextThreshold
		if opts.ExcludeText && b.Text {
			continue
		}
		b.Bounds.X1 += bounds.Min.X
		b.Bounds.X2 += bounds.Min.X
		b.Bounds.Y1 += bounds.Min.Y
		b.Bounds.Y2 += bounds.Min.Y
		blocks = append(blocks, b)
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Area > blocks[j].Area
	})
	if opts.MaxBlocks > 0 && len(blocks) > opts.MaxBlocks {
		blocks = blocks[:opts.MaxBlocks]
	}

	return &BlocksResult{Blocks: blocks, Count: len(blocks)}, nil
}

func cellHasInk(ink func(x, y int) bool, cx, cy, size, width, height int) bool {
	for y := cy * size; y < minInt((cy+1)*size, height); y++ {
		for x := cx * size; x < minInt((cx+1)*size, width); x++ {
			if ink(x, y) {
				return true
			}
		}
	}
	return false
}

// findGroups labels inked cells that lie within gap cells of each other.
//
// Uses a stack-based flood fill so large figures cannot overflow the
// goroutine stack.
func findGroups(cells [][]bool, cols, rows, gap int) [][]Point {
	visited := make([][]bool, rows)
	for y := range visited {
		visited[y] = make([]bool, cols)
	}

	var groups [][]Point
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if !cells[y][x] || visited[y][x] {
				continue
			}

			var group []Point
			stack := []Point{{X: x, Y: y}}
			visited[y][x] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				group = append(group, p)

				for dy := -gap - 1; dy <= gap+1; dy++ {
					for dx := -gap - 1; dx <= gap+1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || nx >= cols || ny < 0 || ny >= rows {
							continue
						}
						if visited[ny][nx] || !cells[ny][nx] {
							continue
						}
						visited[ny][nx] = true
						stack = append(stack, Point{X: nx, Y: ny})
					}
				}
			}
			groups = append(groups, group)
		}
	}
	return groups
}

// tighten computes the ink bounding box of a group of cells.
func tighten(ink func(x, y int) bool, group []Point, size, width, height int) (Block, bool) {
	x1, y1 := width, height
	x2, y2 := 0, 0
	inked := 0

	for _, c := range group {
		for y := c.Y * size; y < minInt((c.Y+1)*size, height); y++ {
			for x := c.X * size; x < minInt((c.X+1)*size, width); x++ {
				if !ink(x, y) {
					continue
				}
				inked++
				x1 = minInt(x1, x)
				y1 = minInt(y1, y)
				x2 = maxInt(x2, x+1)
				y2 = maxInt(y2, y+1)
			}
		}
	}
	if inked == 0 {
		return Block{}, false
	}

	w, h := x2-x1, y2-y1
	return Block{
		Bounds:   Bounds{X1: x1, Y1: y1, X2: x2, Y2: y2},
		Width:    w,
		Height:   h,
		Area:     w * h,
		InkRatio: float64(inked) / float64(w*h),
	}, true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
