package detection

import (
	"math"
)

// TextThreshold is the TextScore at or above which a block is treated as
// running text.
const TextThreshold = 0.5

// textScore estimates how much the ink inside b looks like a paragraph:
// several thin horizontal bands (lines of type) separated by blank rows, of
// similar height, at a low overall ink density. Figures are usually one
// tall band or dense fills and score near 0.
//
// b is in mask coordinates (origin at the image's top-left).
func textScore(ink func(x, y int) bool, b Bounds, inkRatio float64) float64 {
	var bands []int
	run := 0
	for y := b.Y1; y < b.Y2; y++ {
		if rowHasInk(ink, b.X1, b.X2, y) {
			run++
			continue
		}
		if run > 0 {
			bands = append(bands, run)
			run = 0
		}
	}
	if run > 0 {
		bands = append(bands, run)
	}

	if len(bands) < 2 {
		return 0
	}

	mean := 0.0
	for _, h := range bands {
		mean += float64(h)
	}
	mean /= float64(len(bands))

	variance := 0.0
	for _, h := range bands {
		d := float64(h) - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(bands)))

	// Text has at least a handful of lines.
	bandScore := math.Min(1, float64(len(bands)-1)/4)

	// Lines of one paragraph share a height.
	regularity := 1 - math.Min(1, stddev/mean)

	// Printed text covers roughly 5-25% of its bounding box.
	density := 1 - math.Min(1, math.Abs(inkRatio-0.15)/0.15)

	return math.Round(bandScore*regularity*density*1000) / 1000
}

func rowHasInk(ink func(x, y int) bool, x1, x2, y int) bool {
	for x := x1; x < x2; x++ {
		if ink(x, y) {
			return true
		}
	}
	return false
}
