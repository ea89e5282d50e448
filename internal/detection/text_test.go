package detection

import (
	"image"
	"image/color"
	"testing"
)

// drawParagraph draws lines of 1px "letter" strokes every 4px, each line
// lineHeight tall with gap blank rows between lines.
func drawParagraph(img *image.RGBA, x1, y1, width, lines, lineHeight, gap int) {
	for l := 0; l < lines; l++ {
		top := y1 + l*(lineHeight+gap)
		for x := x1; x < x1+width; x += 4 {
			fillRect(img, x, top, x+1, top+lineHeight, color.Black)
		}
	}
}

func TestTextScore_Paragraph(t *testing.T) {
	img := createTestImage(400, 300, color.White)
	drawParagraph(img, 20, 20, 300, 6, 10, 8)

	result, err := DetectBlocks(img, DefaultBlockOptions())
	if err != nil {
		t.Fatalf("DetectBlocks failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("got %d blocks, want 1", result.Count)
	}

	b := result.Blocks[0]
	if !b.Text {
		t.Errorf("paragraph not classified as text, score %.3f ink %.3f", b.TextScore, b.InkRatio)
	}
	if b.TextScore < 0.9 {
		t.Errorf("TextScore: got %.3f, want >= 0.9", b.TextScore)
	}
}

func TestTextScore_Figures(t *testing.T) {
	tests := []struct {
		name string
		draw func(img *image.RGBA)
	}{
		{
			"solid block",
			func(img *image.RGBA) { fillRect(img, 50, 50, 250, 200, color.Black) },
		},
		{
			"bar chart",
			func(img *image.RGBA) {
				fillRect(img, 50, 100, 80, 250, color.Black)
				fillRect(img, 100, 60, 130, 250, color.Black)
				fillRect(img, 150, 150, 180, 250, color.Black)
				fillRect(img, 40, 250, 200, 252, color.Black)
			},
		},
		{
			"framed plot",
			func(img *image.RGBA) {
				fillRect(img, 40, 40, 300, 42, color.Black)
				fillRect(img, 40, 238, 300, 240, color.Black)
				fillRect(img, 40, 40, 42, 240, color.Black)
				fillRect(img, 298, 40, 300, 240, color.Black)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createTestImage(400, 300, color.White)
			tt.draw(img)

			result, err := DetectBlocks(img, DefaultBlockOptions())
			if err != nil {
				t.Fatalf("DetectBlocks failed: %v", err)
			}
			if result.Count != 1 {
				t.Fatalf("got %d blocks, want 1", result.Count)
			}
			if b := result.Blocks[0]; b.Text {
				t.Errorf("classified as text, score %.3f", b.TextScore)
			}
		})
	}
}

func TestDetectBlocks_ExcludeText(t *testing.T) {
	img := createTestImage(600, 500, color.White)
	drawParagraph(img, 20, 20, 300, 6, 10, 8)
	fillRect(img, 100, 250, 400, 450, color.RGBA{30, 30, 160, 255})

	opts := DefaultBlockOptions()
	all, err := DetectBlocks(img, opts)
	if err != nil {
		t.Fatalf("DetectBlocks failed: %v", err)
	}
	if all.Count != 2 {
		t.Fatalf("without filter: got %d blocks, want 2", all.Count)
	}

	opts.ExcludeText = true
	figures, err := DetectBlocks(img, opts)
	if err != nil {
		t.Fatalf("DetectBlocks failed: %v", err)
	}
	if figures.Count != 1 {
		t.Fatalf("with filter: got %d blocks, want 1", figures.Count)
	}
	want := Bounds{X1: 100, Y1: 250, X2: 400, Y2: 450}
	if figures.Blocks[0].Bounds != want {
		t.Errorf("figure bounds: got %+v, want %+v", figures.Blocks[0].Bounds, want)
	}
}

func TestTextScore_SingleBand(t *testing.T) {
	ink := func(x, y int) bool { return y >= 10 && y < 20 }
	if s := textScore(ink, Bounds{X1: 0, Y1: 10, X2: 50, Y2: 20}, 1); s != 0 {
		t.Errorf("single band: got %.3f, want 0", s)
	}
}
