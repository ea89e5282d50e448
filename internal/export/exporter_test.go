package export

import (
	"context"
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/figure-extractor/internal/document/documenttest"
	"github.com/ironsheep/figure-extractor/internal/geometry"
	"github.com/ironsheep/figure-extractor/internal/session"
)

var letter150 = geometry.Size{Width: 1275, Height: 1650}

func newExporter(r *documenttest.Renderer) *Exporter {
	return &Exporter{Renderer: r, DPI: 150, Logger: zerolog.Nop()}
}

func region(kind session.Kind, fig, panel, page int, rect geometry.Rect) session.Region {
	return session.Region{Page: page, Rect: rect, Surface: letter150, Kind: kind, FigureNumber: fig, PanelNumber: panel}
}

func square(x1, y1, x2, y2 float64) geometry.Rect {
	return geometry.Rect{Left: x1, Top: y1, Right: x2, Bottom: y2}
}

func listPNGs(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	require.NoError(t, err)
	for i := range matches {
		matches[i] = filepath.Base(matches[i])
	}
	return matches
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "figure_1.png", Filename(session.Single, 1, 0))
	assert.Equal(t, "figure_3_full.png", Filename(session.Full, 3, 0))
	assert.Equal(t, "figure_3_panel_2.png", Filename(session.Panel, 3, 2))
}

func TestSort(t *testing.T) {
	in := []session.Region{
		region(session.Panel, 2, 2, 0, square(0, 0, 1, 1)),
		region(session.Single, 3, 0, 0, square(0, 0, 1, 1)),
		region(session.Panel, 2, 1, 0, square(0, 0, 1, 1)),
		region(session.Single, 1, 0, 0, square(0, 0, 1, 1)),
		region(session.Full, 2, 0, 0, square(0, 0, 1, 1)),
	}
	out := Sort(in)

	var got []string
	for _, r := range out {
		got = append(got, Filename(r.Kind, r.FigureNumber, r.PanelNumber))
	}
	assert.Equal(t, []string{
		"figure_1.png",
		"figure_2_full.png",
		"figure_2_panel_1.png",
		"figure_2_panel_2.png",
		"figure_3.png",
	}, got)
	assert.Equal(t, session.Panel, in[0].Kind, "input must not be reordered")
}

func TestExport_LetterScenario(t *testing.T) {
	dir := t.TempDir()
	r := documenttest.Letter(2)

	res, err := newExporter(r).Export(context.Background(),
		[]session.Region{region(session.Single, 1, 0, 0, square(100, 100, 400, 400))}, dir)
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, filepath.Join(dir, DefaultManifestName), res.ManifestPath)

	data, err := os.ReadFile(res.ManifestPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"figures":[{"filename":"figure_1.png","type":"single","figure_number":1,"panel_number":null,"page":1,"bbox":[48,48,192,192]}]}`, string(data))

	f, err := os.Open(filepath.Join(dir, "figure_1.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestExport_DetailedFigure(t *testing.T) {
	dir := t.TempDir()
	r := documenttest.Letter(2)

	regions := []session.Region{
		region(session.Panel, 3, 2, 1, square(300, 100, 500, 300)),
		region(session.Full, 3, 0, 1, square(100, 100, 500, 500)),
		region(session.Single, 4, 0, 0, square(10, 10, 20, 20)),
		region(session.Panel, 3, 1, 1, square(100, 100, 300, 300)),
	}

	res, err := newExporter(r).Export(context.Background(), regions, dir)
	require.NoError(t, err)

	m, err := ReadManifest(res.ManifestPath)
	require.NoError(t, err)
	require.Len(t, m.Figures, 4)

	names := []string{}
	for _, e := range m.Figures {
		names = append(names, e.Filename)
	}
	assert.Equal(t, []string{"figure_3_full.png", "figure_3_panel_1.png", "figure_3_panel_2.png", "figure_4.png"}, names)

	assert.Nil(t, m.Figures[0].PanelNumber)
	require.NotNil(t, m.Figures[2].PanelNumber)
	assert.Equal(t, 2, *m.Figures[2].PanelNumber)
	assert.Equal(t, session.Panel, m.Figures[2].Type)
	assert.Equal(t, 2, m.Figures[0].Page)
	assert.Equal(t, 1, m.Figures[3].Page)

	assert.ElementsMatch(t, names, listPNGs(t, dir))
	assert.Equal(t, 2, r.Calls(), "each page is rendered once per export")
}

func TestExport_EmptyRegionList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	res, err := newExporter(documenttest.Letter(1)).Export(context.Background(), nil, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(res.ManifestPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"figures": []}`, string(data))
	assert.Empty(t, listPNGs(t, dir))
}

func TestExport_SkipsDegenerateRegions(t *testing.T) {
	dir := t.TempDir()

	regions := []session.Region{
		region(session.Single, 1, 0, 0, square(100, 100, 100, 400)),   // zero width
		region(session.Single, 2, 0, 0, square(100, 100, 400, 400)),   // fine
		region(session.Single, 3, 0, 0, square(2000, 100, 2400, 400)), // off page
		region(session.Single, 4, 0, 0, square(10, 50, 300, 50)),      // zero height
	}

	res, err := newExporter(documenttest.Letter(1)).Export(context.Background(), regions, dir)
	require.NoError(t, err)

	require.Len(t, res.Manifest.Figures, 1)
	assert.Equal(t, "figure_2.png", res.Manifest.Figures[0].Filename)
	assert.Len(t, res.Skipped, 3)
	for _, s := range res.Skipped {
		assert.Contains(t, s.Reason, "degenerate")
	}
	assert.Equal(t, []string{"figure_2.png"}, listPNGs(t, dir))
}

func TestExport_SkipsRegionsThatFailToRender(t *testing.T) {
	dir := t.TempDir()
	r := documenttest.Letter(2)
	r.FailPage(1, errors.New("mupdf exploded"))

	regions := []session.Region{
		region(session.Single, 1, 0, 1, square(10, 10, 100, 100)),
		region(session.Single, 2, 0, 0, square(10, 10, 100, 100)),
		region(session.Single, 3, 0, 7, square(10, 10, 100, 100)),
	}

	res, err := newExporter(r).Export(context.Background(), regions, dir)
	require.NoError(t, err)
	require.Len(t, res.Manifest.Figures, 1)
	assert.Equal(t, "figure_2.png", res.Manifest.Figures[0].Filename)
	require.Len(t, res.Skipped, 2)
	assert.Contains(t, res.Skipped[0].Reason, "mupdf exploded")
	assert.Contains(t, res.Skipped[1].Reason, "out of range")
}

func TestExport_PartiallyOffPageIsClipped(t *testing.T) {
	dir := t.TempDir()

	res, err := newExporter(documenttest.Letter(1)).Export(context.Background(),
		[]session.Region{region(session.Single, 1, 0, 0, square(1175, 1550, 1375, 1750))}, dir)
	require.NoError(t, err)
	require.Len(t, res.Manifest.Figures, 1)
	assert.Equal(t, [4]float64{564, 744, 660, 840}, res.Manifest.Figures[0].BBox)

	f, err := os.Open(filepath.Join(dir, "figure_1.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestExport_UsesSurfaceInEffectWhenDrawn(t *testing.T) {
	dir := t.TempDir()
	r := documenttest.Letter(1)
	r.Pages[0].Blocks = []documenttest.Block{{Rect: square(0, 0, 306, 396), Color: color.Black}}

	// drawn on a 72 DPI preview, exported at 300 DPI
	reg := session.Region{
		Rect:         square(0, 0, 306, 396),
		Surface:      geometry.Size{Width: 612, Height: 792},
		Kind:         session.Single,
		FigureNumber: 1,
	}
	exp := newExporter(r)
	exp.DPI = 300

	res, err := exp.Export(context.Background(), []session.Region{reg}, dir)
	require.NoError(t, err)
	assert.Equal(t, [4]float64{0, 0, 306, 396}, res.Manifest.Figures[0].BBox)

	f, err := os.Open(filepath.Join(dir, "figure_1.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 1275, img.Bounds().Dx())
	assert.Equal(t, 1650, img.Bounds().Dy())

	cr, cg, cb, _ := img.At(600, 800).RGBA()
	assert.Zero(t, cr|cg|cb, "crop should be the black block")
}

func TestExport_GrayscaleAndScale(t *testing.T) {
	dir := t.TempDir()
	r := documenttest.Letter(1)
	r.Pages[0].Blocks = []documenttest.Block{{Rect: square(0, 0, 612, 792), Color: color.RGBA{200, 30, 30, 255}}}

	exp := newExporter(r)
	exp.Grayscale = true
	exp.Scale = 0.5

	_, err := exp.Export(context.Background(),
		[]session.Region{region(session.Single, 1, 0, 0, square(0, 0, 200, 100))}, dir)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "figure_1.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	cr, cg, cb, _ := img.At(10, 10).RGBA()
	assert.Equal(t, cr, cg)
	assert.Equal(t, cg, cb)
}

func TestExport_OutputDirectoryFailure(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := newExporter(documenttest.Letter(1)).Export(context.Background(), nil, filepath.Join(blocker, "out"))
	assert.ErrorIs(t, err, ErrExportIO)
}

func TestExport_ManifestWriteFailureLeavesNoManifest(t *testing.T) {
	dir := t.TempDir()
	// a directory where the manifest should go makes the final rename fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, DefaultManifestName), 0o755))

	_, err := newExporter(documenttest.Letter(1)).Export(context.Background(),
		[]session.Region{region(session.Single, 1, 0, 0, square(10, 10, 100, 100))}, dir)
	require.ErrorIs(t, err, ErrExportIO)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp manifest left behind: %s", e.Name())
	}
	info, err := os.Stat(filepath.Join(dir, DefaultManifestName))
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "no manifest file may be written")

	// the image from the aborted run is orphaned, not removed
	assert.Equal(t, []string{"figure_1.png"}, listPNGs(t, dir))
}

func TestExport_CustomManifestName(t *testing.T) {
	dir := t.TempDir()
	exp := newExporter(documenttest.Letter(1))
	exp.ManifestName = "figures.json"

	res, err := exp.Export(context.Background(), nil, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "figures.json"), res.ManifestPath)
}

func TestExport_ContextCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newExporter(documenttest.Letter(1)).Export(ctx,
		[]session.Region{region(session.Single, 1, 0, 0, square(10, 10, 100, 100))}, dir)
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(dir, DefaultManifestName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExport_ReportsProgressForEveryRegion(t *testing.T) {
	regions := []session.Region{
		region(session.Single, 2, 0, 0, square(100, 100, 400, 400)),
		region(session.Single, 1, 0, 0, square(100, 100, 100, 400)), // skipped
		region(session.Single, 3, 0, 0, square(500, 500, 700, 700)),
	}

	var calls [][2]int
	exp := newExporter(documenttest.Letter(1))
	exp.Progress = func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}

	_, err := exp.Export(context.Background(), regions, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestExport_ManifestIsWorldReadable(t *testing.T) {
	dir := t.TempDir()

	res, err := newExporter(documenttest.Letter(1)).Export(context.Background(),
		[]session.Region{region(session.Single, 1, 0, 0, square(100, 100, 400, 400))}, dir)
	require.NoError(t, err)

	info, err := os.Stat(res.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
