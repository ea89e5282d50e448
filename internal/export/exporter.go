// Package export writes committed regions out as cropped images plus a JSON
// manifest describing them.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ironsheep/figure-extractor/internal/document"
	"github.com/ironsheep/figure-extractor/internal/geometry"
	"github.com/ironsheep/figure-extractor/internal/imaging"
	"github.com/ironsheep/figure-extractor/internal/session"
)

// ErrExportIO is returned when the output directory or the manifest cannot
// be written. No manifest is left on disk; images already written by the
// failed run stay behind.
var ErrExportIO = errors.New("export i/o failure")

// DefaultDPI matches the resolution pages are shown at while annotating.
const DefaultDPI = 150.0

// Exporter crops regions out of their source pages.
type Exporter struct {
	Renderer document.Renderer

	// DPI is the export resolution, independent of the display resolution.
	DPI float64

	// ManifestName defaults to DefaultManifestName.
	ManifestName string

	// Grayscale converts every crop to luminance only.
	Grayscale bool

	// Scale resizes crops after cutting; 0 or 1 keeps export resolution.
	Scale float64

	// Progress, when set, is called after each region is written or skipped.
	Progress func(done, total int)

	Logger zerolog.Logger
}

// Skipped records a region that produced no image.
type Skipped struct {
	Region session.Region `json:"region"`
	Reason string         `json:"reason"`
}

// Result is the outcome of an Export call.
type Result struct {
	Manifest     *Manifest `json:"manifest"`
	ManifestPath string    `json:"manifest_path"`
	Skipped      []Skipped `json:"skipped,omitempty"`
}

// Sort orders regions by figure number, then panel number, with the single
// or full region of a figure before its panels. The input is not modified.
func Sort(regions []session.Region) []session.Region {
	sorted := make([]session.Region, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.FigureNumber != b.FigureNumber {
			return a.FigureNumber < b.FigureNumber
		}
		return a.PanelNumber < b.PanelNumber
	})
	return sorted
}

// Export writes one PNG per usable region into dir and then the manifest.
//
// Regions whose rectangle is degenerate, or whose crop cannot be rendered or
// written, are skipped and reported in Result.Skipped. Failing to create dir
// or to write the manifest aborts with ErrExportIO.
func (e *Exporter) Export(ctx context.Context, regions []session.Region, dir string) (*Result, error) {
	dpi := e.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	name := e.ManifestName
	if name == "" {
		name = DefaultManifestName
	}
	log := e.Logger.With().Str("dir", dir).Float64("dpi", dpi).Logger()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create output directory: %w", ErrExportIO, err)
	}

	res := &Result{Manifest: &Manifest{Figures: []Entry{}}}
	pages := make(map[int]*document.Page)

	sorted := Sort(regions)
	for i, r := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.exportOne(r, dir, dpi, pages, res, log)
		if e.Progress != nil {
			e.Progress(i+1, len(sorted))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := writeManifest(res.Manifest, dir, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportIO, err)
	}
	res.ManifestPath = path

	log.Info().
		Int("exported", len(res.Manifest.Figures)).
		Int("skipped", len(res.Skipped)).
		Str("manifest", path).
		Msg("export complete")

	return res, nil
}

// exportOne writes r and records it in res, as a manifest entry or as skipped.
func (e *Exporter) exportOne(r session.Region, dir string, dpi float64, pages map[int]*document.Page, res *Result, log zerolog.Logger) {
	rlog := log.With().Str("region", r.Label()).Int("page", r.Page+1).Logger()

	entry, err := e.exportRegion(r, dir, dpi, pages)
	if err != nil {
		if errors.Is(err, geometry.ErrDegenerateRegion) {
			rlog.Warn().Err(err).Msg("skipping degenerate region")
		} else {
			rlog.Error().Err(err).Msg("skipping region that failed to export")
		}
		res.Skipped = append(res.Skipped, Skipped{Region: r, Reason: err.Error()})
		return
	}

	rlog.Debug().Str("file", entry.Filename).Msg("figure written")
	res.Manifest.Figures = append(res.Manifest.Figures, *entry)
}

func (e *Exporter) exportRegion(r session.Region, dir string, dpi float64, pages map[int]*document.Page) (*Entry, error) {
	page, ok := pages[r.Page]
	if !ok {
		var err error
		page, err = e.Renderer.RenderPage(r.Page, dpi)
		if err != nil {
			return nil, err
		}
		pages[r.Page] = page
	}

	native, err := geometry.ToNative(r.Rect, r.Surface, page.NativeSize())
	if err != nil {
		return nil, err
	}

	crop, err := cropNative(page, native, e.Scale)
	if err != nil {
		return nil, err
	}
	if e.Grayscale {
		crop = imaging.Grayscale(crop)
	}

	filename := Filename(r.Kind, r.FigureNumber, r.PanelNumber)
	if err := imaging.SavePNG(crop, filepath.Join(dir, filename)); err != nil {
		return nil, err
	}

	entry := &Entry{
		Filename:     filename,
		Type:         r.Kind,
		FigureNumber: r.FigureNumber,
		Page:         r.Page + 1,
		BBox:         native.Bounds(),
	}
	if r.Kind == session.Panel {
		p := r.PanelNumber
		entry.PanelNumber = &p
	}
	return entry, nil
}

// cropNative cuts a native-space rectangle out of a rendered page.
func cropNative(page *document.Page, native geometry.Rect, scale float64) (image.Image, error) {
	px := geometry.ToRendered(native, page.Size(), page.NativeSize()).Pixels()
	return imaging.Crop(page.Image, px.Add(page.Image.Bounds().Min), scale)
}
