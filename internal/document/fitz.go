package document

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog"

	"github.com/ironsheep/figure-extractor/internal/geometry"
)

// boundTolerance is how far, in points, MuPDF's integer page bounds may
// drift from the page size read from the page dictionary.
const boundTolerance = 1.0

// OpenOptions controls how a PDF is opened.
type OpenOptions struct {
	// Validate runs a relaxed pdfcpu structural validation before opening.
	Validate bool

	Logger zerolog.Logger
}

// FitzRenderer renders PDF pages with MuPDF through go-fitz.
//
// MuPDF contexts are not safe for concurrent use, so every call into the
// document is serialized.
type FitzRenderer struct {
	mu    sync.Mutex
	doc   *fitz.Document
	path  string
	pages int
	sizes []geometry.Size
	log   zerolog.Logger
}

// Open validates path and opens it for rendering.
func Open(path string, opts OpenOptions) (*FitzRenderer, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	log := opts.Logger.With().Str("document", filepath.Base(path)).Logger()

	ctx, err := readContext(path)
	if err != nil && opts.Validate {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, path, err)
	}
	if err == nil && opts.Validate {
		if err := api.ValidateContext(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, path, err)
		}
	}

	var sizes []geometry.Size
	if err != nil {
		log.Warn().Err(err).Msg("page dictionaries unreadable, falling back to renderer bounds")
	} else if sizes, err = pageSizes(ctx); err != nil {
		if opts.Validate {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, path, err)
		}
		log.Warn().Err(err).Msg("page boxes unreadable, falling back to renderer bounds")
		sizes = nil
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrInvalidDocument, path, err)
	}

	pages := doc.NumPage()
	if pages == 0 {
		doc.Close()
		return nil, fmt.Errorf("%w: %s has no pages", ErrInvalidDocument, path)
	}

	if sizes != nil && len(sizes) != pages {
		log.Warn().Int("pdfcpu_pages", len(sizes)).Int("mupdf_pages", pages).
			Msg("page count mismatch between backends, falling back to renderer bounds")
		sizes = nil
	}

	log.Debug().Int("pages", pages).Msg("document opened")

	return &FitzRenderer{
		doc:   doc,
		path:  path,
		pages: pages,
		sizes: sizes,
		log:   log,
	}, nil
}

// Path returns the file the renderer was opened from.
func (r *FitzRenderer) Path() string {
	return r.path
}

// PageCount implements Renderer.
func (r *FitzRenderer) PageCount() int {
	return r.pages
}

// RenderPage implements Renderer.
func (r *FitzRenderer) RenderPage(index int, dpi float64) (*Page, error) {
	if err := CheckIndex(index, r.pages); err != nil {
		return nil, err
	}
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid dpi %g", dpi)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.doc == nil {
		return nil, fmt.Errorf("%w: document is closed", ErrInvalidDocument)
	}

	bound, err := r.doc.Bound(index)
	if err != nil {
		return nil, fmt.Errorf("failed to read bounds of page %d: %w", index+1, err)
	}

	img, err := r.doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", index+1, err)
	}

	native := geometry.Size{Width: float64(bound.Dx()), Height: float64(bound.Dy())}
	if r.sizes != nil {
		want := r.sizes[index]
		if math.Abs(native.Width-want.Width) > boundTolerance || math.Abs(native.Height-want.Height) > boundTolerance {
			r.log.Warn().Int("page", index+1).
				Float64("width", want.Width).Float64("height", want.Height).
				Int("bound_width", bound.Dx()).Int("bound_height", bound.Dy()).
				Msg("renderer bounds disagree with page box")
		}
		native = want
	}

	r.log.Debug().Int("page", index+1).Float64("dpi", dpi).
		Int("width", img.Bounds().Dx()).Int("height", img.Bounds().Dy()).
		Msg("page rendered")

	return &Page{
		Index:        index,
		DPI:          dpi,
		Image:        img,
		NativeWidth:  native.Width,
		NativeHeight: native.Height,
	}, nil
}

// Close releases the MuPDF document.
func (r *FitzRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.doc == nil {
		return nil
	}
	err := r.doc.Close()
	r.doc = nil
	return err
}

func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: file path cannot be empty", ErrInvalidDocument)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: cannot access %s: %v", ErrInvalidDocument, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidDocument, path)
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return fmt.Errorf("%w: %s is not a PDF (extension %q)", ErrInvalidDocument, path, ext)
	}
	return nil
}

func readContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.ReadContext(f, conf)
}

func pageSizes(ctx *model.Context) ([]geometry.Size, error) {
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, err
	}
	pbs, err := ctx.PageBoundaries(nil)
	if err != nil {
		return nil, err
	}

	sizes := make([]geometry.Size, len(pbs))
	for i, pb := range pbs {
		if sizes[i], err = nativeSize(pb); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return sizes, nil
}

// nativeSize is the displayed size of a page in points: the MediaBox clipped
// to the CropBox, with width and height swapped for quarter-turn rotations.
func nativeSize(pb model.PageBoundaries) (geometry.Size, error) {
	media := pb.MediaBox()
	if media == nil {
		return geometry.Size{}, fmt.Errorf("missing MediaBox")
	}
	box := normalizeBox(media)

	// An inherited empty CropBox means none was set.
	if crop := pb.CropBox(); crop != nil && crop != media {
		c := normalizeBox(crop)
		if c.Width() > 0 && c.Height() > 0 {
			box = types.Rectangle{
				LL: types.Point{X: math.Max(box.LL.X, c.LL.X), Y: math.Max(box.LL.Y, c.LL.Y)},
				UR: types.Point{X: math.Min(box.UR.X, c.UR.X), Y: math.Min(box.UR.Y, c.UR.Y)},
			}
		}
	}

	size := geometry.Size{Width: box.Width(), Height: box.Height()}
	if size.Width <= 0 || size.Height <= 0 {
		return geometry.Size{}, fmt.Errorf("empty page box %gx%g", size.Width, size.Height)
	}

	if rot := ((pb.Rot % 360) + 360) % 360; rot == 90 || rot == 270 {
		size.Width, size.Height = size.Height, size.Width
	}
	return size, nil
}

func normalizeBox(r *types.Rectangle) types.Rectangle {
	return types.Rectangle{
		LL: types.Point{X: math.Min(r.LL.X, r.UR.X), Y: math.Min(r.LL.Y, r.UR.Y)},
		UR: types.Point{X: math.Max(r.LL.X, r.UR.X), Y: math.Max(r.LL.Y, r.UR.Y)},
	}
}
