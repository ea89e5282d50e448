// Package document rasterizes pages of a paginated source document.
//
// The Renderer contract is small: a page count and a
// deterministic RenderPage(index, dpi). PDF files are served by the go-fitz
// (MuPDF) backed FitzRenderer; tests and other backends only need to satisfy
// the interface.
//
// # Coordinate Spaces
//
// Each rendered Page carries both its raster (pixels, origin top-left) and
// the page's native size in PDF points (72 per inch). The two are related by
// the render DPI: a 612x792 point page rendered at 150 DPI is 1275x1650
// pixels.
//
// # Caching
//
// Cache wraps any Renderer and memoizes renders by (index, dpi). Renders are
// deterministic, so cached pages are always valid; Evict and Clear exist only
// to bound memory.
package document
