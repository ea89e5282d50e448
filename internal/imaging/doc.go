// Package imaging provides the raster operations behind figure export and
// page previews.
//
// Crop cuts a pixel region out of a rendered page and optionally rescales
// it; SavePNG and Encode write the result to disk or to an inline base64
// payload. Overlay draws committed and pending selection boxes over a copy of
// a page so a host can show the user what has been captured.
//
// # Coordinate System
//
// All coordinates are pixel coordinates of the image passed in, origin at
// the top-left, X rightward and Y downward. Rectangles are image.Rectangle
// values: Min inclusive, Max exclusive.
//
// # Thread Safety
//
// Every function is stateless and returns a new image; the input is never
// modified, so concurrent calls on the same source image are safe.
package imaging
