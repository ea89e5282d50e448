// Package detection proposes candidate figure regions on rendered pages.
//
// Pages of papers and reports are mostly white space with separated blocks
// of content: paragraphs, plots, photos, tables. DetectBlocks finds those
// blocks so a host can offer them as starting rectangles instead of asking
// the user to drag every box by hand. Each block also carries a TextScore;
// with ExcludeText set, blocks that look like running paragraphs are left
// out.
//
// # Coordinate System
//
// All coordinates are pixels of the image passed in:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward, Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Limitations
//
// The detector works on ink, not semantics. A figure whose caption sits close
// to it is returned as one block with the caption; two panels separated by
// less than the gap setting merge. Photos with light backgrounds may be cut
// to their darker parts.
package detection
