// Package pixel provides the color and pixel-grid model of the drawing editor.
//
// This package implements the data model that the editor renders and the
// picture service consumes: a Color value with its textual codecs, a Palette
// of unique colors with an active color and a remove mode, and a rectangular
// Grid of colors that is painted cell by cell.
//
// # Coordinate System
//
// Grid cells are addressed as (row, col), both 0-based:
//   - row: vertical position (0 = top row)
//   - col: horizontal position (0 = leftmost column)
//   - Rows() returns a row-major snapshot, one slice per row
//
// # Color Representation
//
// Colors interconvert between three forms:
//   - Hex: "#rrggbb" (lowercase on output, either case on input)
//   - RGB string: "rgb(r, g, b)" with decimal channels
//   - JSON: a 3-element integer array [r, g, b]
//
// # Error Handling
//
// Malformed input fails with an error wrapping one of the sentinels:
//   - ErrParse: a color string or JSON triple that cannot be decoded
//   - ErrShape: an empty or jagged set of rows
//   - ErrRange: a non-positive grid dimension
//
// Painting a cell outside the grid is a programmer error and panics, the
// same way indexing a slice out of range does. Callers fed by untrusted
// coordinates check Contains first.
//
// # Thread Safety
//
// Color is an immutable value. Palette and Grid are not safe for concurrent
// mutation; the editor session serializes access to them.
package pixel
