package pixel

import (
	"encoding/json"
	"fmt"
)

// Cell addresses one grid cell.
type Cell struct {
	Row int `json:"row"` // 0-based, 0 = top row
	Col int `json:"col"` // 0-based, 0 = leftmost column
}

// Grid is a rectangular height × width array of colors, stored row-major.
//
// Both dimensions are at least 1 and every row has exactly Width entries.
// The zero value is not usable; create grids with NewGrid or FromRows.
type Grid struct {
	height int
	width  int
	cells  []Color
}

// MaxCells bounds the number of cells in one grid.
const MaxCells = 1 << 20

// CheckSize reports whether a height × width grid can be created: both
// dimensions must be positive and their product at most MaxCells. Failures
// wrap ErrRange.
func CheckSize(height, width int) error {
	if height < 1 || width < 1 {
		return fmt.Errorf("%w: %dx%d", ErrRange, height, width)
	}
	if width > MaxCells/height {
		return fmt.Errorf("%w: %dx%d exceeds %d cells", ErrRange, height, width, MaxCells)
	}
	return nil
}

// NewGrid creates a height × width grid with every cell white.
//
// Returns an error wrapping ErrRange if the size fails CheckSize.
func NewGrid(height, width int) (*Grid, error) {
	if err := CheckSize(height, width); err != nil {
		return nil, err
	}

	cells := make([]Color, height*width)
	for i := range cells {
		cells[i] = White
	}
	return &Grid{height: height, width: width, cells: cells}, nil
}

// FromRows builds a grid from row-major rows.
//
// The rows must be non-empty and all the same, non-zero, length as the
// first; anything else fails with an error wrapping ErrShape. The input is
// copied.
func FromRows(rows [][]Color) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrShape)
	}
	width := len(rows[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: row 0 is empty", ErrShape)
	}

	cells := make([]Color, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrShape, i, len(row), width)
		}
		cells = append(cells, row...)
	}
	return &Grid{height: len(rows), width: width, cells: cells}, nil
}

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Contains reports whether (row, col) lies inside the grid.
func (g *Grid) Contains(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width
}

// At returns the color of (row, col). It panics if the cell is out of bounds.
func (g *Grid) At(row, col int) Color {
	return g.cells[g.offset(row, col)]
}

// Paint sets (row, col) to c. It panics if the cell is out of bounds.
func (g *Grid) Paint(row, col int, c Color) {
	g.cells[g.offset(row, col)] = c
}

// PaintDrag paints every cell of a drag stroke, in order, with c.
// Passing over the same cell twice leaves it painted once.
func (g *Grid) PaintDrag(cells []Cell, c Color) {
	for _, cell := range cells {
		g.Paint(cell.Row, cell.Col, c)
	}
}

// Clear resets (row, col) to white.
func (g *Grid) Clear(row, col int) {
	g.Paint(row, col, White)
}

// Resize discards the contents and makes the grid a blank height × width
// grid. On ErrRange the grid is left unchanged.
func (g *Grid) Resize(height, width int) error {
	blank, err := NewGrid(height, width)
	if err != nil {
		return err
	}
	*g = *blank
	return nil
}

// Rows returns a row-major copy of the grid.
func (g *Grid) Rows() [][]Color {
	rows := make([][]Color, g.height)
	for r := range rows {
		row := make([]Color, g.width)
		copy(row, g.cells[r*g.width:(r+1)*g.width])
		rows[r] = row
	}
	return rows
}

// Clone returns an independent copy of g.
func (g *Grid) Clone() *Grid {
	cells := make([]Color, len(g.cells))
	copy(cells, g.cells)
	return &Grid{height: g.height, width: g.width, cells: cells}
}

// Quantize returns a copy of g with every cell replaced by its nearest color
// in colors. With no colors the copy is returned as is.
func (g *Grid) Quantize(colors []Color) *Grid {
	out := g.Clone()
	if len(colors) == 0 {
		return out
	}

	nearest := make(map[Color]Color)
	for i, c := range out.cells {
		q, ok := nearest[c]
		if !ok {
			q = c.Nearest(colors)
			nearest[c] = q
		}
		out.cells[i] = q
	}
	return out
}

// MarshalJSON encodes the grid as its rows of [r, g, b] triples.
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Rows())
}

// UnmarshalJSON decodes rows of triples, enforcing the FromRows shape rules.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]Color
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	decoded, err := FromRows(rows)
	if err != nil {
		return err
	}
	*g = *decoded
	return nil
}

func (g *Grid) offset(row, col int) int {
	if !g.Contains(row, col) {
		panic(fmt.Sprintf("pixel: cell (%d,%d) outside %dx%d grid", row, col, g.height, g.width))
	}
	return row*g.width + col
}
