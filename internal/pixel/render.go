package pixel

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// Image returns the grid as an image with one pixel per cell.
func (g *Grid) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.width, g.height))
	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			img.SetNRGBA(col, row, g.At(row, col).nrgba())
		}
	}
	return img
}

// Render upscales the grid so that each cell is a cellSize × cellSize square.
// A cellSize below 1 is treated as 1.
func Render(g *Grid, cellSize int) *image.NRGBA {
	if cellSize < 1 {
		cellSize = 1
	}
	return imaging.Resize(g.Image(), g.width*cellSize, g.height*cellSize, imaging.NearestNeighbor)
}

// GridOptions controls RenderWithGrid.
type GridOptions struct {
	CellSize  int   // Side of one cell in pixels (minimum 2)
	LineColor Color // Color of the cell lines and numbers
	Numbers   bool  // Number rows and columns in a white margin, starting at 1
}

// RenderWithGrid upscales the grid and outlines every cell.
//
// With Numbers set, a white margin is added on the left and top holding the
// 1-based row and column numbers.
func RenderWithGrid(g *Grid, opts GridOptions) *image.NRGBA {
	cell := opts.CellSize
	if cell < 2 {
		cell = 2
	}
	body := Render(g, cell)
	w, h := body.Bounds().Dx(), body.Bounds().Dy()

	margin := 0
	if opts.Numbers {
		digits := len(strconv.Itoa(max(g.height, g.width)))
		margin = digits*glyphAdvance + 4
	}

	canvas := imaging.New(w+margin+1, h+margin+1, color.White)
	canvas = imaging.Paste(canvas, body, image.Pt(margin, margin))

	line := opts.LineColor.nrgba()
	for row := 0; row <= g.height; row++ {
		y := margin + row*cell
		for x := margin; x <= margin+w; x++ {
			canvas.SetNRGBA(x, y, line)
		}
	}
	for col := 0; col <= g.width; col++ {
		x := margin + col*cell
		for y := margin; y <= margin+h; y++ {
			canvas.SetNRGBA(x, y, line)
		}
	}

	if opts.Numbers {
		for row := 0; row < g.height; row++ {
			drawLabel(canvas, 1, margin+row*cell+(cell-glyphHeight)/2, strconv.Itoa(row+1), line)
		}
		for col := 0; col < g.width; col++ {
			drawLabel(canvas, margin+col*cell+1, (margin-glyphHeight)/2, strconv.Itoa(col+1), line)
		}
	}

	return canvas
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func (c Color) nrgba() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

const (
	glyphAdvance = 4
	glyphHeight  = 5
)

// 3x5 pixel digits
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

// drawLabel draws text with its top-left corner at (x, y), clipped to img.
func drawLabel(img *image.NRGBA, x, y int, text string, fg color.NRGBA) {
	bounds := img.Bounds()
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += glyphAdvance
			continue
		}
		for row, line := range glyph {
			for col, bit := range line {
				if bit != '1' {
					continue
				}
				px, py := cx+col, y+row
				if image.Pt(px, py).In(bounds) {
					img.SetNRGBA(px, py, fg)
				}
			}
		}
		cx += glyphAdvance
	}
}
