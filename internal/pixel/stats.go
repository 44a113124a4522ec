package pixel

import (
	"sort"
)

// ColorShare is a color and how much of a grid it covers.
type ColorShare struct {
	Color      Color   `json:"color"`
	Hex        string  `json:"hex"`
	Cells      int     `json:"cells"`
	Percentage float64 `json:"percentage"` // 0-100
}

// DominantColors returns the count most common cell colors, most common
// first. Colors with equal coverage keep the order in which they first
// appear, scanning rows top to bottom. A count of zero or less returns every
// color.
//
// Unlike a photo, a grid holds few distinct colors, so colors are counted
// exactly rather than bucketed.
func (g *Grid) DominantColors(count int) []ColorShare {
	counts := make(map[Color]int)
	var order []Color
	for _, c := range g.cells {
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}

	shares := make([]ColorShare, len(order))
	total := float64(len(g.cells))
	for i, c := range order {
		shares[i] = ColorShare{
			Color:      c,
			Hex:        c.Hex(),
			Cells:      counts[c],
			Percentage: float64(counts[c]) / total * 100,
		}
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Cells > shares[j].Cells
	})

	if count > 0 && len(shares) > count {
		shares = shares[:count]
	}
	return shares
}
