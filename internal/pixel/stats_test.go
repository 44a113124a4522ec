package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDominantColors(t *testing.T) {
	red := Color{R: 255}
	blue := Color{B: 255}

	g, err := FromRows([][]Color{
		{red, blue, White, blue},
		{red, blue, Black, White},
	})
	require.NoError(t, err)

	shares := g.DominantColors(0)
	require.Len(t, shares, 4)

	// blue: 3 cells; red and white: 2 each, red seen first; black: 1
	want := []struct {
		c     Color
		cells int
	}{{blue, 3}, {red, 2}, {White, 2}, {Black, 1}}
	for i, w := range want {
		assert.Equal(t, w.c, shares[i].Color, "shares[%d]", i)
		assert.Equal(t, w.cells, shares[i].Cells, "shares[%d]", i)
	}

	assert.Equal(t, 37.5, shares[0].Percentage)
	assert.Equal(t, "#0000ff", shares[0].Hex)
}

func TestDominantColors_Limit(t *testing.T) {
	g, err := NewGrid(2, 2)
	require.NoError(t, err)
	g.Paint(0, 0, Black)

	shares := g.DominantColors(1)
	require.Len(t, shares, 1)
	assert.Equal(t, White, shares[0].Color)
	assert.Equal(t, 3, shares[0].Cells)

	assert.Len(t, g.DominantColors(10), 2)
}
