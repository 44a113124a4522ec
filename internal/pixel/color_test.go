package pixel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Color
	}{
		{"black", "#000000", Black},
		{"white", "#ffffff", White},
		{"upper case", "#FF8040", Color{255, 128, 64}},
		{"no hash", "0a0b0c", Color{10, 11, 12}},
		{"mixed case", "#aBcDeF", Color{0xab, 0xcd, 0xef}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHex_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"hash only", "#"},
		{"short form", "#fff"},
		{"too long", "#1234567"},
		{"non-hex", "#12345g"},
		{"rgb form", "rgb(1, 2, 3)"},
		{"sign", "#+12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHex(tt.in)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestParseRGB(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Color
	}{
		{"canonical", "rgb(12, 34, 56)", Color{12, 34, 56}},
		{"no spaces", "rgb(255,255,255)", White},
		{"bare numbers", "1 2 3", Color{1, 2, 3}},
		{"extra runs ignored", "rgba(1, 2, 3, 4)", Color{1, 2, 3}},
		{"leading zeros", "rgb(007, 08, 9)", Color{7, 8, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRGB(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRGB_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"no channels", "rgb()"},
		{"two channels", "rgb(1, 2)"},
		{"above 255", "rgb(256, 0, 0)"},
		{"huge", "rgb(1, 2, 99999999999999999999)"},
		{"negative", "rgb(-1, 2, 3)"},
		{"negative last", "rgb(1, 2, -3)"},
		{"fractional", "rgb(1.5, 2, 3)"},
		{"fractional last", "rgb(1, 2, 3.0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRGB(tt.in)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestParseColor_Dispatch(t *testing.T) {
	c, err := ParseColor("  #102030 ")
	require.NoError(t, err)
	assert.Equal(t, Color{16, 32, 48}, c, "hex form")

	c, err = ParseColor("rgb(16, 32, 48)")
	require.NoError(t, err)
	assert.Equal(t, Color{16, 32, 48}, c, "rgb form")
}

func TestColorFormats(t *testing.T) {
	c := Color{255, 128, 4}
	assert.Equal(t, "#ff8004", c.Hex())
	assert.Equal(t, "rgb(255, 128, 4)", c.RGB())
	assert.Equal(t, "rgb(0, 0, 0)", Black.String())
}

// Every color must survive both textual forms.
func TestColorRoundTrip_Exhaustive(t *testing.T) {
	for r := 0; r < 256; r += 3 {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 7 {
				c := Color{uint8(r), uint8(g), uint8(b)}

				fromHex, err := ParseHex(c.Hex())
				require.NoError(t, err)
				require.Equal(t, c, fromHex, "hex round trip")

				fromRGB, err := ParseRGB(c.RGB())
				require.NoError(t, err)
				require.Equal(t, c, fromRGB, "rgb round trip")
			}
		}
	}
}

func TestColorJSON(t *testing.T) {
	data, err := json.Marshal(Color{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]", string(data))

	var c Color
	require.NoError(t, json.Unmarshal([]byte("[10, 20, 30, 255]"), &c))
	assert.Equal(t, Color{10, 20, 30}, c, "alpha is dropped")
}

func TestColorJSON_Malformed(t *testing.T) {
	for _, in := range []string{`[1,2]`, `[1,2,3,4,5]`, `[1,2,256]`, `[-1,0,0]`, `"#ffffff"`, `[1.5,2,3]`} {
		t.Run(in, func(t *testing.T) {
			var c Color
			assert.ErrorIs(t, json.Unmarshal([]byte(in), &c), ErrParse)
		})
	}
}

func TestNearest(t *testing.T) {
	red := Color{255, 0, 0}
	blue := Color{0, 0, 255}
	candidates := []Color{White, Black, red, blue}

	tests := []struct {
		name string
		in   Color
		want Color
	}{
		{"near black", Color{10, 10, 10}, Black},
		{"near white", Color{250, 245, 250}, White},
		{"dark red", Color{200, 20, 10}, red},
		{"navy", Color{10, 10, 180}, blue},
		{"exact", blue, blue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Nearest(candidates))
		})
	}

	assert.Equal(t, red, red.Nearest(nil), "no candidates")
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("#nothex") })
}
