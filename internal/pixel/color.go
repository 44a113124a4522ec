package pixel

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
//
// Color is comparable and is used directly as a map key.
type Color struct {
	R uint8 // Red component (0-255)
	G uint8 // Green component (0-255)
	B uint8 // Blue component (0-255)
}

var (
	// White is the color of a blank cell.
	White = Color{R: 255, G: 255, B: 255}

	// Black is the default active color.
	Black = Color{}
)

var channelRuns = regexp.MustCompile(`-?\d+(\.\d+)?`)

// ParseHex parses a "#rrggbb" color.
//
// The leading '#' is optional. The remainder must be exactly six hex digits
// in either case; anything else fails with ErrParse.
func ParseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: %q: expected 6 hex digits", ErrParse, s)
	}
	for _, r := range hex {
		if !isHexDigit(r) {
			return Color{}, fmt.Errorf("%w: %q: invalid hex digit %q", ErrParse, s, r)
		}
	}

	c, err := colorful.Hex("#" + strings.ToLower(hex))
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrParse, s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// ParseRGB parses a color in channel-list form such as "rgb(12, 34, 56)".
//
// Numeric runs are extracted in order and the first three become the red,
// green and blue channels. The surrounding text is not inspected, so
// "12 34 56" parses as well. Fewer than three runs fail with ErrParse, as
// does a negative, fractional or above-255 channel.
func ParseRGB(s string) (Color, error) {
	runs := channelRuns.FindAllString(s, 3)
	if len(runs) < 3 {
		return Color{}, fmt.Errorf("%w: %q: expected 3 channels, found %d", ErrParse, s, len(runs))
	}

	var ch [3]uint8
	for i, run := range runs {
		if strings.ContainsAny(run, "-.") {
			return Color{}, fmt.Errorf("%w: %q: channel %s is not a whole number in 0-255", ErrParse, s, run)
		}
		v, err := strconv.ParseUint(run, 10, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q: channel %s out of range", ErrParse, s, run)
		}
		ch[i] = uint8(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// ParseColor accepts either textual form: strings starting with '#' are
// parsed as hex, everything else as a channel list.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return ParseHex(s)
	}
	return ParseRGB(s)
}

// MustParse is ParseColor for constants and tests. It panics on error.
func MustParse(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(fmt.Sprintf("invalid color %q: %v", s, err))
	}
	return c
}

// Hex returns the "#rrggbb" form of c.
func (c Color) Hex() string {
	return c.toColorful().Hex()
}

// RGB returns the "rgb(r, g, b)" form of c.
func (c Color) RGB() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// String returns the channel-list form, the form swatches are displayed in.
func (c Color) String() string {
	return c.RGB()
}

// Nearest returns the color in colors closest to c.
//
// Distance is the weighted "redmean" RGB metric (Riemersma). Ties go to the
// earliest candidate. An empty candidate list returns c unchanged.
func (c Color) Nearest(colors []Color) Color {
	if len(colors) == 0 {
		return c
	}

	src := c.toColorful()
	best := colors[0]
	bestDist := math.Inf(1)
	for _, candidate := range colors {
		d := src.DistanceRiemersma(candidate.toColorful())
		if d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	return best
}

// MarshalJSON encodes c as [r, g, b].
func (c Color) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%d,%d,%d]", c.R, c.G, c.B)), nil
}

// UnmarshalJSON decodes [r, g, b] or [r, g, b, a]. The alpha channel, sent
// by the service for sampled images, is dropped.
func (c *Color) UnmarshalJSON(data []byte) error {
	var channels []int
	if err := json.Unmarshal(data, &channels); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, data, err)
	}
	if len(channels) != 3 && len(channels) != 4 {
		return fmt.Errorf("%w: %s: expected 3 or 4 channels", ErrParse, data)
	}
	for _, v := range channels {
		if v < 0 || v > 255 {
			return fmt.Errorf("%w: %s: channel %d out of range", ErrParse, data, v)
		}
	}

	*c = Color{R: uint8(channels[0]), G: uint8(channels[1]), B: uint8(channels[2])}
	return nil
}

func (c Color) toColorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func isHexDigit(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	default:
		return false
	}
}
