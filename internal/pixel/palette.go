package pixel

// Palette is the deduplicated, insertion-ordered set of colors available for
// painting, together with the active color and the remove-mode toggle.
//
// A swatch click means "select" while remove mode is off and "delete" while
// it is on. Adding a color never changes the active color.
type Palette struct {
	colors     []Color
	index      map[Color]struct{}
	active     Color
	removeMode bool
}

// NewPalette creates a palette holding colors, deduplicated and in order.
//
// With no colors the palette starts as {white, black}. The active color is
// black either way and remove mode is off.
func NewPalette(colors ...Color) *Palette {
	p := &Palette{
		index:  make(map[Color]struct{}),
		active: Black,
	}
	if len(colors) == 0 {
		colors = []Color{White, Black}
	}
	for _, c := range colors {
		p.insert(c)
	}
	return p
}

// AddOrToggleRemove inserts c when remove mode is off and c is absent.
// In remove mode, or for a color already present, it does nothing.
func (p *Palette) AddOrToggleRemove(c Color) {
	if p.removeMode {
		return
	}
	p.insert(c)
}

// SelectOrDelete applies a swatch click: in remove mode c is removed (a no-op
// if absent), otherwise c becomes the active color.
func (p *Palette) SelectOrDelete(c Color) {
	if p.removeMode {
		p.remove(c)
		return
	}
	p.active = c
}

// ToggleRemoveMode flips remove mode and returns the new value.
func (p *Palette) ToggleRemoveMode() bool {
	p.removeMode = !p.removeMode
	return p.removeMode
}

// SetActive makes c the active color. c does not have to be in the palette.
func (p *Palette) SetActive(c Color) {
	p.active = c
}

// Active returns the color new strokes paint with.
func (p *Palette) Active() Color { return p.active }

// RemoveMode reports whether swatch clicks delete instead of select.
func (p *Palette) RemoveMode() bool { return p.removeMode }

// Len returns the number of colors in the palette.
func (p *Palette) Len() int { return len(p.colors) }

// Contains reports whether c is in the palette.
func (p *Palette) Contains(c Color) bool {
	_, ok := p.index[c]
	return ok
}

// Colors returns a snapshot of the palette in insertion order.
func (p *Palette) Colors() []Color {
	out := make([]Color, len(p.colors))
	copy(out, p.colors)
	return out
}

// Nearest returns the palette color closest to c.
func (p *Palette) Nearest(c Color) Color {
	return c.Nearest(p.colors)
}

func (p *Palette) insert(c Color) {
	if _, ok := p.index[c]; ok {
		return
	}
	p.index[c] = struct{}{}
	p.colors = append(p.colors, c)
}

func (p *Palette) remove(c Color) {
	if _, ok := p.index[c]; !ok {
		return
	}
	delete(p.index, c)
	for i, existing := range p.colors {
		if existing == c {
			p.colors = append(p.colors[:i], p.colors[i+1:]...)
			break
		}
	}
}
