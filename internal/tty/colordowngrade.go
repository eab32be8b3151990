package tty

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lthms/veetty/internal/grid"
)

// downgradeColor projects c into the colour space the terminal actually
// supports, per spec.md §4.F's colour downgrade chain: 24-bit RGB falls
// to a 256-palette index when the terminal lacks true colour, then to one
// of the 16 ANSI colours when it lacks even a 256-entry palette, then to
// the 8-colour + bright-attribute encoding for terminals with no palette
// at all. trueColor/maxColors describe the target terminal's declared
// depth.
//
// Every fold below normalizes its result to the 0-7 basic range plus a
// "bright" bool: whether that bright bit becomes an aixterm 8-15 parameter
// or a BOLD attribute is a terminal-depth question decided where the
// colour is actually emitted (emitBasicColor), not here — folding the
// offset into the colour value here as well as there is how two functions
// each silently add +8 and a colour index walks off the end of the valid
// SGR range.
func downgradeColor(c grid.Color, trueColor bool, maxColors int) (grid.Color, bool) {
	bright := false

	if c.Space == grid.ColorRGB && !trueColor {
		c = rgbTo256(c)
	}
	if c.Space == grid.ColorPalette256 && maxColors < 256 {
		c, bright = palette256To16(c)
	}
	if c.Space == grid.ColorBasic && c.Value > grid.DefaultColor && c.Value < 16 && maxColors < 16 {
		c, bright = basic16To8(c)
	}
	return c, bright
}

// rgbTo256 finds the nearest 256-palette entry to c by CIE94 colour
// distance in Lab space, using go-colorful the way a perceptual
// nearest-colour search is conventionally done in Go.
func rgbTo256(c grid.Color) grid.Color {
	r, g, b := c.RGB255()
	target := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}

	best := 16
	bestDist := 1e9
	for i := 16; i < 256; i++ {
		cr, cg, cb := palette256RGB(i)
		cand := colorful.Color{R: float64(cr) / 255, G: float64(cg) / 255, B: float64(cb) / 255}
		d := target.DistanceCIE94(cand)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return grid.Palette(int32(best))
}

// palette256RGB returns the conventional xterm 256-colour palette's RGB
// value for index i (the 6x6x6 colour cube for 16-231, a 24-step
// greyscale ramp for 232-255).
func palette256RGB(i int) (r, g, b uint8) {
	if i >= 232 {
		v := uint8(8 + (i-232)*10)
		return v, v, v
	}
	i -= 16
	levels := [6]uint8{0, 95, 135, 175, 215, 255}
	return levels[(i/36)%6], levels[(i/6)%6], levels[i%6]
}

// fold16 maps a 256-palette index to its nearest entry among the 16 ANSI
// colours by the same colour-cube arithmetic used above, returning the
// basic-space 0-7 value and whether the nearer match needed the bright
// variant. This table is small, fixed, and specific to the 16-colour
// fallback this engine performs; no example library in the corpus owns
// this exact projection, so it is written out directly.
var fold16 = [16]struct{ r, g, b uint8 }{
	{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
	{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
	{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
	{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
}

// palette256To16 finds the nearest of the 16 ANSI colours to c and
// normalizes it to a base 0-7 index plus whether it needed the bright
// variant. Always 0-7: see downgradeColor's doc comment for why the
// aixterm/BOLD offset itself is not applied here.
func palette256To16(c grid.Color) (grid.Color, bool) {
	r, g, b := palette256RGB(int(c.Value))
	best := 0
	bestDist := -1
	for i, e := range fold16 {
		dr, dg, db := int(r)-int(e.r), int(g)-int(e.g), int(b)-int(e.b)
		d := dr*dr + dg*dg + db*db
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 8 {
		return grid.Basic(int32(best)), false
	}
	return grid.Basic(int32(best - 8)), true
}

// basic16To8 folds a basic colour in the 9-15 bright range to its
// base 1-7 index plus the bright bit, for terminals that declare fewer
// than 16 colours (downgradeColor only calls this when maxColors < 16,
// where there is no native 8-15 parameter range to pass the value through
// unmodified — the bright bit must always be pulled out here).
func basic16To8(c grid.Color) (grid.Color, bool) {
	return grid.Basic(c.Value - 8), true
}
