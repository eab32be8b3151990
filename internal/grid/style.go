package grid

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PaneStyle bundles the three style layers spec.md §3/§4.K resolve a
// default-coloured cell against: an explicit per-pane override, the
// window's active-pane style, and the window's base style. Expressing
// these as lipgloss.Style lets a caller that already styles its status
// line and borders with lipgloss hand the exact same values to the
// engine instead of maintaining a parallel colour representation.
type PaneStyle struct {
	// PaneOverride is the pane's own explicit style (colgc in spec.md
	// §3), or the zero Style if the pane has none.
	PaneOverride lipgloss.Style
	HasOverride  bool

	WindowActive lipgloss.Style
	WindowBase   lipgloss.Style

	// Active reports whether this pane is the window's active pane,
	// selecting WindowActive over WindowBase.
	Active bool

	// Changed is set by the owning window whenever its style options are
	// edited; ResolveDefault clears it after refreshing its cache.
	Changed bool

	cachedFg, cachedBg Color
	cacheValid         bool
}

// ResolveDefault folds a cell whose fg and/or bg is the "default" sentinel
// against the pane's resolved style, per spec.md §4.K: pane override if
// set, else window-active-style if the pane is active, else window-style.
// A cached resolution is reused until Changed is set, mirroring the
// WINDOW_STYLECHANGED re-fetch trigger in spec.md §4.K.
func (p *PaneStyle) ResolveDefault(c Cell) Cell {
	fg, bg := p.resolved()
	if c.Fg.IsDefault() {
		c.Fg = fg
	}
	if c.Bg.IsDefault() {
		c.Bg = bg
	}
	return c
}

func (p *PaneStyle) resolved() (fg, bg Color) {
	if p.cacheValid && !p.Changed {
		return p.cachedFg, p.cachedBg
	}

	var style lipgloss.Style
	switch {
	case p.HasOverride:
		style = p.PaneOverride
	case p.Active:
		style = p.WindowActive
	default:
		style = p.WindowBase
	}

	fg = colorFrom(style.GetForeground(), true)
	bg = colorFrom(style.GetBackground(), false)

	p.cachedFg, p.cachedBg = fg, bg
	p.cacheValid = true
	p.Changed = false
	return fg, bg
}

// colorFrom converts a lipgloss.TerminalColor into the engine's tagged
// Color representation. A nil/unset colour resolves to the basic-space
// default sentinel so an unstyled pane falls through to the terminal's
// own default colours, per spec.md §4.K.
func colorFrom(c lipgloss.TerminalColor, fg bool) Color {
	if c == nil {
		return Basic(DefaultColor)
	}

	switch v := c.(type) {
	case lipgloss.NoColor:
		return Basic(DefaultColor)
	case lipgloss.ANSIColor:
		n := int32(v)
		if n < 16 {
			return Basic(n)
		}
		return Palette(n)
	case lipgloss.Color:
		return parseColorString(string(v))
	case lipgloss.AdaptiveColor:
		return parseColorString(v.Dark)
	case lipgloss.CompleteColor:
		return parseColorString(v.TrueColor)
	default:
		return Basic(DefaultColor)
	}
}

// parseColorString accepts either a "#rrggbb" hex literal or a bare
// decimal ANSI/256 index, the two forms lipgloss.Color strings take.
func parseColorString(s string) Color {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		r, err1 := strconv.ParseUint(s[1:3], 16, 8)
		g, err2 := strconv.ParseUint(s[3:5], 16, 8)
		b, err3 := strconv.ParseUint(s[5:7], 16, 8)
		if err1 == nil && err2 == nil && err3 == nil {
			return RGB(uint8(r), uint8(g), uint8(b))
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 16 {
			return Basic(int32(n))
		}
		return Palette(int32(n))
	}
	return Basic(DefaultColor)
}
