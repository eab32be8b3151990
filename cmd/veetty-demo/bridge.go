package main

import (
	"github.com/hinshun/vt10x"

	"github.com/lthms/veetty/internal/grid"
)

// vtLineSource adapts one shellPane's vt10x screen into the
// internal/tty.LineSource interface the engine's line painter consumes,
// per SPEC_FULL.md §7. yOffset shifts the pane's own row numbering into
// the shared terminal's absolute row space (the top pane starts at 0, the
// bottom pane starts after it and the one-row divider).
type vtLineSource struct {
	pane    *shellPane
	yOffset int
}

func (s *vtLineSource) Cell(y, x int) grid.Cell {
	s.pane.vt.Lock()
	defer s.pane.vt.Unlock()

	localY := y - s.yOffset
	if localY < 0 || localY >= s.pane.rows || x < 0 || x >= s.pane.cols {
		return grid.Blank()
	}

	c := s.pane.vt.Cell(x, localY)
	return vtCellToGrid(c)
}

func (s *vtLineSource) Wrapped(y int) bool {
	return false // vt10x does not expose a per-row wrap flag
}

// vt10x mode bits, matching the teacher's pane.go rendering constants.
const (
	vtAttrReverse   = 1 << 0
	vtAttrUnderline = 1 << 1
	vtAttrBold      = 1 << 2
	vtAttrItalic    = 1 << 4
	vtAttrBlink     = 1 << 5
)

func vtCellToGrid(c vt10x.Glyph) grid.Cell {
	var attr grid.Attr
	if c.Mode&vtAttrReverse != 0 {
		attr |= grid.AttrReverse
	}
	if c.Mode&vtAttrUnderline != 0 {
		attr |= grid.AttrUnderscore
	}
	if c.Mode&vtAttrBold != 0 {
		attr |= grid.AttrBright
	}
	if c.Mode&vtAttrItalic != 0 {
		attr |= grid.AttrItalics
	}
	if c.Mode&vtAttrBlink != 0 {
		attr |= grid.AttrBlink
	}

	ch := c.Char
	if ch == 0 {
		ch = ' '
	}

	return grid.Cell{
		Data: grid.NewData(ch),
		Attr: attr,
		Fg:   vtColorToGrid(c.FG),
		Bg:   vtColorToGrid(c.BG),
	}
}

func vtColorToGrid(c vt10x.Color) grid.Color {
	switch {
	case c >= vt10x.DefaultFG:
		return grid.Basic(grid.DefaultColor)
	case c < 8:
		return grid.Basic(int32(c))
	case c < 16:
		return grid.Basic(int32(c))
	case c < 256:
		return grid.Palette(int32(c))
	default:
		v := int32(c)
		return grid.RGB(uint8(v>>16), uint8(v>>8), uint8(v))
	}
}
