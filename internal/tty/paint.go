package tty

import "github.com/lthms/veetty/internal/grid"

// RedrawRow repaints one row from src in full, the exported entry point
// onto the line painter (component H) for callers that maintain their
// own grid/screen buffer outside this package, e.g. the demo multiplexer
// in SPEC_FULL.md §7.
func (t *Tty) RedrawRow(src LineSource, y int, blankFg, blankBg grid.Color, blankAttr grid.Attr) {
	t.drawLine(src, y, 0, t.sh.sx, blankFg, blankBg, blankAttr)
}

// RedrawRows repaints every row in [top, bottom).
func (t *Tty) RedrawRows(src LineSource, top, bottom int, blankFg, blankBg grid.Color, blankAttr grid.Attr) {
	t.redrawRegion(src, top, bottom, blankFg, blankBg, blankAttr)
}
