package tty

import (
	"github.com/lthms/veetty/internal/cap"
	"github.com/lthms/veetty/internal/grid"
)

// LineSource supplies the cells of one row, in column order, for drawLine
// and redrawRegion (spec.md §4.H). Implementations are expected to be
// backed by whatever grid/screen buffer the caller maintains; this
// package only consumes it.
type LineSource interface {
	Cell(y, x int) grid.Cell
	Wrapped(y int) bool
}

// drawLine repaints columns [from, to) of row y, per spec.md §4.H. It
// positions the cursor at the start of the run, then walks columns left
// to right, using a bulk erase (EL) instead of per-cell space writes
// whenever the run reaches the right edge, its tail is uniformly blank and
// the terminal's BCE behaviour (real or faked) makes that safe; "blank" is
// judged against blankFg/blankBg/blankAttr, the colours/attributes a
// cleared cell would carry.
func (t *Tty) drawLine(src LineSource, y, from, to int, blankFg, blankBg grid.Color, blankAttr grid.Attr) {
	end := to
	for end > from && src.Cell(y, end-1).Clear(blankFg, blankBg, blankAttr) {
		end--
	}

	if end < to && to >= t.sh.sx && t.canBulkErase(blankBg) {
		t.paintRun(src, y, from, end)
		t.cursorTo(Position{X: end, Y: y})
		t.eraseToEOL(blankFg, blankBg, blankAttr)
		return
	}

	t.paintRun(src, y, from, to)
}

func (t *Tty) paintRun(src LineSource, y, from, to int) {
	if from >= to {
		return
	}
	t.cursorTo(Position{X: from, Y: y})
	for x := from; x < to; {
		c := src.Cell(y, x)
		t.cellPut(c)
		step := c.Data.Width
		if step < 1 {
			step = 1
		}
		x += step
	}
}

// canBulkErase reports whether a bulk erase primitive can be trusted to
// paint the cleared tail with blankBg, per spec.md §4.F/§4.H's
// Background-Colour-Erase handling: either blankBg is the default
// background, which is what EL/ECH leave behind anyway, or the terminal
// advertises real bce and is currently painting with blankBg. Otherwise
// the caller has to fall back to "fake-BCE" space painting.
func (t *Tty) canBulkErase(blankBg grid.Color) bool {
	if blankBg.IsDefault() {
		return true
	}
	return t.caps.Flag(cap.BackColorErase) && t.sh.cell.Bg == blankBg
}

// eraseToEOL clears from the cursor's current column to the end of the
// line, using EL when it is safe to, or synthesizing the same visual
// effect by painting spaces one at a time when it is not ("fake-BCE",
// spec.md §4.H). reconcileAttr is invoked first so the erased cells carry
// blankFg/blankBg rather than whatever attributes were active before.
func (t *Tty) eraseToEOL(blankFg, blankBg grid.Color, blankAttr grid.Attr) {
	t.reconcileAttr(grid.Cell{Fg: blankFg, Bg: blankBg, Attr: blankAttr})

	if t.canBulkErase(blankBg) && t.caps.Has(cap.ClrEol) {
		t.sink.write(t.caps.String(cap.ClrEol))
		return
	}

	cur := t.sh.position()
	blank := grid.Cell{Data: grid.NewData(' '), Fg: blankFg, Bg: blankBg, Attr: blankAttr}
	for x := cur.X; x < t.sh.sx; x++ {
		t.cellPut(blank)
	}
}

// redrawRegion repaints every row in [top, bottom) in full, per spec.md
// §4.H, used after a resize or any operation that invalidates more than
// one line's shadow (e.g. a scroll-region change).
func (t *Tty) redrawRegion(src LineSource, top, bottom int, blankFg, blankBg grid.Color, blankAttr grid.Attr) {
	for y := top; y < bottom; y++ {
		t.drawLine(src, y, 0, t.sh.sx, blankFg, blankBg, blankAttr)
	}
}

// wrapPreserved reports whether the natural line-wrap a row ended with
// before some mutation still holds afterward, the invariant spec.md §8
// calls out as directly testable: a row's Wrapped bit must survive any
// operation that does not touch that row's last cell.
func wrapPreserved(before, after grid.Cell) bool {
	return before.Wrapped == after.Wrapped
}
