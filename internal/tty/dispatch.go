package tty

import (
	"github.com/lthms/veetty/internal/cap"
	"github.com/lthms/veetty/internal/grid"
)

// TtyCtx carries everything a command handler needs beyond the Tty
// itself: where it applies (cursor position, scroll region) and what it
// paints with, per spec.md §4.I. Higher layers build one per command
// rather than the engine reaching back into a grid it doesn't own.
type TtyCtx struct {
	// OCx, OCy is the cell the command targets, in absolute screen
	// coordinates.
	OCx, OCy int

	// Num is the repeat count for commands that take one (insert/delete
	// char/line).
	Num int

	// Cell is the payload for cmd_cell / cmd_utf8character, already
	// resolved against pane defaults.
	Cell grid.Cell

	// Str is the raw payload for cmd_rawstring and the clipboard payload
	// for cmd_setselection.
	Str []byte

	// BlankFg/BlankBg/BlankAttr describe the cell a clear/erase command
	// paints with, per spec.md §4.H's bulk-erase colour.
	BlankFg, BlankBg Color
	BlankAttr        grid.Attr

	// WindowID identifies which window this command's pane belongs to, so
	// Session.Write can skip clients that are attached but currently
	// looking at a different window (spec.md §4.J).
	WindowID int

	// FullWidth reports whether the pane issuing this command spans the
	// full width of the physical terminal. ICH/DCH/IL/DL shift the whole
	// terminal row or scroll region, not just the pane's columns, so a
	// narrower pane must never reach for them: doing so would corrupt
	// whatever sits beside it on the same row (spec.md §4.I, §8 scenario
	// 5). Only the caller that owns the pane layout knows this.
	FullWidth bool

	Source LineSource
}

// Color is an alias kept local to this package boundary so command
// handlers read naturally as "Tty-side colour", while staying the exact
// same type as grid.Color.
type Color = grid.Color

// Dispatch applies one named command against ctx, per spec.md §4.I. Every
// handler positions the cursor itself; none assume the shadow already
// points at ctx.OCx/OCy.
func (t *Tty) Dispatch(cmdName string, ctx TtyCtx) {
	switch cmdName {
	case "insertcharacter":
		t.cmdInsertCharacter(ctx)
	case "deletecharacter":
		t.cmdDeleteCharacter(ctx)
	case "clearcharacter":
		t.cmdClearCharacter(ctx)
	case "insertline":
		t.cmdInsertLine(ctx)
	case "deleteline":
		t.cmdDeleteLine(ctx)
	case "clearline":
		t.cmdClearLine(ctx)
	case "clearendofline":
		t.cmdClearEndOfLine(ctx)
	case "clearstartofline":
		t.cmdClearStartOfLine(ctx)
	case "reverseindex":
		t.cmdReverseIndex(ctx)
	case "linefeed":
		t.cmdLinefeed(ctx)
	case "clearendofscreen":
		t.cmdClearEndOfScreen(ctx)
	case "clearstartofscreen":
		t.cmdClearStartOfScreen(ctx)
	case "clearscreen":
		t.cmdClearScreen(ctx)
	case "alignmenttest":
		t.cmdAlignmentTest(ctx)
	case "cell":
		t.cmdCell(ctx)
	case "utf8character":
		t.cmdCell(ctx)
	case "rawstring":
		t.WriteRaw(ctx.Str)
	case "setselection":
		t.setSelection(ctx.Str)
	}
}

// canUseRowPrimitive reports whether a command may reach for a native
// primitive that shifts an entire terminal row (ICH/DCH/IL/DL): only when
// the issuing pane spans the full terminal width (spec.md §4.I dispatch
// table), and only when the blanks that primitive paints would carry the
// right background (the same real-or-fake BCE trust canBulkErase already
// judges for EL/ECH).
func (t *Tty) canUseRowPrimitive(ctx TtyCtx) bool {
	return ctx.FullWidth && t.canBulkErase(ctx.BlankBg)
}

func (t *Tty) cmdInsertCharacter(ctx TtyCtx) {
	t.cursorTo(Position{ctx.OCx, ctx.OCy})
	n := max1(ctx.Num)
	switch {
	case !t.canUseRowPrimitive(ctx):
		t.redrawFallback(ctx)
		return
	case n == 1 && t.caps.Has(cap.InsertChar1):
		t.sink.write(t.caps.String(cap.InsertChar1))
	case t.caps.Has(cap.InsertChar):
		t.sink.write(t.caps.String(cap.InsertChar, n))
	default:
		t.redrawFallback(ctx)
		return
	}
	t.sh.invalidatePosition()
}

func (t *Tty) cmdDeleteCharacter(ctx TtyCtx) {
	t.cursorTo(Position{ctx.OCx, ctx.OCy})
	n := max1(ctx.Num)
	switch {
	case !t.canUseRowPrimitive(ctx):
		t.redrawFallback(ctx)
		return
	case n == 1 && t.caps.Has(cap.DeleteChar1):
		t.sink.write(t.caps.String(cap.DeleteChar1))
	case t.caps.Has(cap.DeleteChar):
		t.sink.write(t.caps.String(cap.DeleteChar, n))
	default:
		t.redrawFallback(ctx)
	}
}

// cmdClearCharacter erases n characters starting at ctx.OCx without
// shifting the rest of the line, using ECH when available and otherwise
// painting n blank cells directly (spec.md §4.I).
func (t *Tty) cmdClearCharacter(ctx TtyCtx) {
	t.cursorTo(Position{ctx.OCx, ctx.OCy})
	n := max1(ctx.Num)
	t.reconcileAttr(grid.Cell{Fg: ctx.BlankFg, Bg: ctx.BlankBg, Attr: ctx.BlankAttr})
	if t.caps.Has(cap.EraseChars) && t.canBulkErase(ctx.BlankBg) {
		t.sink.write(t.caps.String(cap.EraseChars, n))
		return
	}
	blank := grid.Cell{Data: grid.NewData(' '), Fg: ctx.BlankFg, Bg: ctx.BlankBg, Attr: ctx.BlankAttr}
	for i := 0; i < n; i++ {
		t.cellPut(blank)
	}
}

func (t *Tty) cmdInsertLine(ctx TtyCtx) {
	if !t.canUseRowPrimitive(ctx) {
		t.redrawFallback(ctx)
		return
	}
	t.ensureRegionFor(ctx.OCy)
	t.cursorTo(Position{0, ctx.OCy})
	n := max1(ctx.Num)
	switch {
	case n == 1 && t.caps.Has(cap.InsertLine1):
		t.sink.write(t.caps.String(cap.InsertLine1))
	case t.caps.Has(cap.InsertLine):
		t.sink.write(t.caps.String(cap.InsertLine, n))
	default:
		t.redrawFallback(ctx)
		return
	}
	t.sh.invalidatePosition()
}

func (t *Tty) cmdDeleteLine(ctx TtyCtx) {
	if !t.canUseRowPrimitive(ctx) {
		t.redrawFallback(ctx)
		return
	}
	t.ensureRegionFor(ctx.OCy)
	t.cursorTo(Position{0, ctx.OCy})
	n := max1(ctx.Num)
	switch {
	case n == 1 && t.caps.Has(cap.DeleteLine1):
		t.sink.write(t.caps.String(cap.DeleteLine1))
	case t.caps.Has(cap.DeleteLine):
		t.sink.write(t.caps.String(cap.DeleteLine, n))
	default:
		t.redrawFallback(ctx)
		return
	}
	t.sh.invalidatePosition()
}

// ensureRegionFor narrows the scroll region to [y, rlower] when the
// shadow's region doesn't already start at y, so insert/delete line only
// shifts rows below the target, per spec.md §4.E/§4.I interaction.
func (t *Tty) ensureRegionFor(y int) {
	r := t.sh.region()
	if r.IsUnknown() || r.Upper != y {
		lower := t.sh.sy - 1
		if !r.IsUnknown() {
			lower = r.Lower
		}
		t.regionSet(Region{y, lower})
	}
}

func (t *Tty) cmdClearLine(ctx TtyCtx) {
	t.drawLine(ctx.Source, ctx.OCy, 0, t.sh.sx, ctx.BlankFg, ctx.BlankBg, ctx.BlankAttr)
}

func (t *Tty) cmdClearEndOfLine(ctx TtyCtx) {
	t.cursorTo(Position{ctx.OCx, ctx.OCy})
	t.eraseToEOL(ctx.BlankFg, ctx.BlankBg, ctx.BlankAttr)
}

func (t *Tty) cmdClearStartOfLine(ctx TtyCtx) {
	if t.caps.Has(cap.ClrBol) && t.canBulkErase(ctx.BlankBg) {
		t.cursorTo(Position{ctx.OCx, ctx.OCy})
		t.reconcileAttr(grid.Cell{Fg: ctx.BlankFg, Bg: ctx.BlankBg, Attr: ctx.BlankAttr})
		t.sink.write(t.caps.String(cap.ClrBol))
		return
	}
	t.drawLine(ctx.Source, ctx.OCy, 0, ctx.OCx+1, ctx.BlankFg, ctx.BlankBg, ctx.BlankAttr)
}

// cmdReverseIndex moves the cursor up one row, scrolling the region down
// when already at its top, per spec.md §4.I (the RI/SR primitive).
func (t *Tty) cmdReverseIndex(ctx TtyCtx) {
	r := t.sh.region()
	top := 0
	if !r.IsUnknown() {
		top = r.Upper
	}
	if ctx.OCy != top {
		t.cursorTo(Position{ctx.OCx, ctx.OCy - 1})
		return
	}
	t.cursorTo(Position{0, top})
	if t.caps.Has(cap.ScrollReverse) {
		t.sink.write(t.caps.String(cap.ScrollReverse))
	} else {
		t.redrawFallback(ctx)
	}
}

// cmdLinefeed moves the cursor down one row, scrolling the region up when
// already at its bottom, per spec.md §4.I.
func (t *Tty) cmdLinefeed(ctx TtyCtx) {
	r := t.sh.region()
	bottom := t.sh.sy - 1
	if !r.IsUnknown() {
		bottom = r.Lower
	}
	if ctx.OCy != bottom {
		t.cursorTo(Position{ctx.OCx, ctx.OCy + 1})
		return
	}
	t.cursorTo(Position{0, bottom})
	if t.caps.Has(cap.ScrollForward) {
		t.sink.write(t.caps.String(cap.ScrollForward))
	} else {
		t.sink.writeString("\n")
	}
}

func (t *Tty) cmdClearEndOfScreen(ctx TtyCtx) {
	t.cursorTo(Position{ctx.OCx, ctx.OCy})
	t.reconcileAttr(grid.Cell{Fg: ctx.BlankFg, Bg: ctx.BlankBg, Attr: ctx.BlankAttr})
	if t.caps.Has(cap.ClrEos) && t.canBulkErase(ctx.BlankBg) {
		t.sink.write(t.caps.String(cap.ClrEos))
		return
	}
	t.eraseToEOL(ctx.BlankFg, ctx.BlankBg, ctx.BlankAttr)
	t.redrawRegion(ctx.Source, ctx.OCy+1, t.sh.sy, ctx.BlankFg, ctx.BlankBg, ctx.BlankAttr)
}

func (t *Tty) cmdClearStartOfScreen(ctx TtyCtx) {
	t.redrawRegion(ctx.Source, 0, ctx.OCy, ctx.BlankFg, ctx.BlankBg, ctx.BlankAttr)
	t.drawLine(ctx.Source, ctx.OCy, 0, ctx.OCx+1, ctx.BlankFg, ctx.BlankBg, ctx.BlankAttr)
}

func (t *Tty) cmdClearScreen(ctx TtyCtx) {
	t.cursorTo(Position{0, 0})
	t.reconcileAttr(grid.Cell{Fg: ctx.BlankFg, Bg: ctx.BlankBg, Attr: ctx.BlankAttr})
	if t.caps.Has(cap.ClearScreen) && t.canBulkErase(ctx.BlankBg) {
		t.sink.write(t.caps.String(cap.ClearScreen))
		t.sh.invalidatePosition()
		return
	}
	t.redrawRegion(ctx.Source, 0, t.sh.sy, ctx.BlankFg, ctx.BlankBg, ctx.BlankAttr)
}

// cmdAlignmentTest fills the screen with 'E', the DECALN primitive's
// effect (spec.md §4.I), used by terminal calibration and tests that
// exercise every cell of a redraw.
func (t *Tty) cmdAlignmentTest(ctx TtyCtx) {
	t.cursorTo(Position{0, 0})
	blank := grid.Cell{Data: grid.NewData('E')}
	t.reconcileAttr(blank)
	for y := 0; y < t.sh.sy; y++ {
		t.cursorTo(Position{0, y})
		for x := 0; x < t.sh.sx; x++ {
			t.cellPut(blank)
		}
	}
}

// cmdCell writes a single cell (or UTF-8 grapheme) at ctx.OCx/OCy: it
// positions the cursor there and hands the cell to cellPut, which clamps
// the shadow column at the right edge on early-wrap terminals and for the
// lower-right cell. It does not rewind to re-emit the previous tail cell
// near the right edge, and it never touches the caller's grid or its
// Wrapped bits.
func (t *Tty) cmdCell(ctx TtyCtx) {
	t.cursorTo(Position{ctx.OCx, ctx.OCy})
	t.cellPut(ctx.Cell)
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// redrawFallback repaints the whole line/region a missing capability
// would otherwise have shifted, the conservative fallback spec.md §4.I
// prescribes for terminals too limited to have a dedicated primitive.
func (t *Tty) redrawFallback(ctx TtyCtx) {
	if ctx.Source == nil {
		return
	}
	t.drawLine(ctx.Source, ctx.OCy, 0, t.sh.sx, ctx.BlankFg, ctx.BlankBg, ctx.BlankAttr)
}
