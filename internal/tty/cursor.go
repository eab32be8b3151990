package tty

import "github.com/lthms/veetty/internal/cap"

// cursorTo moves the physical cursor to (cx, cy), choosing the cheapest
// sequence the terminal's capabilities allow, per spec.md §4.D. When the
// shadow already points at the target nothing is emitted. The
// shadow is always left pointing at the requested position afterward;
// when the current shadow position is unknown (Position.IsUnknown), the
// fallback absolute CUP/HOME path is taken unconditionally since no
// relative primitive can be trusted.
//
// Priority ladder (spec.md §4.D):
//  1. target is (0,0): HOME, if present.
//  2. target is (0, shadow.Y+1) and shadow.Y+1 is not past the scroll
//     region's lower edge: "\r\n".
//  3. same row: CR (if target.X==0), else a single CUB1/CUF1 step (if
//     |delta|==1), else HPA, else the multi-step ParmLeft/ParmRight, else
//     fall through to the absolute case.
//  4. same column: a single CUU1/CUD1 step (if |delta|==1 and the move
//     does not cross a scroll-region edge), else VPA if available or if
//     the move crosses the scroll region (VPA is mandatory there — a
//     relative step would be clamped by the terminal at the region
//     boundary instead of leaving it), else ParmUp/ParmDown, else fall
//     through.
//  5. fallback: absolute CUP.
func (t *Tty) cursorTo(target Position) {
	if t.sh.position() == target {
		return
	}
	t.moveCursor(target)
	t.sh.setPosition(target)
}

func (t *Tty) moveCursor(target Position) {
	c := t.caps
	cur := t.sh.position()

	if cur.IsUnknown() {
		t.emitAbsolute(target)
		return
	}

	if target.X == 0 && target.Y == 0 && c.Has(cap.CursorHome) {
		t.sink.write(c.String(cap.CursorHome))
		return
	}

	if target.X == 0 && target.Y == cur.Y+1 && !t.crossesRegionLower(cur.Y, target.Y) {
		t.sink.writeString("\r\n")
		return
	}

	if target.Y == cur.Y {
		if t.moveSameRow(cur, target) {
			return
		}
	} else if target.X == cur.X {
		if t.moveSameColumn(cur, target) {
			return
		}
	}

	t.emitAbsolute(target)
}

func (t *Tty) moveSameRow(cur, target Position) bool {
	c := t.caps
	if target.X == 0 {
		t.sink.writeString("\r")
		return true
	}
	change := target.X - cur.X
	switch {
	case change == 1 && c.Has(cap.CursorRight1):
		t.sink.write(c.String(cap.CursorRight1))
		return true
	case change == -1 && c.Has(cap.CursorLeft1):
		// Moving left (decreasing column) is a backward motion: CUB is
		// the single-step backward primitive, used when change < 0.
		t.sink.write(c.String(cap.CursorLeft1))
		return true
	case c.Has(cap.ColumnAddress):
		t.sink.write(c.String(cap.ColumnAddress, target.X))
		return true
	case change > 0 && c.Has(cap.ParmRight):
		t.sink.write(c.String(cap.ParmRight, change))
		return true
	case change < 0 && c.Has(cap.ParmLeft):
		t.sink.write(c.String(cap.ParmLeft, -change))
		return true
	}
	return false
}

func (t *Tty) moveSameColumn(cur, target Position) bool {
	c := t.caps
	change := target.Y - cur.Y
	crosses := t.crossesRegionEdge(cur.Y, target.Y)

	if !crosses && change == 1 && c.Has(cap.CursorDown1) {
		t.sink.write(c.String(cap.CursorDown1))
		return true
	}
	if !crosses && change == -1 && c.Has(cap.CursorUp1) {
		t.sink.write(c.String(cap.CursorUp1))
		return true
	}
	if c.Has(cap.RowAddress) {
		// VPA is mandatory once the move crosses the scroll region: a
		// relative step would scroll the region instead of just moving.
		t.sink.write(c.String(cap.RowAddress, target.Y))
		return true
	}
	if crosses {
		return false
	}
	if change > 0 && c.Has(cap.ParmDown) {
		t.sink.write(c.String(cap.ParmDown, change))
		return true
	}
	if change < 0 && c.Has(cap.ParmUp) {
		t.sink.write(c.String(cap.ParmUp, -change))
		return true
	}
	return false
}

func (t *Tty) emitAbsolute(target Position) {
	c := t.caps
	if target.X == 0 && target.Y == 0 && c.Has(cap.CursorHome) {
		t.sink.write(c.String(cap.CursorHome))
		return
	}
	t.sink.write(c.String(cap.CursorAddress, target.Y, target.X))
}

// crossesRegionLower reports whether stepping from y to y+1 runs past the
// scroll region's lower edge, in which case "\r\n" cannot be trusted to
// land the cursor at the intended row (it may scroll the region instead).
func (t *Tty) crossesRegionLower(from, to int) bool {
	r := t.sh.region()
	if r.IsUnknown() {
		return false
	}
	return from == r.Lower && to > r.Lower
}

// crossesRegionEdge reports whether a vertical move from `from` to `to`
// crosses either boundary of the active scroll region.
func (t *Tty) crossesRegionEdge(from, to int) bool {
	r := t.sh.region()
	if r.IsUnknown() {
		return false
	}
	return (from <= r.Lower && to > r.Lower) || (from >= r.Upper && to < r.Upper) ||
		(from == r.Upper && to < r.Upper) || (from == r.Lower && to > r.Lower)
}
