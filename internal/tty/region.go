package tty

import "github.com/lthms/veetty/internal/cap"

// regionSet installs r as the active scroll region, per spec.md §4.E.
// It is idempotent: a no-op when the shadow already reflects r. When the
// terminal has no CSR capability the call is silently dropped — line
// insert/delete handlers fall back to their own capability checks rather
// than assuming a region exists. CSR resets the cursor to the terminal's
// home position on most implementations, so the shadow position is
// invalidated and the cursor is re-parked at (0,0) after emission.
func (t *Tty) regionSet(r Region) {
	if t.sh.region() == r {
		return
	}
	if !t.caps.Has(cap.ChangeScrollRegion) {
		t.sh.setRegion(r)
		return
	}

	t.sink.write(t.caps.String(cap.ChangeScrollRegion, r.Upper, r.Lower))
	t.sh.setRegion(r)
	t.sh.invalidatePosition()
	t.cursorTo(Position{0, 0})
}

// regionClear restores the full-screen scroll region, spec.md §4.E.
func (t *Tty) regionClear() {
	t.regionSet(Region{0, t.sh.sy - 1})
}
