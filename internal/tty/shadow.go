package tty

import "github.com/lthms/veetty/internal/grid"

// unknownCoord is the sentinel marking a shadow cursor/region coordinate
// as unresolved, per spec.md §9 ("use an explicit 'unknown' tag rather
// than a magic max-value integer"). It is never a legal column/row.
const unknownCoord = -1

// Position is a zero-based (column, row) pair. IsUnknown reports whether
// either axis carries the sentinel.
type Position struct {
	X, Y int
}

// Unknown is the sentinel Position meaning "the real value is not known
// and any move to it must use an absolute primitive."
var Unknown = Position{X: unknownCoord, Y: unknownCoord}

func (p Position) IsUnknown() bool { return p.X == unknownCoord || p.Y == unknownCoord }

// Region is the scroll region shadow, spec.md §3 rupper/rlower.
type Region struct {
	Upper, Lower int
}

// UnknownRegion is the sentinel Region.
var UnknownRegion = Region{Upper: unknownCoord, Lower: unknownCoord}

func (r Region) IsUnknown() bool { return r.Upper == unknownCoord || r.Lower == unknownCoord }

// Contains reports whether row y lies within the region (inclusive).
func (r Region) Contains(y int) bool { return !r.IsUnknown() && y >= r.Upper && y <= r.Lower }

// ModeFlag is the terminal mode bitset of spec.md §3.
type ModeFlag uint16

const (
	ModeCursor ModeFlag = 1 << iota
	ModeBlinking
	ModeKeypadApp
	ModeBracketPaste
	ModeMouseStandard
	ModeMouseButton
	ModeMouseAny
	ModeMouseSGR
	ModeFocusEvents
)

func (m ModeFlag) Has(f ModeFlag) bool { return m&f == f }

// mouseModeMask isolates the mutually-exclusive tracking-type bits.
const mouseModeMask = ModeMouseStandard | ModeMouseButton | ModeMouseAny

// flag is the Tty lifecycle bitset of spec.md §3.
type flag uint16

const (
	flagStarted flag = 1 << iota
	flagOpened
	flagUTF8
	flagNoCursor
	flagFreeze
	flagTimer
	flagFocus
	flagEarlyWrap
)

func (f flag) has(v flag) bool { return f&v == v }

// shadow is the cached terminal state described in spec.md §3: cursor,
// scroll region, size, current cell, mode, cursor colour/style, and the
// lifecycle flags. It is a passive record; every component that mutates
// it is documented at the call site, not here.
type shadow struct {
	sx, sy         int
	cx, cy         int // unknownCoord when unresolved
	rupper, rlower int // unknownCoord when unresolved
	cell           grid.Cell
	mode           ModeFlag
	cursorColor    string
	cursorStyle    int
	flags          flag
}

func newShadow(sx, sy int) *shadow {
	return &shadow{
		sx: sx, sy: sy,
		cx: unknownCoord, cy: unknownCoord,
		rupper: unknownCoord, rlower: unknownCoord,
		cell: grid.Blank(),
		mode: ModeCursor,
	}
}

func (s *shadow) position() Position { return Position{X: s.cx, Y: s.cy} }

func (s *shadow) region() Region { return Region{Upper: s.rupper, Lower: s.rlower} }

func (s *shadow) setPosition(p Position) { s.cx, s.cy = p.X, p.Y }

func (s *shadow) setRegion(r Region) { s.rupper, s.rlower = r.Upper, r.Lower }

func (s *shadow) invalidatePosition() { s.cx, s.cy = unknownCoord, unknownCoord }

func (s *shadow) invalidateRegion() { s.rupper, s.rlower = unknownCoord, unknownCoord }
