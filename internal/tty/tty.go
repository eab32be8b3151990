// Package tty implements the differential terminal output engine: the
// shadow model of one physical terminal's state plus the command
// handlers that reconcile it with a pane's grid using the fewest bytes
// the terminal's declared capabilities allow. See SPEC_FULL.md §5.
package tty

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/lthms/veetty/internal/cap"
	"github.com/lthms/veetty/internal/grid"
)

// ErrNotATTY is returned by New when the given fd is not a terminal,
// spec.md §7.
var ErrNotATTY = errors.New("tty: not a terminal")

// Tty owns one output fd and its shadow state (spec.md §3).
type Tty struct {
	termname string
	caps     cap.Capabilities

	fd int
	f  *os.File // nil until Open succeeds; used for raw teardown writes

	sink *sink
	sh   *shadow

	pendingFlags *TermFlags // set by SetTermFlags, applied at Open

	savedState *term.State // line discipline saved by Start, restored by Stop
}

// New constructs a Tty bound to fd, without resolving capabilities yet.
// Mirrors spec.md §4.L "init": fails with ErrNotATTY if fd is not a
// terminal, stores termname/fd, zero-initializes the shadow.
func New(fd int, termname string) (*Tty, error) {
	if !term.IsTerminal(fd) {
		return nil, ErrNotATTY
	}
	return &Tty{
		fd:       fd,
		f:        os.NewFile(uintptr(fd), "tty"),
		termname: termname,
		sh:       newShadow(80, 24),
	}, nil
}

// Open resolves capabilities for termname via the cap package (spec.md
// §4.L "open"). On failure it tears down via Close and returns the
// wrapped error. Capability overrides requested through SetTermFlags
// before Open are layered onto the resolved table.
func (t *Tty) Open() error {
	ti, err := cap.LoadTerminfo(t.termname)
	if err != nil {
		_ = t.Close()
		return err
	}
	t.caps = ti
	t.applyTermFlags(ti)

	w, h, err := term.GetSize(t.fd)
	if err == nil && w > 0 && h > 0 {
		t.sh.sx, t.sh.sy = w, h
	}

	t.sink = newSink(t.f)
	t.sh.flags |= flagOpened
	if isEarlyWrapTerm(t.termname) {
		t.sh.flags |= flagEarlyWrap
	}
	return nil
}

// TermFlags carries user-asserted capability overrides applied at Open,
// spec.md §3's "term_flags: user-asserted terminal capability overrides
// (e.g. force-256)".
type TermFlags struct {
	Force256       bool
	ForceTrueColor bool
	UTF8           bool
}

// SetTermFlags records overrides applied at the next Open, or immediately
// if the terminal is already open.
func (t *Tty) SetTermFlags(f TermFlags) {
	if f.UTF8 {
		t.sh.flags |= flagUTF8
	}
	t.pendingFlags = &f
	if ti, ok := t.caps.(*cap.Terminfo); ok {
		t.applyTermFlags(ti)
	}
}

func (t *Tty) applyTermFlags(ti *cap.Terminfo) {
	if t.pendingFlags == nil {
		return
	}
	if t.pendingFlags.Force256 {
		ti.ForceNumber(cap.MaxColors, 256)
	}
	if t.pendingFlags.ForceTrueColor {
		ti.ForceFlag(cap.TCTrueColor, true)
	}
}

// isEarlyWrapTerm reports TERM_EARLYWRAP (spec.md §9): a terminal that
// wraps at column sx-1 rather than after writing into it. The "screen"
// and "tmux" terminfo families are the well-known early-wrap terminals.
func isEarlyWrapTerm(termname string) bool {
	return hasPrefix(termname, "screen") || hasPrefix(termname, "tmux")
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Start enters alternate-screen rendering mode, per spec.md §4.L "start":
// saves line discipline, sets raw-ish termios, emits SMCUP/SGR0/RMKX/
// ENACS/CLEAR/CNORM, disables mouse modes, enables focus events if
// configured, sentinels cursor/region, marks STARTED.
func (t *Tty) Start() error {
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		slog.Debug("tty: MakeRaw failed, continuing without raw mode", "error", err)
	} else {
		t.savedState = state
	}

	t.sink.write(t.caps.String(cap.EnterCA))
	t.sink.writeString(sgrReset)
	t.sink.write(t.caps.String(cap.KeypadLocal))
	if t.caps.Has(cap.EnterACS) {
		t.sink.write(t.caps.String("enacs"))
	}
	t.sink.write(t.caps.String(cap.ClearScreen))
	t.sink.write(t.caps.String(cap.CursorNormal))
	t.sink.writeString(mouseDisableAll)
	if t.sh.flags.has(flagFocus) {
		t.sink.writeString(seqFocusEnable)
	}

	t.sh.mode = ModeCursor
	t.sh.invalidatePosition()
	t.sh.invalidateRegion()
	t.sh.cell = grid.Blank()
	t.sh.flags |= flagStarted
	slog.Debug("tty: started", "state", t.fmtState())
	return nil
}

// Stop leaves alternate-screen mode and restores line discipline, per
// spec.md §4.L "stop". ioctl/tcsetattr failures are tolerated silently
// (spec.md §7): the subsystem never kills the server because a tty went
// away. Because the buffered path may no longer be safe once we're
// tearing down, the whole sequence is written in one call to raw.
func (t *Tty) Stop() {
	if !t.sh.flags.has(flagStarted) {
		return
	}

	if t.savedState != nil {
		if err := term.Restore(t.fd, t.savedState); err != nil {
			slog.Debug("tty: restore line discipline failed", "error", err)
		}
	}

	var out []byte
	out = append(out, t.caps.String(cap.ChangeScrollRegion, 0, t.sh.sy-1)...)
	if t.sh.cell.Attr.Has(grid.AttrCharsetACS) {
		out = append(out, t.caps.String(cap.ExitACS)...)
	}
	out = append(out, sgrReset...)
	out = append(out, t.caps.String(cap.KeypadLocal)...)
	out = append(out, t.caps.String(cap.ClearScreen)...)
	out = append(out, cursorStyleReset(t.caps)...)
	out = append(out, seqBracketPasteDisable...)
	out = append(out, '\r')
	out = append(out, t.caps.String(cap.CursorNormal)...)
	out = append(out, mouseDisableAll...)
	out = append(out, seqFocusDisable...)
	out = append(out, t.caps.String(cap.ExitCA)...)

	raw(t.f, out)

	t.sh.flags &^= flagStarted
}

// Close tears down the fd-owning resources (spec.md §4.L, §5 "Resource
// discipline").
func (t *Tty) Close() error {
	if t.f != nil {
		return t.f.Close()
	}
	return nil
}

// Resize re-queries the window size and resyncs the shadow, per spec.md
// §4.L "resize" and §4.C: cursor/region go to sentinel, then if started,
// cursor(0,0) and region(0,sy-1) are re-issued.
func (t *Tty) Resize() {
	w, h, err := term.GetSize(t.fd)
	if err != nil || w <= 0 || h <= 0 {
		w, h = 80, 24
	}
	t.sh.sx, t.sh.sy = w, h
	t.sh.invalidatePosition()
	t.sh.invalidateRegion()
	if t.sh.flags.has(flagStarted) {
		t.cursorTo(Position{0, 0})
		t.regionSet(Region{0, t.sh.sy - 1})
	}
}

// Flush hands pending buffered output to the fd.
func (t *Tty) Flush() error {
	if t.sink == nil {
		return nil
	}
	return t.sink.flush()
}

// Size returns the shadow's current columns/rows.
func (t *Tty) Size() (sx, sy int) { return t.sh.sx, t.sh.sy }

// Reset restores the shadow cell to default, emitting RMACS (if ACS was
// on) and SGR0, per spec.md §4.C.
func (t *Tty) Reset() {
	if t.sh.cell.Attr.Has(grid.AttrCharsetACS) {
		t.sink.write(t.caps.String(cap.ExitACS))
	}
	t.sink.writeString(sgrReset)
	t.sh.cell = grid.Blank()
}

// SetTitle sets the terminal window title via TSL/FSL, spec.md §6 "From
// higher layers".
func (t *Tty) SetTitle(s string) {
	if !t.caps.Has(cap.ToStatusLine) {
		return
	}
	t.sink.write(t.caps.String(cap.ToStatusLine))
	t.sink.writeString(s)
	t.sink.write(t.caps.String(cap.FromStatusLine))
}

// ForceCursorColour sets the cursor colour via CS, or resets it via CR
// when s is empty, spec.md §6 "From higher layers".
func (t *Tty) ForceCursorColour(s string) {
	if s == t.sh.cursorColor {
		return
	}
	if s == "" {
		t.sink.write(t.caps.String(cap.CursorColorReset))
	} else if t.caps.Has(cap.CursorColor) {
		t.sink.write(t.caps.String(cap.CursorColor, 0))
		t.sink.writeString(s)
	}
	t.sh.cursorColor = s
}

func cursorStyleReset(c cap.Capabilities) []byte {
	if c.Has("Se") {
		return c.String("Se")
	}
	return []byte("\x1b[0 q") // SS 0: default cursor style
}

const sgrReset = "\x1b[0m"

// WriteRaw emits bytes verbatim and invalidates the cursor/region shadow,
// used by cmd_rawstring (spec.md §4.I).
func (t *Tty) WriteRaw(b []byte) {
	t.sink.write(b)
	t.sh.invalidatePosition()
	t.sh.invalidateRegion()
	t.Reset()
}

func (t *Tty) fmtState() string {
	return fmt.Sprintf("cursor=%v region=%v size=%dx%d", t.sh.position(), t.sh.region(), t.sh.sx, t.sh.sy)
}
