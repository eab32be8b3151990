package tty

import (
	osc52 "github.com/aymanbagabas/go-osc52/v2"

	"github.com/lthms/veetty/internal/cap"
)

// Raw DECSET/DECRST sequences for the mouse tracking and reporting modes
// spec.md §6 groups under "terminal mode transitions". terminfo carries
// no capabilities for these; every terminal multiplexer in this space
// hardcodes them. charmbracelet/x/ansi's ansi.Mode enum (cell.go's
// autowrap toggle uses the same package) models these as typed mode
// constants for its parser side, not as ready-made enable/disable
// sequences, so the generator side stays literal here.
const (
	seqMouseStandardOn  = "\x1b[?1000h"
	seqMouseStandardOff = "\x1b[?1000l"
	seqMouseButtonOn    = "\x1b[?1002h"
	seqMouseButtonOff   = "\x1b[?1002l"
	seqMouseAnyOn       = "\x1b[?1003h"
	seqMouseAnyOff      = "\x1b[?1003l"
	seqMouseSGROn       = "\x1b[?1006h"
	seqMouseSGROff      = "\x1b[?1006l"

	seqFocusEnable  = "\x1b[?1004h"
	seqFocusDisable = "\x1b[?1004l"

	seqBracketPasteEnable  = "\x1b[?2004h"
	seqBracketPasteDisable = "\x1b[?2004l"

	mouseDisableAll = seqMouseAnyOff + seqMouseButtonOff + seqMouseStandardOff + seqMouseSGROff
)

// UpdateMode diffs the shadow's mode bitset against want and emits only
// the transitions needed, per SPEC_FULL.md §7: mouse-mode bits follow a
// strict ordering on enable (SGR extended reporting turned on before the
// tracking type, so a client never sees a tracking-mode report it cannot
// decode) and the reverse order on disable.
func (t *Tty) UpdateMode(want ModeFlag) {
	have := t.sh.mode
	if have == want {
		return
	}

	t.writeMouseTransition(have, want)

	if want.Has(ModeFocusEvents) && !have.Has(ModeFocusEvents) {
		t.sink.writeString(seqFocusEnable)
	} else if have.Has(ModeFocusEvents) && !want.Has(ModeFocusEvents) {
		t.sink.writeString(seqFocusDisable)
	}

	if want.Has(ModeBracketPaste) && !have.Has(ModeBracketPaste) {
		t.sink.writeString(seqBracketPasteEnable)
	} else if have.Has(ModeBracketPaste) && !want.Has(ModeBracketPaste) {
		t.sink.writeString(seqBracketPasteDisable)
	}

	if want.Has(ModeKeypadApp) && !have.Has(ModeKeypadApp) {
		t.sink.write(t.caps.String(cap.KeypadXmit))
	} else if have.Has(ModeKeypadApp) && !want.Has(ModeKeypadApp) {
		t.sink.write(t.caps.String(cap.KeypadLocal))
	}

	if want.Has(ModeCursor) && !have.Has(ModeCursor) {
		t.sink.write(t.caps.String(cap.CursorNormal))
	} else if have.Has(ModeCursor) && !want.Has(ModeCursor) {
		t.sink.write(t.caps.String(cap.CursorInvisible))
	}

	t.sh.mode = want
}

// writeMouseTransition handles the SGR-extended-reporting-before-
// tracking-type ordering described above. disable is the mirror: the
// tracking type is turned off before SGR extended reporting.
func (t *Tty) writeMouseTransition(have, want ModeFlag) {
	wantSGR := want.Has(ModeMouseSGR)
	haveSGR := have.Has(ModeMouseSGR)
	wantTrack := want & mouseModeMask
	haveTrack := have & mouseModeMask

	if wantSGR && !haveSGR {
		t.sink.writeString(seqMouseSGROn)
	}
	if wantTrack != haveTrack {
		t.writeMouseTrackingTransition(haveTrack, wantTrack)
	}
	if haveSGR && !wantSGR {
		t.sink.writeString(seqMouseSGROff)
	}
}

func (t *Tty) writeMouseTrackingTransition(have, want ModeFlag) {
	off := map[ModeFlag]string{
		ModeMouseStandard: seqMouseStandardOff,
		ModeMouseButton:   seqMouseButtonOff,
		ModeMouseAny:      seqMouseAnyOff,
	}
	on := map[ModeFlag]string{
		ModeMouseStandard: seqMouseStandardOn,
		ModeMouseButton:   seqMouseButtonOn,
		ModeMouseAny:      seqMouseAnyOn,
	}
	if s, ok := off[have]; ok {
		t.sink.writeString(s)
	}
	if s, ok := on[want]; ok {
		t.sink.writeString(s)
	}
}

// setSelection encodes text as an OSC 52 clipboard-set sequence, spec.md
// §4.I's cmd_setselection, gated on the terminal declaring the Ms
// capability. go-osc52 owns the base64 framing and terminator choice
// (BEL vs ST) the same way any OSC-52-aware Go terminal app does.
func (t *Tty) setSelection(data []byte) {
	if !t.caps.Has(cap.SetSelection) {
		return
	}
	seq := osc52.New(string(data))
	t.sink.writeString(seq.String())
}
