package tty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lthms/veetty/internal/cap"
	"github.com/lthms/veetty/internal/grid"
)

// attrFlags pairs a grid.Attr bit with the SGR enter/exit terminfo
// capability pair used to toggle it, in the order spec.md §4.F reconciles
// them: colour before attributes, and among attributes, in a stable order
// so two reconciliations of the same delta always emit the same bytes.
var attrFlags = []struct {
	bit        grid.Attr
	enter, exit string
}{
	{grid.AttrBright, cap.EnterBold, ""},
	{grid.AttrDim, cap.EnterDim, ""},
	{grid.AttrUnderscore, cap.EnterUnderline, cap.ExitUnderline},
	{grid.AttrBlink, cap.EnterBlink, ""},
	{grid.AttrReverse, cap.EnterReverse, ""},
	{grid.AttrHidden, cap.EnterInvisible, ""},
	{grid.AttrItalics, cap.EnterItalics, cap.ExitItalics},
}

// sgrFgDefault/sgrBgDefault are the SGR "reset individual default colour"
// codes spec.md §4.F step 7 prefers when the terminal asserts AX. Neither
// has a terminfo capability name: they are a fixed ECMA-48 convention, not
// something any terminal declares a string capability for.
const (
	sgrFgDefault = "\x1b[39m"
	sgrBgDefault = "\x1b[49m"
)

// reconcileAttr emits the escape sequences needed to move the terminal's
// current SGR state (the shadow cell) to want, per spec.md §4.F's
// 9-step reconciliation:
//  1. if SETAB is unavailable, substitute REVERSE for a non-default
//     background (the only portable way to show one without setab).
//  2. if want drops any attribute the shadow has set, and the terminal
//     has no dedicated exit capability for it, SGR0 is emitted and the
//     shadow attribute set is reset to empty (some attributes, e.g. bold,
//     can only be turned off by a full reset on many terminals).
//  3. colour is reconciled next, before any newly-set attribute is turned
//     on, because the colour path may itself issue SGR0 (the AX-less
//     default-colour reset) which would otherwise wipe attributes this
//     call is about to turn on.
//  4. any attribute bit present in want but not the (possibly just-reset)
//     shadow is turned on via its enter capability.
//  5. any attribute with a dedicated exit capability that want drops is
//     turned off via that capability, if step 2 did not already reset it.
func (t *Tty) reconcileAttr(want grid.Cell) {
	want = t.reverseAsBackground(want)
	have := t.sh.cell

	dropped := have.Attr &^ want.Attr
	hasHardDrop := false
	for _, a := range attrFlags {
		if dropped.Has(a.bit) && a.exit == "" {
			hasHardDrop = true
			break
		}
	}

	if hasHardDrop {
		t.sink.writeString(sgrReset)
		have.Attr = 0
		have.Fg = grid.Basic(grid.DefaultColor)
		have.Bg = grid.Basic(grid.DefaultColor)
	}

	if t.reconcileColor(want, have) {
		// The colour path fell back to a full SGR0 reset (no AX, OP
		// present, both fg and bg going to default): treat it exactly
		// like the hard-drop reset above so the "added" computation below
		// re-adds every attribute want still needs.
		have.Attr = 0
		have.Fg = grid.Basic(grid.DefaultColor)
		have.Bg = grid.Basic(grid.DefaultColor)
	}

	added := want.Attr &^ have.Attr
	for _, a := range attrFlags {
		if added.Has(a.bit) && t.caps.Has(a.enter) {
			t.sink.write(t.caps.String(a.enter))
		}
	}

	stillDropped := have.Attr &^ want.Attr
	for _, a := range attrFlags {
		if stillDropped.Has(a.bit) && a.exit != "" && t.caps.Has(a.exit) {
			t.sink.write(t.caps.String(a.exit))
		}
	}

	t.sh.cell.Attr = want.Attr
	t.sh.cell.Fg = want.Fg
	t.sh.cell.Bg = want.Bg
}

// reverseAsBackground substitutes the REVERSE attribute for a non-default
// background when the terminal has no setab, per spec.md §4.F step 3:
// a cell's own reverse request is dropped first if it would conflict
// (reverse already set and fg isn't white/default), then reverse is forced
// on whenever the desired background isn't black or default.
func (t *Tty) reverseAsBackground(want grid.Cell) grid.Cell {
	if t.caps.Has(cap.SetABackground) {
		return want
	}

	fgWhiteOrDefault := want.Fg.Space == grid.ColorBasic &&
		(want.Fg.Value == 7 || want.Fg.IsDefault())
	if want.Attr.Has(grid.AttrReverse) && !fgWhiteOrDefault {
		want.Attr &^= grid.AttrReverse
	}

	bgBlackOrDefault := want.Bg.Space == grid.ColorBasic &&
		(want.Bg.Value == 0 || want.Bg.IsDefault())
	if !bgBlackOrDefault {
		want.Attr |= grid.AttrReverse
	}

	return want
}

// reconcileColor emits any fg/bg colour change and reports whether it used
// a full SGR0 reset (in which case the caller must treat the shadow
// attribute set as cleared too).
func (t *Tty) reconcileColor(want grid.Cell, have grid.Cell) bool {
	maxColors := t.caps.Number(cap.MaxColors)
	trueColor := t.caps.Has(cap.TCTrueColor) || t.caps.Flag(cap.TCTrueColor)

	wantFg, fgBright := downgradeColor(want.Fg, trueColor, maxColors)
	wantBg, bgBright := downgradeColor(want.Bg, trueColor, maxColors)

	haveFg, _ := downgradeColor(have.Fg, trueColor, maxColors)
	haveBg, _ := downgradeColor(have.Bg, trueColor, maxColors)

	fgChanged := wantFg != haveFg
	bgChanged := wantBg != haveBg
	if !fgChanged && !bgChanged {
		return false
	}

	ax := t.caps.Has(cap.AXAssumed) || t.caps.Flag(cap.AXAssumed)
	op := t.caps.Has(cap.OrigPair)

	if fgChanged && bgChanged && wantFg.IsDefault() && wantBg.IsDefault() && !ax && op {
		// Step 7's "AX absent but OP exists" shortcut: normalizing fg and
		// bg individually would take two escapes (SETAF(7)+SETAB(0));
		// SGR0 does both in one and is exactly what those two calls
		// would otherwise amount to, since neither side keeps its colour.
		t.sink.writeString(sgrReset)
		return true
	}

	if fgChanged {
		t.emitColor(cap.SetAForeground, wantFg, fgBright, ax)
	}
	if bgChanged {
		t.emitColor(cap.SetABackground, wantBg, bgBright, ax)
	}
	return false
}

func (t *Tty) emitColor(setCap string, c grid.Color, bright, ax bool) {
	if c.IsDefault() {
		// Step 7: normalize to the default colour rather than silently
		// doing nothing, so the shadow's "reset to default" is actually
		// reflected on the terminal (Testable Property 3).
		if setCap == cap.SetABackground {
			if ax {
				t.sink.writeString(sgrBgDefault)
				return
			}
			t.sink.write(t.caps.String(cap.SetABackground, 0))
			return
		}
		if ax {
			t.sink.writeString(sgrFgDefault)
			return
		}
		t.sink.write(t.caps.String(cap.SetAForeground, 7))
		return
	}
	switch c.Space {
	case grid.ColorRGB:
		r, g, b := c.RGB255()
		t.sink.writeString(directColorSGR(setCap, r, g, b))
	case grid.ColorPalette256:
		t.sink.write(t.caps.String(setCap, int(c.Value)))
	default:
		t.emitBasicColor(setCap, c.Value, bright)
	}
}

// emitBasicColor writes the 0-7 basic colour escape, adding the aixterm
// bright offset when the terminal natively supports a 16-colour palette
// (colors >= 16, so setaf/setab already know how to encode parameters
// 8-15). On an 8-colour terminal there is no such parameter range: the
// downgrade chain has already folded bright down to 0-7, and brightness is
// instead carried by the BOLD attribute (spec.md §4.F step 4's "base 0-7
// with the BRIGHT attribute added"), discarded entirely for backgrounds
// since there is no portable bright-background convention.
func (t *Tty) emitBasicColor(setCap string, v int32, bright bool) {
	idx := int(v)
	maxColors := t.caps.Number(cap.MaxColors)
	isBackground := setCap == cap.SetABackground
	nativeBright := bright && maxColors >= 16

	if bright && !nativeBright && !isBackground && t.caps.Has(cap.EnterBold) {
		t.sink.write(t.caps.String(cap.EnterBold))
	}

	sgrIdx := idx
	if nativeBright {
		sgrIdx += 8
	}

	if t.caps.Has(setCap) {
		t.sink.write(t.caps.String(setCap, sgrIdx))
		return
	}
	// No setaf/setab: fall back to the literal aixterm SGR codes.
	base := 30
	if isBackground {
		base = 40
	}
	code := base + idx
	if nativeBright {
		code = base + 60 + idx
	}
	t.sink.writeString(fmt.Sprintf("\x1b[%dm", code))
}

// directColorSGR writes a 24-bit SGR colour sequence (38/48;2;r;g;b),
// since terminfo has no parametric capability for true colour.
func directColorSGR(setCap string, r, g, b uint8) string {
	kind := "38"
	if setCap == cap.SetABackground {
		kind = "48"
	}
	var sb strings.Builder
	sb.WriteString("\x1b[")
	sb.WriteString(kind)
	sb.WriteString(";2;")
	sb.WriteString(strconv.Itoa(int(r)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(g)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(b)))
	sb.WriteByte('m')
	return sb.String()
}
