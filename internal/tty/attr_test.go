package tty

import (
	"strings"
	"testing"

	"github.com/lthms/veetty/internal/cap"
	"github.com/lthms/veetty/internal/grid"
)

func attrFixture() *cap.Fixture {
	fx := cap.NewFixture()
	fx.Strings[cap.ExitAttribute] = "\x1b[0m"
	fx.Strings[cap.EnterBold] = "\x1b[1m"
	fx.Strings[cap.EnterUnderline] = "\x1b[4m"
	fx.Strings[cap.ExitUnderline] = "\x1b[24m"
	fx.Strings[cap.EnterReverse] = "\x1b[7m"
	fx.Nums[cap.MaxColors] = 256
	fx.SetParam(cap.SetAForeground, func(args ...int) string { return sgrColor(30, args[0]) })
	fx.SetParam(cap.SetABackground, func(args ...int) string { return sgrColor(40, args[0]) })
	return fx
}

func sgrColor(base, idx int) string {
	return "\x1b[" + itoa(base+idx) + "m"
}

func TestReconcileAttrAddsUnderline(t *testing.T) {
	tty, buf := newTestTty(t, attrFixture())

	tty.reconcileAttr(grid.Cell{Attr: grid.AttrUnderscore, Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(grid.DefaultColor)})

	if !strings.Contains(buf.String(), "\x1b[4m") {
		t.Fatalf("expected underline escape, got %q", buf.String())
	}
}

func TestReconcileAttrHardDropUsesSGR0(t *testing.T) {
	tty, buf := newTestTty(t, attrFixture())
	tty.sh.cell.Attr = grid.AttrBright // EnterBold has no dedicated exit cap

	tty.reconcileAttr(grid.Cell{Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(grid.DefaultColor)})

	if !strings.HasPrefix(buf.String(), "\x1b[0m") {
		t.Fatalf("expected SGR0 reset when dropping an exit-less attribute, got %q", buf.String())
	}
	if tty.sh.cell.Attr != 0 {
		t.Fatalf("shadow attr not cleared after SGR0: %v", tty.sh.cell.Attr)
	}
}

func TestReconcileAttrSoftDropUsesExitCap(t *testing.T) {
	tty, buf := newTestTty(t, attrFixture())
	tty.sh.cell.Attr = grid.AttrUnderscore

	tty.reconcileAttr(grid.Cell{Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(grid.DefaultColor)})

	if strings.Contains(buf.String(), "\x1b[0m") {
		t.Fatalf("soft-droppable attribute should not force SGR0, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "\x1b[24m") {
		t.Fatalf("expected rmul escape, got %q", buf.String())
	}
}

func TestReconcileColorEmitsOnlyOnChange(t *testing.T) {
	tty, buf := newTestTty(t, attrFixture())
	want := grid.Cell{Fg: grid.Basic(1), Bg: grid.Basic(grid.DefaultColor)}

	tty.reconcileAttr(want)
	first := buf.String()
	buf.Reset()
	tty.reconcileAttr(want)

	if first == "" {
		t.Fatalf("expected a colour escape on first reconciliation")
	}
	if buf.Len() != 0 {
		t.Fatalf("repeating the same cell re-emitted colour: %q", buf.String())
	}
}

func TestEmitColorDefaultResetWithAX(t *testing.T) {
	fx := attrFixture()
	fx.Bools[cap.AXAssumed] = true
	tty, buf := newTestTty(t, fx)
	tty.sh.cell.Fg = grid.Basic(1)

	tty.reconcileAttr(grid.Cell{Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(grid.DefaultColor)})

	if !strings.Contains(buf.String(), "\x1b[39m") {
		t.Fatalf("expected AX default-fg reset \\e[39m, got %q", buf.String())
	}
}

func TestEmitColorDefaultResetWithoutAXNormalizesToSetaf(t *testing.T) {
	tty, buf := newTestTty(t, attrFixture()) // no AX declared
	tty.sh.cell.Fg = grid.Basic(1)

	tty.reconcileAttr(grid.Cell{Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(1)})

	if !strings.Contains(buf.String(), "\x1b[37m") {
		t.Fatalf("expected SETAF(7) normalization without AX, got %q", buf.String())
	}
}

func TestReconcileColorBothDefaultNoAXUsesSGR0Shortcut(t *testing.T) {
	fx := attrFixture()
	fx.Bools[cap.OrigPair] = true // op present, AX absent
	tty, buf := newTestTty(t, fx)
	tty.sh.cell.Fg = grid.Basic(1)
	tty.sh.cell.Bg = grid.Basic(2)

	tty.reconcileAttr(grid.Cell{Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(grid.DefaultColor)})

	if !strings.HasPrefix(buf.String(), "\x1b[0m") {
		t.Fatalf("expected SGR0 shortcut resetting both fg and bg to default, got %q", buf.String())
	}
}

func TestReverseAsBackgroundSubstitutesWhenSetabUnavailable(t *testing.T) {
	fx := cap.NewFixture()
	fx.Strings[cap.EnterReverse] = "\x1b[7m"
	fx.Nums[cap.MaxColors] = 256
	fx.SetParam(cap.SetAForeground, func(args ...int) string { return sgrColor(30, args[0]) })
	// no SetABackground registered: setab is unavailable.
	tty, buf := newTestTty(t, fx)

	tty.reconcileAttr(grid.Cell{Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(2)})

	if !strings.Contains(buf.String(), "\x1b[7m") {
		t.Fatalf("expected reverse substitution for a non-default bg without setab, got %q", buf.String())
	}
}

func TestEmitBasicColorNativeBrightAddsOffsetOnce(t *testing.T) {
	fx := cap.NewFixture()
	fx.Nums[cap.MaxColors] = 16
	fx.SetParam(cap.SetAForeground, func(args ...int) string { return sgrColor(30, args[0]) })
	tty, buf := newTestTty(t, fx)

	tty.emitBasicColor(cap.SetAForeground, 3, true)

	if want := "\x1b[41m"; buf.String() != want { // 30 + (3+8), added exactly once
		t.Fatalf("native bright fg: got %q, want %q", buf.String(), want)
	}
}

func TestEmitBasicColorNonNativeBrightUsesBoldNotOffset(t *testing.T) {
	fx := cap.NewFixture()
	fx.Nums[cap.MaxColors] = 8
	fx.Strings[cap.EnterBold] = "\x1b[1m"
	fx.SetParam(cap.SetAForeground, func(args ...int) string { return sgrColor(30, args[0]) })
	tty, buf := newTestTty(t, fx)

	tty.emitBasicColor(cap.SetAForeground, 3, true)

	if !strings.Contains(buf.String(), "\x1b[1m") {
		t.Fatalf("expected BOLD attribute for bright colour on an 8-colour terminal, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "\x1b[33m") { // base index unmodified: 30+3
		t.Fatalf("expected unmodified base index on an 8-colour terminal, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b[41m") {
		t.Fatalf("bright colour index must not also be offset on an 8-colour terminal, got %q", buf.String())
	}
}

func TestEmitBasicColorBackgroundDiscardsBrightOnNarrowTerminal(t *testing.T) {
	fx := cap.NewFixture()
	fx.Nums[cap.MaxColors] = 8
	fx.Strings[cap.EnterBold] = "\x1b[1m"
	fx.SetParam(cap.SetABackground, func(args ...int) string { return sgrColor(40, args[0]) })
	tty, buf := newTestTty(t, fx)

	tty.emitBasicColor(cap.SetABackground, 3, true)

	if strings.Contains(buf.String(), "\x1b[1m") {
		t.Fatalf("background bright bit must be discarded, not turned into BOLD: got %q", buf.String())
	}
	if want := "\x1b[43m"; buf.String() != want {
		t.Fatalf("expected unmodified base background index, got %q, want %q", buf.String(), want)
	}
}
