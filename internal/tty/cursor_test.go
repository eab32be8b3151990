package tty

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/lthms/veetty/internal/cap"
)

func newTestTty(t *testing.T, fx *cap.Fixture) (*Tty, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	tty := &Tty{
		caps: fx,
		sink: newSink(&buf),
		sh:   newShadow(80, 24),
	}
	return tty, &buf
}

func fullFixture() *cap.Fixture {
	fx := cap.NewFixture()
	fx.Strings[cap.CursorHome] = "\x1b[H"
	fx.Strings[cap.CursorLeft1] = "\x08"
	fx.Strings[cap.CursorRight1] = "\x1b[C"
	fx.Strings[cap.CursorUp1] = "\x1b[A"
	fx.Strings[cap.CursorDown1] = "\x1b[B"
	fx.SetParam(cap.ColumnAddress, func(args ...int) string {
		return fmt.Sprintf("\x1b[%dG", args[0]+1)
	})
	fx.SetParam(cap.RowAddress, func(args ...int) string {
		return fmt.Sprintf("\x1b[%dd", args[0]+1)
	})
	fx.SetParam(cap.ParmLeft, func(args ...int) string {
		return fmt.Sprintf("\x1b[%dD", args[0])
	})
	fx.SetParam(cap.ParmRight, func(args ...int) string {
		return fmt.Sprintf("\x1b[%dC", args[0])
	})
	fx.SetParam(cap.ParmUp, func(args ...int) string {
		return fmt.Sprintf("\x1b[%dA", args[0])
	})
	fx.SetParam(cap.ParmDown, func(args ...int) string {
		return fmt.Sprintf("\x1b[%dB", args[0])
	})
	fx.SetParam(cap.CursorAddress, func(args ...int) string {
		return fmt.Sprintf("\x1b[%d;%dH", args[0]+1, args[1]+1)
	})
	return fx
}

func TestCursorToHome(t *testing.T) {
	tty, buf := newTestTty(t, fullFixture())
	tty.sh.cx, tty.sh.cy = 5, 5

	tty.cursorTo(Position{0, 0})

	if got := buf.String(); got != "\x1b[H" {
		t.Fatalf("cursorTo(0,0) = %q, want home sequence", got)
	}
	if tty.sh.position() != (Position{0, 0}) {
		t.Fatalf("shadow position not updated: %v", tty.sh.position())
	}
}

func TestCursorToCRLF(t *testing.T) {
	tty, buf := newTestTty(t, fullFixture())
	tty.sh.cx, tty.sh.cy = 5, 3
	tty.sh.rupper, tty.sh.rlower = 0, 23

	tty.cursorTo(Position{0, 4})

	if got := buf.String(); got != "\r\n" {
		t.Fatalf("cursorTo(0,cy+1) = %q, want CRLF", got)
	}
}

// TestCursorToHorizontalDirection pins down the CUB/CUF direction sign
// convention flagged as unclear in spec.md §9: decreasing the column is a
// backward motion and uses CUB (cub1 here), increasing it uses CUF.
func TestCursorToHorizontalDirection(t *testing.T) {
	cases := []struct {
		name       string
		startX     int
		targetX    int
		wantSuffix string
	}{
		{"single step left uses cub1", 5, 4, "\x08"},
		{"single step right uses cuf1", 5, 6, "\x1b[C"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tty, buf := newTestTty(t, fullFixture())
			tty.sh.cx, tty.sh.cy = tc.startX, 2

			tty.cursorTo(Position{tc.targetX, 2})

			if got := buf.String(); got != tc.wantSuffix {
				t.Fatalf("cursorTo same-row step = %q, want %q", got, tc.wantSuffix)
			}
			if tty.sh.position() != (Position{tc.targetX, 2}) {
				t.Fatalf("shadow not updated to target: %v", tty.sh.position())
			}
		})
	}
}

func TestCursorToSameRowCR(t *testing.T) {
	tty, buf := newTestTty(t, fullFixture())
	tty.sh.cx, tty.sh.cy = 10, 2

	tty.cursorTo(Position{0, 2})

	if got := buf.String(); got != "\r" {
		t.Fatalf("cursorTo col 0 same row = %q, want CR", got)
	}
}

func TestCursorToSameColumnStep(t *testing.T) {
	tty, buf := newTestTty(t, fullFixture())
	tty.sh.cx, tty.sh.cy = 10, 5
	tty.sh.rupper, tty.sh.rlower = 0, 23

	tty.cursorTo(Position{10, 6})

	if got := buf.String(); got != "\x1b[B" {
		t.Fatalf("cursorTo cud1 step = %q, want cud1", got)
	}
}

func TestCursorToSameColumnCrossesRegionUsesVPA(t *testing.T) {
	tty, buf := newTestTty(t, fullFixture())
	tty.sh.cx, tty.sh.cy = 10, 23
	tty.sh.rupper, tty.sh.rlower = 0, 23

	// Moving past the region's lower edge must use VPA, not cud1, since a
	// relative step would scroll the region instead of leaving it.
	tty.cursorTo(Position{10, 24})

	want := "\x1b[25d"
	if got := buf.String(); got != want {
		t.Fatalf("cursorTo crossing region lower = %q, want %q", got, want)
	}
}

func TestCursorToUnknownUsesAbsolute(t *testing.T) {
	tty, buf := newTestTty(t, fullFixture())
	// shadow position left at sentinel (unknown)

	tty.cursorTo(Position{3, 4})

	want := "\x1b[5;4H"
	if got := buf.String(); got != want {
		t.Fatalf("cursorTo from unknown = %q, want %q", got, want)
	}
}

func TestCursorToFallbackAbsolute(t *testing.T) {
	tty, buf := newTestTty(t, fullFixture())
	tty.sh.cx, tty.sh.cy = 1, 1

	tty.cursorTo(Position{40, 12})

	want := "\x1b[13;41H"
	if got := buf.String(); got != want {
		t.Fatalf("cursorTo fallback = %q, want %q", got, want)
	}
}

func TestCursorToIdempotent(t *testing.T) {
	tty, buf := newTestTty(t, fullFixture())
	tty.sh.cx, tty.sh.cy = 7, 7

	tty.moveCursor(Position{7, 7})
	buf.Reset()

	// Calling cursorTo with the target the shadow already holds emits
	// nothing and never desyncs the shadow from the terminal's position.
	tty.cursorTo(Position{7, 7})
	tty.cursorTo(Position{7, 7})
	if tty.sh.position() != (Position{7, 7}) {
		t.Fatalf("shadow drifted after repeated no-op cursorTo: %v", tty.sh.position())
	}
	if buf.Len() != 0 {
		t.Fatalf("cursorTo to the current position emitted %q, want nothing", buf.String())
	}
}
