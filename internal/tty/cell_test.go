package tty

import (
	"strings"
	"testing"

	"github.com/lthms/veetty/internal/grid"
)

func TestPutGlyphNonUTF8WideCharEmitsWidthPlaceholders(t *testing.T) {
	tty, buf := newTestTty(t, attrFixture())
	tty.sh.cx, tty.sh.cy = 0, 0

	wide := grid.Cell{Data: grid.NewData('世'), Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(grid.DefaultColor)}
	if wide.Data.Width != 2 {
		t.Fatalf("test fixture assumption broken: want width 2, got %d", wide.Data.Width)
	}

	tty.cellPut(wide)

	placeholders := strings.Count(buf.String(), "_")
	if placeholders != wide.Data.Width {
		t.Fatalf("non-UTF8 wide glyph emitted %d placeholders, want %d", placeholders, wide.Data.Width)
	}
	if got := tty.sh.position(); got != (Position{2, 0}) {
		t.Fatalf("shadow position after non-UTF8 wide glyph = %v, want (2,0) to match the 2 placeholders written", got)
	}
}

func TestPutGlyphUTF8SessionWritesRawBytes(t *testing.T) {
	tty, buf := newTestTty(t, attrFixture())
	tty.sh.flags |= flagUTF8
	tty.sh.cx, tty.sh.cy = 0, 0

	wide := grid.Cell{Data: grid.NewData('世'), Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(grid.DefaultColor)}
	tty.cellPut(wide)

	if strings.Contains(buf.String(), "_") {
		t.Fatalf("UTF-8 session should not fall back to placeholders, got %q", buf.String())
	}
	if got := tty.sh.position(); got != (Position{2, 0}) {
		t.Fatalf("shadow position after UTF-8 wide glyph = %v, want (2,0)", got)
	}
}
