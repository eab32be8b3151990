package tty

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/lthms/veetty/internal/cap"
	"github.com/lthms/veetty/internal/grid"
)

// cellPut writes one cell at the shadow's current cursor position and
// advances it, per spec.md §4.G. ACS-charset cells are translated through
// the terminal's acsc mapping when the terminal declares one; plain ASCII
// passes through a byte at a time; anything else is emitted as UTF-8 if
// the session is UTF-8, or as one "_" placeholder per display column
// otherwise. Padding
// cells (the second column of a wide character) are never emitted.
//
// Writing into the last column needs the tail-of-line wrap protocol: on
// an early-wrap terminal the cursor has already advanced past the column
// by the time the glyph lands, so the shadow position is set one cell
// short of where a naive column count would place it and corrected on
// the next cursorTo. On a normal terminal the shadow simply advances to
// one past the last column and the next write forces a wrap.
func (t *Tty) cellPut(c grid.Cell) {
	if c.Attr.Has(grid.AttrPadding) {
		return
	}

	t.reconcileAttr(c)

	pos := t.sh.position()
	lowerRight := !t.sh.flags.has(flagEarlyWrap) &&
		pos.Y == t.sh.sy-1 && pos.X == t.sh.sx-c.Data.Width

	if lowerRight {
		// Writing the very last cell of the screen must not trigger the
		// terminal's own autowrap, which would scroll everything up one
		// line for a single glyph. Same trick as charmbracelet/ultraviolet's
		// putCellLR: suspend autowrap for this one write.
		t.sink.writeString(ansi.ResetAutoWrapMode)
	}

	t.putGlyph(c)

	if lowerRight {
		t.sink.writeString(ansi.SetAutoWrapMode)
	}

	next := Position{X: pos.X + c.Data.Width, Y: pos.Y}
	if (t.sh.flags.has(flagEarlyWrap) || lowerRight) && next.X >= t.sh.sx {
		next.X = t.sh.sx - 1
	}
	t.sh.setPosition(next)
}

func (t *Tty) putGlyph(c grid.Cell) {
	if c.Attr.Has(grid.AttrCharsetACS) {
		if b, ok := acsTranslate(t, c.Data); ok {
			t.sink.write(b)
			return
		}
	}

	if !t.sh.flags.has(flagUTF8) {
		if b, ok := c.Data.ASCIIByte(); ok {
			t.sink.write([]byte{b})
			return
		}
		// Non-UTF8 session, non-ASCII glyph: there is no byte sequence
		// this terminal can render it as, so it is blanked out. A wide
		// glyph occupies c.Data.Width columns on the real terminal, and
		// cellPut advances the shadow by that same width, so it must
		// emit that many placeholders, not one, or the shadow runs ahead
		// of the cursor the terminal actually has.
		width := c.Data.Width
		if width < 1 {
			width = 1
		}
		t.sink.writeString(strings.Repeat("_", width))
		return
	}

	t.sink.write(c.Data.Bytes())
}

// acsTranslate maps a cell's base rune through the terminal's acsc
// capability, which encodes pairs of (ascii-name, terminal-glyph) bytes,
// e.g. the pair "lk" maps the top-left corner name 'l' to the byte 'k'.
// Only the single-byte
// ASCII-name case is supported: acsc never maps multi-rune graphemes.
func acsTranslate(t *Tty, d grid.Data) ([]byte, bool) {
	b, ok := d.ASCIIByte()
	if !ok {
		return nil, false
	}
	acsc := t.caps.String(cap.AcsChars)
	for i := 0; i+1 < len(acsc); i += 2 {
		if acsc[i] == b {
			return []byte{acsc[i+1]}, true
		}
	}
	return nil, false
}
