// Package grid defines the read-only cell and pane-style surface the
// output engine renders from. The grid/screen data model itself (the
// mutable in-memory buffer a higher layer edits) is out of scope per
// spec.md §1; this package only carries the value types the engine
// consumes.
package grid

import "github.com/mattn/go-runewidth"

// ColorSpace tags which encoding Color.Value is expressed in.
type ColorSpace uint8

const (
	// ColorBasic is the classic 0-7 palette, 8 meaning "default", and
	// 9-15 meaning the bright variants of 1-7. Values 90-97 are not
	// recognised as aixterm bright.
	ColorBasic ColorSpace = iota
	// ColorPalette256 carries a palette index 0-255 in Value.
	ColorPalette256
	// ColorRGB carries a packed 24-bit 0xRRGGBB value.
	ColorRGB
)

// DefaultColor is the sentinel basic-space value meaning "inherit the
// pane/window default", spec.md §3 GridCell.fg/bg == 8.
const DefaultColor = 8

// Color is a single foreground or background colour tagged with the
// space it was encoded in, per spec.md §3.
type Color struct {
	Space ColorSpace
	Value int32
}

// Basic constructs a classic 0-7/8/9-15 colour.
func Basic(v int32) Color { return Color{Space: ColorBasic, Value: v} }

// Palette constructs a 256-colour palette index.
func Palette(v int32) Color { return Color{Space: ColorPalette256, Value: v & 0xFF} }

// RGB constructs a 24-bit direct colour from 0-255 components.
func RGB(r, g, b uint8) Color {
	return Color{Space: ColorRGB, Value: int32(r)<<16 | int32(g)<<8 | int32(b)}
}

// RGB255 splits a packed RGB value into its components.
func (c Color) RGB255() (r, g, b uint8) {
	return uint8(c.Value >> 16), uint8(c.Value >> 8), uint8(c.Value)
}

// IsDefault reports whether this colour means "use the pane/window
// default" (spec.md §4.K).
func (c Color) IsDefault() bool {
	return c.Space == ColorBasic && c.Value == DefaultColor
}

// Attr is the cell attribute bitset of spec.md §3.
type Attr uint16

const (
	AttrBright Attr = 1 << iota
	AttrDim
	AttrItalics
	AttrUnderscore
	AttrBlink
	AttrReverse
	AttrHidden
	AttrCharsetACS
	AttrPadding
	AttrSelected
)

func (a Attr) Has(f Attr) bool { return a&f == f }

// Data is the codepoint payload of a cell: one or more runes forming a
// single grapheme (a base rune plus combining marks) and its display width
// in columns. The encoded byte length is not stored; Bytes computes it.
type Data struct {
	Runes []rune
	Width int
}

// NewData measures r (plus any combining runes) and records its display
// width using go-runewidth, matching how terminal multiplexers compute
// column advance for wide/narrow/zero-width runes.
func NewData(r rune, combining ...rune) Data {
	w := runewidth.RuneWidth(r)
	if w < 1 {
		w = 1
	}
	runes := append([]rune{r}, combining...)
	return Data{Runes: runes, Width: w}
}

// Bytes returns the UTF-8 encoding of the cell's runes.
func (d Data) Bytes() []byte {
	return []byte(string(d.Runes))
}

// ASCIIByte returns the single ASCII byte this cell represents and true,
// or (0, false) if the cell is not a single printable ASCII byte —
// spec.md §4.G's "data is a single byte and the byte is printable" case.
func (d Data) ASCIIByte() (byte, bool) {
	if len(d.Runes) != 1 {
		return 0, false
	}
	r := d.Runes[0]
	if r < 0x20 || r > 0x7e {
		return 0, false
	}
	return byte(r), true
}

// Cell is the GridCell value object of spec.md §3.
type Cell struct {
	Data    Data
	Attr    Attr
	Fg, Bg  Color
	Wrapped bool // line-level: the line this cell ends holds a natural wrap
}

// Clear reports whether the cell is indistinguishable from a blank cell
// carrying the given attributes/colours — used by the bulk-erase cost
// heuristics in the line painter.
func (c Cell) Clear(blankFg, blankBg Color, blankAttr Attr) bool {
	return c.Attr == blankAttr && c.Fg == blankFg && c.Bg == blankBg &&
		len(c.Data.Runes) == 1 && c.Data.Runes[0] == ' '
}

// Blank returns a default-coloured space cell.
func Blank() Cell {
	return Cell{Data: NewData(' '), Fg: Basic(DefaultColor), Bg: Basic(DefaultColor)}
}
