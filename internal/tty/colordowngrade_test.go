package tty

import (
	"testing"

	"github.com/lthms/veetty/internal/grid"
)

func TestDowngradeColorPassesThroughTrueColor(t *testing.T) {
	c := grid.RGB(10, 20, 30)
	got, bright := downgradeColor(c, true, 256)
	if got != c || bright {
		t.Fatalf("downgradeColor with true colour support changed %v -> %v (bright=%v)", c, got, bright)
	}
}

func TestDowngradeColorRGBTo256(t *testing.T) {
	c := grid.RGB(255, 0, 0) // pure red
	got, _ := downgradeColor(c, false, 256)
	if got.Space != grid.ColorPalette256 {
		t.Fatalf("expected palette256 downgrade, got %v", got)
	}
}

func TestDowngradeColorIsProjection(t *testing.T) {
	// Downgrading an already-basic colour within the terminal's declared
	// depth must be a no-op: the chain should never move a colour "up" a
	// space, only ever down toward what the terminal can show.
	c := grid.Basic(3)
	got, bright := downgradeColor(c, true, 256)
	if got != c || bright {
		t.Fatalf("downgradeColor should not alter an in-range basic colour: got %v bright=%v", got, bright)
	}
}

func TestDowngradeColor256To16Bright(t *testing.T) {
	c := grid.Palette(196) // a saturated red in the 256 cube
	got, bright := downgradeColor(c, false, 8)
	if got.Space != grid.ColorBasic {
		t.Fatalf("expected basic-space result, got %v", got)
	}
	if got.Value < 0 || got.Value > 7 {
		t.Fatalf("expected a 0-7 basic index without aixterm bright, got %d (bright=%v)", got.Value, bright)
	}
}

func TestPalette256RGBCorners(t *testing.T) {
	r, g, b := palette256RGB(16) // cube origin: black
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("palette256RGB(16) = %d,%d,%d, want 0,0,0", r, g, b)
	}
	r, g, b = palette256RGB(231) // cube corner: white
	if r != 255 || g != 255 || b != 255 {
		t.Fatalf("palette256RGB(231) = %d,%d,%d, want 255,255,255", r, g, b)
	}
	r, g, b = palette256RGB(232) // greyscale ramp start
	if r != 8 || g != 8 || b != 8 {
		t.Fatalf("palette256RGB(232) = %d,%d,%d, want 8,8,8", r, g, b)
	}
}
