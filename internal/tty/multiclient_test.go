package tty

import (
	"testing"

	"github.com/google/uuid"

	"github.com/lthms/veetty/internal/grid"
)

func TestSessionWriteOffsetsStatusLineClient(t *testing.T) {
	plain, plainBuf := newTestTty(t, fullFixture())
	offset, offsetBuf := newTestTty(t, fullFixture())

	s := NewSession()
	s.Attach(&Client{ID: uuid.New(), tty: plain})
	s.Attach(&Client{ID: uuid.New(), tty: offset, StatusLineOnTop: true})

	ctx := TtyCtx{
		OCx: 0, OCy: 0,
		Cell: grid.Cell{Data: grid.NewData('x'), Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(grid.DefaultColor)},
	}
	s.Write("cell", ctx)

	if plain.sh.position() != (Position{1, 0}) {
		t.Fatalf("plain client cursor = %v, want row 0", plain.sh.position())
	}
	if offset.sh.position() != (Position{1, 1}) {
		t.Fatalf("status-line client cursor = %v, want row 1 (offset)", offset.sh.position())
	}
	if plainBuf.Len() == 0 || offsetBuf.Len() == 0 {
		t.Fatalf("expected both clients to receive output")
	}
}

func TestSessionWriteAppliesHorizontalOffset(t *testing.T) {
	left, leftBuf := newTestTty(t, fullFixture())
	right, rightBuf := newTestTty(t, fullFixture())

	s := NewSession()
	s.Attach(&Client{ID: uuid.New(), tty: left})
	s.Attach(&Client{ID: uuid.New(), tty: right, XOffset: 40})

	ctx := TtyCtx{
		OCx: 5, OCy: 0,
		Cell: grid.Cell{Data: grid.NewData('x'), Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(grid.DefaultColor)},
	}
	s.Write("cell", ctx)

	if left.sh.position() != (Position{6, 0}) {
		t.Fatalf("left pane cursor = %v, want column 6", left.sh.position())
	}
	if right.sh.position() != (Position{46, 0}) {
		t.Fatalf("right pane cursor = %v, want column 46 (xoff 40 + 5 + width 1)", right.sh.position())
	}
	if leftBuf.Len() == 0 || rightBuf.Len() == 0 {
		t.Fatalf("expected both panes to receive output")
	}
}

func TestSessionWriteSkipsNotReadyClients(t *testing.T) {
	suspended, suspendedBuf := newTestTty(t, fullFixture())
	frozen, frozenBuf := newTestTty(t, fullFixture())
	wrongWindow, wrongWindowBuf := newTestTty(t, fullFixture())
	ready, readyBuf := newTestTty(t, fullFixture())

	s := NewSession()
	s.Attach(&Client{ID: uuid.New(), tty: suspended, Suspended: true})
	s.Attach(&Client{ID: uuid.New(), tty: frozen, Frozen: true})
	s.Attach(&Client{ID: uuid.New(), tty: wrongWindow, WindowID: 1})
	s.Attach(&Client{ID: uuid.New(), tty: ready})

	ctx := TtyCtx{
		OCx: 0, OCy: 0, WindowID: 0,
		Cell: grid.Cell{Data: grid.NewData('z'), Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(grid.DefaultColor)},
	}
	s.Write("cell", ctx)

	if suspendedBuf.Len() != 0 {
		t.Fatalf("suspended client should not receive writes, got %q", suspendedBuf.String())
	}
	if frozenBuf.Len() != 0 {
		t.Fatalf("frozen client should not receive writes, got %q", frozenBuf.String())
	}
	if wrongWindowBuf.Len() != 0 {
		t.Fatalf("client attached to a different window should not receive writes, got %q", wrongWindowBuf.String())
	}
	if readyBuf.Len() == 0 {
		t.Fatalf("ready client should have received the write")
	}
}

func TestSessionClientsAreIsolated(t *testing.T) {
	a, _ := newTestTty(t, fullFixture())
	b, _ := newTestTty(t, fullFixture())
	a.sh.cx, a.sh.cy = 10, 10
	b.sh.cx, b.sh.cy = 20, 20

	s := NewSession()
	idA := s.Attach(&Client{ID: uuid.New(), tty: a})
	_ = idA

	ctx := TtyCtx{OCx: 0, OCy: 0, Cell: grid.Cell{Data: grid.NewData('z'), Fg: grid.Basic(grid.DefaultColor), Bg: grid.Basic(grid.DefaultColor)}}
	s.Write("cell", ctx)

	if b.sh.position() != (Position{20, 20}) {
		t.Fatalf("client b mutated by a write targeting only client a: %v", b.sh.position())
	}
}
