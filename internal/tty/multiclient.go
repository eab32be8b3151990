package tty

import (
	"github.com/google/uuid"

	"github.com/lthms/veetty/internal/grid"
)

// Client is one attached terminal a Session fans a command out to, per
// spec.md §4.J. Each client owns its own Tty (and therefore its own
// shadow), so a client with a stale or narrower view never corrupts
// another client's state.
type Client struct {
	ID uuid.UUID

	tty *Tty

	// StatusLineOnTop offsets every row this client receives by one,
	// reserving row 0 for a status line the session draws itself
	// (spec.md §4.J "per-client offset").
	StatusLineOnTop bool

	// XOffset/YOffset are this client's pane origin within the shared
	// layout (spec.md §4.J's "ctx.xoff = pane.xoff, ctx.yoff = pane.yoff
	// + ..."): a horizontally- or vertically-split pane does not start at
	// the session's (0,0), and every coordinate a command carries must be
	// translated by that origin before it reaches this client's own Tty.
	XOffset, YOffset int

	// WindowID is the window this client currently has attached/visible.
	// A command targets one window (TtyCtx.WindowID); clients looking at
	// a different window must not receive it.
	WindowID int

	// Suspended/Frozen mark a client that is attached but must not
	// receive writes right now — e.g. a detached tmux client buffering
	// its own output, or one mid-resize (spec.md §4.J).
	Suspended bool
	Frozen    bool
}

// NewClient wraps t with a fresh identity.
func NewClient(t *Tty) *Client {
	return &Client{ID: uuid.New(), tty: t}
}

// ready reports whether c should receive a command targeting windowID
// right now, per spec.md §4.J: it must have a live Tty, must not be
// suspended or frozen, and must currently be looking at that window.
func (c *Client) ready(windowID int) bool {
	return c.tty != nil && !c.Suspended && !c.Frozen && c.WindowID == windowID
}

// live reports whether c should receive output that isn't scoped to a
// particular window (e.g. a full-row repaint): suspended/frozen/no-term
// clients are skipped the same way Write skips them, but window
// attachment doesn't apply.
func (c *Client) live() bool {
	return c.tty != nil && !c.Suspended && !c.Frozen
}

// Session fans a single logical command out to every attached client, per
// spec.md §4.J, translating pane-relative coordinates into each client's
// own screen coordinates.
type Session struct {
	clients map[uuid.UUID]*Client
}

// NewSession constructs an empty multi-client fan-out target.
func NewSession() *Session {
	return &Session{clients: make(map[uuid.UUID]*Client)}
}

// Attach adds c to the session and returns its assigned ID.
func (s *Session) Attach(c *Client) uuid.UUID {
	s.clients[c.ID] = c
	return c.ID
}

// Detach removes a client, e.g. when it disconnects.
func (s *Session) Detach(id uuid.UUID) {
	delete(s.clients, id)
}

// Write dispatches cmdName to every attached, ready client, translating
// ctx's pane-relative coordinates into each client's own screen
// coordinates via its xoff/yoff (and status-line offset) before calling
// its Tty.Dispatch. A client that is suspended, frozen, has no attached
// Tty, or is looking at a different window than ctx.WindowID is skipped
// entirely (spec.md §4.J). Clients are otherwise unaware of one another:
// a write to one client's Tty never reads or mutates another's shadow.
func (s *Session) Write(cmdName string, ctx TtyCtx) {
	for _, c := range s.clients {
		if !c.ready(ctx.WindowID) {
			continue
		}
		local := ctx
		local.OCx += c.XOffset
		local.OCy += c.YOffset
		if c.StatusLineOnTop {
			local.OCy++
		}
		c.tty.Dispatch(cmdName, local)
	}
}

// RedrawRow fans a full-row repaint out to every attached, live client,
// applying each client's vertical offset the same way Write does. A
// repaint isn't scoped to one window, so window attachment isn't
// checked — only suspended/frozen/no-term clients are skipped.
func (s *Session) RedrawRow(src LineSource, y int, blankFg, blankBg grid.Color, blankAttr grid.Attr) {
	for _, c := range s.clients {
		if !c.live() {
			continue
		}
		localY := y + c.YOffset
		if c.StatusLineOnTop {
			localY++
		}
		c.tty.RedrawRow(src, localY, blankFg, blankBg, blankAttr)
	}
}

// Flush flushes every attached client's sink.
func (s *Session) Flush() error {
	var first error
	for _, c := range s.clients {
		if err := c.tty.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Resize re-queries every attached client's window size.
func (s *Session) Resize() {
	for _, c := range s.clients {
		c.tty.Resize()
	}
}

// Clients returns the attached client count.
func (s *Session) Clients() int { return len(s.clients) }
