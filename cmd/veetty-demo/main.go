package main

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	xterm "github.com/charmbracelet/x/term"

	"github.com/lthms/veetty/internal/grid"
	"github.com/lthms/veetty/internal/tty"
)

// demo lays out two shell panes stacked vertically, separated by a single
// blank divider row, and fans their output through one tty.Session
// client attached to the process's own terminal. It exists to exercise
// components J and L against real PTY traffic (SPEC_FULL.md §7).
type demo struct {
	engine *tty.Tty
	sess   *tty.Session

	top, bottom *shellPane
	dividerY    int

	focus int // 0 = top, 1 = bottom

	mu    sync.Mutex
	dirty [2]bool
}

func main() {
	slog.SetLogLoggerLevel(slog.LevelInfo)

	fd := int(os.Stdout.Fd())
	termname := os.Getenv("TERM")
	if termname == "" {
		termname = "xterm-256color"
	}

	engine, err := tty.New(fd, termname)
	if err != nil {
		slog.Error("veetty-demo: not a terminal", "error", err)
		os.Exit(1)
	}
	if err := engine.Open(); err != nil {
		slog.Error("veetty-demo: open", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	if err := engine.Start(); err != nil {
		slog.Error("veetty-demo: start", "error", err)
		os.Exit(1)
	}
	defer engine.Stop()

	sx, sy := engine.Size()

	d := &demo{
		engine: engine,
		sess:   tty.NewSession(),
	}
	d.sess.Attach(tty.NewClient(engine))

	topRows := sy / 2
	bottomRows := sy - topRows - 1
	d.dividerY = topRows

	d.top, err = newShellPane("top", sx, topRows, func() { d.markDirty(0) })
	if err != nil {
		slog.Error("veetty-demo: spawn top pane", "error", err)
		os.Exit(1)
	}
	defer d.top.close()

	d.bottom, err = newShellPane("bottom", sx, bottomRows, func() { d.markDirty(1) })
	if err != nil {
		slog.Error("veetty-demo: spawn bottom pane", "error", err)
		os.Exit(1)
	}
	defer d.bottom.close()

	restore, err := xterm.MakeRaw(fd)
	if err == nil {
		defer xterm.Restore(fd, restore)
	}

	sigwinch := make(chan os.Signal, 1)
	signal.Notify(sigwinch, syscall.SIGWINCH)
	go d.handleResize(sigwinch)

	d.redrawAll()

	go d.renderLoop()

	d.readStdin()
}

func (d *demo) markDirty(pane int) {
	d.mu.Lock()
	d.dirty[pane] = true
	d.mu.Unlock()
}

func (d *demo) renderLoop() {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		d.mu.Lock()
		top, bottom := d.dirty[0], d.dirty[1]
		d.dirty[0], d.dirty[1] = false, false
		d.mu.Unlock()

		if !top && !bottom {
			continue
		}
		if top {
			src := &vtLineSource{pane: d.top, yOffset: 0}
			for y := 0; y < d.top.rows; y++ {
				d.sess.RedrawRow(src, y, grid.Basic(grid.DefaultColor), grid.Basic(grid.DefaultColor), 0)
			}
		}
		if bottom {
			src := &vtLineSource{pane: d.bottom, yOffset: d.dividerY + 1}
			for y := 0; y < d.bottom.rows; y++ {
				d.sess.RedrawRow(src, d.dividerY+1+y, grid.Basic(grid.DefaultColor), grid.Basic(grid.DefaultColor), 0)
			}
		}
		if err := d.sess.Flush(); err != nil {
			slog.Debug("veetty-demo: flush", "error", err)
		}
	}
}

func (d *demo) redrawAll() {
	topSrc := &vtLineSource{pane: d.top, yOffset: 0}
	for y := 0; y < d.top.rows; y++ {
		d.sess.RedrawRow(topSrc, y, grid.Basic(grid.DefaultColor), grid.Basic(grid.DefaultColor), 0)
	}
	bottomSrc := &vtLineSource{pane: d.bottom, yOffset: d.dividerY + 1}
	for y := 0; y < d.bottom.rows; y++ {
		d.sess.RedrawRow(bottomSrc, d.dividerY+1+y, grid.Basic(grid.DefaultColor), grid.Basic(grid.DefaultColor), 0)
	}
	_ = d.sess.Flush()
}

// readStdin forwards raw keystrokes to the focused pane, reserving C-b
// as a prefix to switch focus, in the same prefix-key spirit as the
// teacher's own tmux-prefix handling.
func (d *demo) readStdin() {
	buf := make([]byte, 1024)
	prefixed := false
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		for _, b := range buf[:n] {
			if prefixed {
				prefixed = false
				switch b {
				case 'o':
					d.focus = 1 - d.focus
				case 'q':
					return
				}
				continue
			}
			if b == 0x02 { // C-b
				prefixed = true
				continue
			}
			d.activePane().writeInput([]byte{b})
		}
	}
}

func (d *demo) activePane() *shellPane {
	if d.focus == 0 {
		return d.top
	}
	return d.bottom
}

func (d *demo) handleResize(sig <-chan os.Signal) {
	for range sig {
		d.engine.Resize()
		sx, sy := d.engine.Size()
		topRows := sy / 2
		bottomRows := sy - topRows - 1
		d.dividerY = topRows
		d.top.resize(sx, topRows)
		d.bottom.resize(sx, bottomRows)
		d.redrawAll()
	}
}
