// Command veetty-demo is a minimal terminal multiplexer that drives the
// veetty output engine directly, instead of going through a higher-level
// TUI framework's own renderer. It exists to exercise component J
// (multi-client fan-out) and component L (tty lifecycle) end to end: two
// shell panes, stacked top and bottom, each backed by a PTY and a vt10x
// virtual terminal, painted onto one real terminal through
// internal/tty.Session.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/creack/pty"
	"github.com/hinshun/vt10x"
)

// shellPane is adapted from the teacher's claude-process pane: same PTY
// lifecycle and vt10x-backed virtual terminal, but spawning an
// interactive shell instead of a fixed command, and without the
// claude-specific environment wiring.
type shellPane struct {
	id   string
	cols int
	rows int

	ptmx    *os.File
	process *exec.Cmd
	vt      vt10x.Terminal
	doneCh  chan struct{}
	exitErr error

	mu     sync.Mutex
	closed bool
}

func newShellPane(id string, cols, rows int, onOutput func()) (*shellPane, error) {
	vt := vt10x.New(vt10x.WithSize(cols, rows))

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
	if err != nil {
		return nil, fmt.Errorf("veetty-demo: pty start: %w", err)
	}

	p := &shellPane{
		id: id, cols: cols, rows: rows,
		ptmx: ptmx, process: cmd, vt: vt,
		doneCh: make(chan struct{}),
	}

	go func() {
		p.exitErr = cmd.Wait()
		close(p.doneCh)
	}()

	go func() {
		buf := make([]byte, 32*1024)
		for {
			n, err := ptmx.Read(buf)
			if n > 0 {
				p.vt.Write(buf[:n])
				if onOutput != nil {
					onOutput()
				}
			}
			if err != nil {
				return
			}
		}
	}()

	return p, nil
}

func (p *shellPane) writeInput(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	_, _ = p.ptmx.Write(data)
}

func (p *shellPane) resize(cols, rows int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.cols, p.rows = cols, rows
	p.vt.Resize(cols, rows)

	ws := struct{ Row, Col, Xpixel, Ypixel uint16 }{Row: uint16(rows), Col: uint16(cols)}
	_, _, _ = syscall.Syscall(syscall.SYS_IOCTL, p.ptmx.Fd(), syscall.TIOCSWINSZ, uintptr(unsafe.Pointer(&ws)))
}

func (p *shellPane) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	if p.process.Process != nil {
		_ = p.process.Process.Signal(syscall.SIGINT)
	}

	timer := time.NewTimer(2 * time.Second)
	defer timer.Stop()
	select {
	case <-p.doneCh:
	case <-timer.C:
		slog.Debug("veetty-demo: force killing pane", "pane", p.id)
		if p.process.Process != nil {
			_ = p.process.Process.Kill()
		}
		<-p.doneCh
	}
	_ = p.ptmx.Close()
}

func (p *shellPane) isAlive() bool {
	select {
	case <-p.doneCh:
		return false
	default:
		return true
	}
}
