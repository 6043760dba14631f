// Package ptyrun runs a single command under a pseudo-terminal and exposes
// it to the monitor as one session.
//
// Output is mirrored to the caller's writer and fed line by line into the
// capture store, bracketed by command start and completion markers.
package ptyrun

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/Iron-Ham/termwatch/internal/capture"
	"github.com/Iron-Ham/termwatch/internal/errors"
	"github.com/Iron-Ham/termwatch/internal/logging"
	"github.com/Iron-Ham/termwatch/internal/monitor"
	"github.com/Iron-Ham/termwatch/internal/session"
)

// drainTimeout bounds how long Run waits for trailing output after the
// command exits.
const drainTimeout = time.Second

// Sink receives the session and its output. *monitor.Monitor satisfies it.
type Sink interface {
	SessionOpened(id session.ID, label string) error
	MarkCommandStart(id session.ID, command string)
	MarkCommandEnd(id session.ID, command string, exitCode int)
	Store() *capture.Store
}

// Config configures a Runner.
type Config struct {
	// Label names the session; defaults to the command's base name.
	Label  string
	Stdout io.Writer
	Stdin  *os.File
	Logger *logging.Logger
}

// Runner is a single-session monitor.Host.
type Runner struct {
	cfg    Config
	logger *logging.Logger

	mu     sync.RWMutex
	handle *monitor.Handle
}

var _ monitor.Host = (*Runner)(nil)

// New creates a Runner.
func New(cfg Config) *Runner {
	if cfg.Stdout == nil {
		cfg.Stdout = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger()
	}
	return &Runner{cfg: cfg, logger: cfg.Logger.WithComponent("ptyrun")}
}

// Sessions returns the running command's session, if any. The session stays
// listed after the command exits so that a final check can see its output.
func (r *Runner) Sessions() []monitor.Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.handle == nil {
		return nil
	}
	return []monitor.Handle{*r.handle}
}

// Focus is a no-op: the command already owns the terminal.
func (r *Runner) Focus(session.ID) error { return nil }

// ID returns the session ID of the current command.
func (r *Runner) ID() session.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.handle == nil {
		return ""
	}
	return r.handle.ID
}

// Run starts name with args under a pty, reports it to sink, and blocks
// until it exits. It returns the command's exit code; err is non-nil only
// if the command could not be started or waited on.
func (r *Runner) Run(ctx context.Context, sink Sink, name string, args ...string) (int, error) {
	label := r.cfg.Label
	if label == "" {
		label = filepath.Base(name)
	}
	cmdline := strings.Join(append([]string{name}, args...), " ")

	id := session.NewID(time.Now())
	r.mu.Lock()
	r.handle = &monitor.Handle{ID: id, Label: label}
	r.mu.Unlock()

	log := r.logger.WithSession(id.String(), label)
	if err := sink.SessionOpened(id, label); err != nil {
		return -1, errors.NewSessionError("open session", err).WithSessionID(id.String()).WithStage("open")
	}

	cmd := exec.CommandContext(ctx, name, args...)
	f, err := pty.Start(cmd)
	if err != nil {
		return -1, errors.NewSessionError("start command", err).WithSessionID(id.String()).WithStage("start")
	}
	sink.MarkCommandStart(id, cmdline)
	log.Info("command started", "command", cmdline, "pid", cmd.Process.Pid)

	if r.cfg.Stdin != nil {
		if err := pty.InheritSize(r.cfg.Stdin, f); err != nil {
			log.Debug("pty size not inherited", "error", err.Error())
		}
		if restore := makeRaw(r.cfg.Stdin); restore != nil {
			defer restore()
		}
		go func() { _, _ = io.Copy(f, r.cfg.Stdin) }()
	}

	lw := capture.NewLineWriter(sink.Store(), id.String())
	copied := make(chan struct{})
	go func() {
		defer close(copied)
		_, err := io.Copy(io.MultiWriter(r.cfg.Stdout, lw), f)
		if err != nil && !isPTYClosed(err) {
			log.Warn("reading command output failed", "error", err.Error())
		}
	}()

	waitErr := cmd.Wait()

	select {
	case <-copied:
	case <-time.After(drainTimeout):
	}
	_ = f.Close()
	<-copied
	_ = lw.Close()

	code := exitCode(cmd, waitErr)
	sink.MarkCommandEnd(id, cmdline, code)
	log.Info("command finished", "command", cmdline, "exit_code", code)

	if waitErr != nil && code < 0 {
		return code, errors.NewSessionError("wait for command", waitErr).WithSessionID(id.String()).WithStage("wait")
	}
	return code, nil
}

// makeRaw puts a terminal stdin into raw mode so keystrokes reach the
// child unprocessed. It returns nil when stdin is not a terminal.
func makeRaw(stdin *os.File) func() {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil
	}
	return func() { _ = term.Restore(fd, state) }
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

// isPTYClosed reports the read error Linux returns once the child side of
// the pty is gone.
func isPTYClosed(err error) bool {
	return errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)
}
