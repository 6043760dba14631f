// Package tmux is the tmux host: it discovers tmux sessions, polls their
// panes and feeds new output lines to a monitor.
//
// Commands run against the default tmux server unless a socket name is
// configured, in which case every call carries "-L socket".
package tmux

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// BaseArgs returns the socket arguments for socket, or nil for the default
// server.
func BaseArgs(socket string) []string {
	if socket == "" {
		return nil
	}
	return []string{"-L", socket}
}

// CommandArgs returns the full tmux argument list for socket.
func CommandArgs(socket string, args ...string) []string {
	return append(BaseArgs(socket), args...)
}

// CommandContext creates a context-aware exec.Cmd for tmux on socket.
func CommandContext(ctx context.Context, socket string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, "tmux", CommandArgs(socket, args...)...)
}

// Runner executes one tmux command and returns its stdout.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

// ExecRunner returns a Runner that shells out to tmux. Failures carry the
// command's stderr.
func ExecRunner(socket string) Runner {
	return func(ctx context.Context, args ...string) ([]byte, error) {
		cmd := CommandContext(ctx, socket, args...)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		out, err := cmd.Output()
		if err != nil {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return nil, fmt.Errorf("tmux %s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
		}
		return out, nil
	}
}

// isNoServer reports whether err means no tmux server is running, which
// the host treats as "no sessions".
func isNoServer(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no server running") ||
		strings.Contains(msg, "error connecting to") ||
		strings.Contains(msg, "no sessions")
}
