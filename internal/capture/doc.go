// Package capture holds the per-session output buffers that the monitor
// reads excerpts from.
//
// # Main Types
//
//   - [LineBuffer]: bounded circular buffer of text lines
//   - [Store]: LineBuffers keyed by session ID
//   - [LineWriter]: io.Writer that assembles streamed chunks into lines
//
// # Design
//
// Output arrives from hosts as raw chunks (a pty) or as already-split lines
// (tmux pane captures). Either way it ends up as whole lines in a
// LineBuffer, which evicts the oldest lines once the cap is reached.
// Readers only ever ask for the tail: the last K lines joined with "\n".
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Each LineBuffer has
// its own lock, so appends to one session never wait on reads of another.
//
// # Basic Usage
//
//	store := capture.NewStore(1000)
//	store.Append(id, "go test ./...\nok  \tpkg\t0.12s")
//	excerpt := store.Read(id, 100)
//
//	w := capture.NewLineWriter(store, id)
//	cmd.Stdout = w
//	defer w.Close()
package capture
