// Package logging provides structured logging for termwatch.
//
// It wraps log/slog with a JSON handler. When the dashboard owns the
// terminal, logs go to a file (logging.file in the config); otherwise they
// go to stderr.
//
// # Usage
//
//	logger, err := logging.NewLogger("/tmp/termwatch/debug.log", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	mlog := logger.WithComponent("monitor")
//	mlog.WithSession(id, "build").Info("notification sent")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"notification sent","component":"monitor","session_id":"01J...","session_label":"build"}
//
// For tests, use [NopLogger].
package logging
