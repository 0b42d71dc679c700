// Package log builds the slog loggers used by urltally.
//
// Loggers write to standard error at Warn level, or Debug in verbose mode,
// in text or JSON form. Every logger is wrapped in a ClipHandler, which
// shortens oversized string attributes. Recognized domains and paths have
// no length limit, and a single pathological token in the input must not
// turn one debug line into megabytes of log output.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("source scanned", "source", path, "urls", n)
package log
