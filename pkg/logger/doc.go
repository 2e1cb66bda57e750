// Package logger provides a small factory around Go's slog package so every
// part of the client logs in a consistent shape.
//
// New creates a *slog.Logger configured by Option functions: output format
// (text or json), minimum level, destination writer and static attributes
// applied to every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithTextFormatter(),
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithAttr(slog.String("component", "session")),
//	)
//
// Noop returns a discard logger, the default used by library components
// when the caller does not supply one.
package logger
