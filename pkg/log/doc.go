// Package log provides the structured logging facade used across knime-audit.
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context, backed by the standard library slog.
// Output goes to stderr by default; WithFile routes it to a size-rotated
// file instead.
//
// Quick start:
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormat("text"),
//	)
//	l = l.With(log.Component("tailer"))
//	l.Info("tailing", log.Str("file", name))
package log
