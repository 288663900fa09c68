// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("loaded", slog.String("file", "init.scm"))
//
// Loggers are configured once, at creation, with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with some options changed, and
// [Logger.With] derives one that adds attributes to every message.
//
// # Levels
//
// Besides the four [log/slog] levels there is [LevelTrace], below debug, for
// per-step interpreter diagnostics.
//
// # Pretty Output
//
// Pretty output, on by default, renders text records as unquoted key=value
// pairs and JSON records as indented key: value lines. Colors come from
// lipgloss and are dropped automatically when the output is not a terminal.
//
// # Default Logger
//
// The package-level functions ([Info], [DebugContext], ...) write through a
// default logger on standard error. [Config] reconfigures it.
package log
