package log

import (
	"context"
	"log/slog"
	"os"
)

// DefaultContextProvider returns the default context used by context-unaware
// logging functions.
var DefaultContextProvider = context.TODO

var defaultLog = Make(os.Stdout)

// Config updates the package-default logger with the given options. Kong's
// TextUnmarshaler flag hooks call this as flags are parsed, so logger output
// reflects --log-* flags before the first log line is emitted.
func Config(opts ...Option) {
	defaultLog = defaultLog.Wrap(opts...)
}

// DebugContext logs at Debug level using the default logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.DebugContext(ctx, msg, attrs...)
}

// Debug logs at Debug level using the default logger and [DefaultContextProvider].
func Debug(msg string, attrs ...slog.Attr) {
	DebugContext(DefaultContextProvider(), msg, attrs...)
}

// InfoContext logs at Info level using the default logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.InfoContext(ctx, msg, attrs...)
}

// Info logs at Info level using the default logger and [DefaultContextProvider].
func Info(msg string, attrs ...slog.Attr) {
	InfoContext(DefaultContextProvider(), msg, attrs...)
}

// WarnContext logs at Warn level using the default logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.WarnContext(ctx, msg, attrs...)
}

// Warn logs at Warn level using the default logger and [DefaultContextProvider].
func Warn(msg string, attrs ...slog.Attr) {
	WarnContext(DefaultContextProvider(), msg, attrs...)
}

// ErrorContext logs at Error level using the default logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.ErrorContext(ctx, msg, attrs...)
}

// Error logs at Error level using the default logger and [DefaultContextProvider].
func Error(msg string, attrs ...slog.Attr) {
	ErrorContext(DefaultContextProvider(), msg, attrs...)
}

// With returns a copy of the default logger with the given attributes
// attached.
func With(attrs ...slog.Attr) Logger {
	return defaultLog.With(attrs...)
}

// Default returns the package-default logger, e.g. to pass to a component
// that wants a concrete [Logger] value rather than the package-level
// convenience functions.
func Default() Logger {
	return defaultLog
}
