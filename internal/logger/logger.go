package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type contextKey struct{}

var loggerKey = contextKey{}

// Options controls how Initialize builds the default logger.
type Options struct {
	Debug   bool
	Verbose bool
	// Annotations renders warnings and errors as GitHub Actions workflow commands.
	Annotations bool
	Writer      io.Writer
}

// Initialize installs the process-wide default logger. Info is the default level
// because progress lines are the only console feedback a CI step gets.
func Initialize(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug || opts.Verbose {
		level = slog.LevelDebug
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handler := NewPrettyHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.Debug,
	})
	handler.annotations = opts.Annotations

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func With(ctx context.Context, args ...any) context.Context {
	l := FromContext(ctx).With(args...)
	return WithLogger(ctx, l)
}

func Debug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

func Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, slog.Any("error", err))
	}
	FromContext(ctx).Error(msg, args...)
}
