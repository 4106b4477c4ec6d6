// Package log carries a slog.Logger in a context.
//
// Library packages log through the context they are handed and never pick a sink
// themselves. Commands install one with Stderr or Discard, tests with WithTB.
package log

import (
	"context"
	"io"
	stdlog "log"
	"os"
	"runtime/debug"
	"testing"
	"time"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"
	"cdr.dev/slog/sloggers/slogtest"

	"oss.terrastruct.com/m2/lib/env"
)

var fallback = slog.Make(sloghuman.Sink(os.Stderr)).Named("m2")

type loggerKey struct{}

func from(ctx context.Context) slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(slog.Logger); ok {
		return l
	}
	fallback.Warn(ctx, "no logger in context, see lib/log.With", slog.F("stack", string(debug.Stack())))
	return fallback
}

func With(ctx context.Context, l slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// WithTB logs to t. Debug entries are kept when $DEBUG is set.
func WithTB(ctx context.Context, t testing.TB, opts *slogtest.Options) context.Context {
	l := slogtest.Make(t, opts)
	if env.Debug() {
		l = l.Leveled(slog.LevelDebug)
	}
	return With(ctx, l)
}

// Stderr logs human readable entries to stderr and routes the standard library logger
// through it.
func Stderr(ctx context.Context, debug bool) context.Context {
	l := slog.Make(sloghuman.Sink(os.Stderr))
	if debug || env.Debug() {
		l = l.Leveled(slog.LevelDebug)
	}
	stdlog.SetOutput(slog.Stdlib(ctx, l, slog.LevelInfo).Writer())
	return With(ctx, l)
}

// Discard drops every entry. Commands that report through cmdlog use it by default.
func Discard(ctx context.Context) context.Context {
	return With(ctx, slog.Make(sloghuman.Sink(io.Discard)))
}

func Debug(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	from(ctx).Debug(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	from(ctx).Warn(ctx, msg, fields...)
}

// WithTimeout is context.WithTimeout except that $M2_TIMEOUT, in seconds, overrides
// timeout. A timeout that is not positive means no deadline.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if t, ok := env.Timeout(); ok {
		timeout = t
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
