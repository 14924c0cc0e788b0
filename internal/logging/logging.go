// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Options controls Setup.
type Options struct {
	// Level is DEBUG, INFO, WARN or ERROR. Anything else means INFO.
	Level string
	// Dev switches stdout output to the text handler.
	Dev bool
	// SentryDSN enables the Sentry fan-out for ERROR records when set.
	SentryDSN   string
	Environment string
	Release     string
	// Output defaults to os.Stdout.
	Output io.Writer
}

// Setup installs the default logger. ERROR-level records carry a stack
// trace. The returned func flushes Sentry and should be deferred by main.
func Setup(opts Options) (func(), error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level), AddSource: true}

	var base slog.Handler
	if opts.Dev {
		base = slog.NewTextHandler(out, hopts)
	} else {
		base = slog.NewJSONHandler(out, hopts)
	}
	handler := slog.Handler(&stackHandler{Handler: base})

	flush := func() {}
	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Environment,
			Release:     opts.Release,
		})
		if err != nil {
			return flush, fmt.Errorf("sentry init: %w", err)
		}
		handler = slogmulti.Fanout(
			handler,
			slogsentry.Option{Level: slog.LevelError}.NewSentryHandler(),
		)
		flush = func() { sentry.Flush(2 * time.Second) }
	}

	slog.SetDefault(slog.New(handler))
	return flush, nil
}

// ParseLevel maps a LOG_LEVEL value to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Fatal logs at Error level and exits with code 1.
func Fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

// stackHandler appends a stack trace to ERROR+ records.
type stackHandler struct {
	slog.Handler
}

func (h *stackHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		r.AddAttrs(slog.String("stacktrace", string(buf[:n])))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *stackHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stackHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *stackHandler) WithGroup(name string) slog.Handler {
	return &stackHandler{Handler: h.Handler.WithGroup(name)}
}
