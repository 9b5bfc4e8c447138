package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the process-wide logger and returns it.
// Loggers pulled from a context without one attached fall back to it.
func Setup(serviceName, level, format string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(out).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger().
		Level(ParseLevel(level))

	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
	return logger
}

func ParseLevel(value string) zerolog.Level {
	levelString := strings.ToLower(strings.TrimSpace(value))
	if levelString == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(levelString); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.InfoLevel
}

// With returns ctx carrying a child of its logger enriched with key=value.
func With(ctx context.Context, key string, value any) context.Context {
	l := zerolog.Ctx(ctx).With().Interface(key, value).Logger()
	return l.WithContext(ctx)
}

// WithRequestID attaches the request id to the context logger.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	l := zerolog.Ctx(ctx).With().Str("request_id", requestID).Logger()
	return l.WithContext(ctx)
}
