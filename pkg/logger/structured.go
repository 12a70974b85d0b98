package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog = zerolog.New(os.Stdout).With().Timestamp().Logger()

// InitStructured initializes the structured zerolog logger
func InitStructured(env string) {
	InitWithWriter(env, nil)
}

// InitWithWriter is InitStructured with an explicit sink (nil = stdout)
func InitWithWriter(env string, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}

	var w io.Writer = out
	if env == "development" || env == "dev" || env == "local" {
		// Pretty console output for development
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zlog = zerolog.New(w).With().
		Timestamp().
		Str("service", "campusloop-backend").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// WithRequestID returns a logger with request_id field
func WithRequestID(requestID string) zerolog.Logger {
	return zlog.With().Str("request_id", requestID).Logger()
}

// FromContext returns the logger attached to ctx by the request logger,
// or the global logger when there is none
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l != zerolog.DefaultContextLogger && l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	return &zlog
}

// Info printf 스타일 info 로그 (부트스트랩용)
func Info(format string, args ...interface{}) {
	zlog.Info().Msg(fmt.Sprintf(format, args...))
}

// Warn printf 스타일 warn 로그
func Warn(format string, args ...interface{}) {
	zlog.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error printf 스타일 error 로그
func Error(format string, args ...interface{}) {
	zlog.Error().Msg(fmt.Sprintf(format, args...))
}
