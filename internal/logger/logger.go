package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gopkg.in/natefinch/lumberjack.v2"
)

func New() zerolog.Logger {
	return newLogger(os.Stdout, levelFromEnv())
}

// WithFile tees log output into a size-rotated file.
func WithFile(path string, level zerolog.Level) zerolog.Logger {
	rotating := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return newLogger(io.MultiWriter(os.Stdout, rotating), level)
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(level)
}

// the logger is built before config so it reads its own env vars
func levelFromEnv() zerolog.Level {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func provide() zerolog.Logger {
	if path := os.Getenv("LOG_FILE"); path != "" {
		return WithFile(path, levelFromEnv())
	}
	return New()
}

var Module = fx.Provide(provide)
