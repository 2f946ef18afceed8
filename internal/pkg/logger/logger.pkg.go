package logger

import (
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Info    = log.New(os.Stdout, "INFO: ", log.LstdFlags)
	Warning = log.New(os.Stdout, "WARNING: ", log.LstdFlags)
	Error   = log.New(os.Stderr, "ERROR: ", log.LstdFlags)
	Debug   = log.New(os.Stdout, "DEBUG: ", log.LstdFlags)
	HTTP    = log.New(os.Stdout, "HTTP: ", log.LstdFlags)

	base = zap.NewNop()
)

// Setup replaces the package loggers with zap-backed ones. LOG_LEVEL and
// LOG_FORMAT (json|console) are read from the environment.
func Setup() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	if format := strings.TrimSpace(os.Getenv("LOG_FORMAT")); format == "console" {
		cfg.Encoding = "console"
	}

	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	z, err := cfg.Build()
	if err != nil {
		Error.Println("failed to build zap logger, keeping std loggers:", err)
		return
	}

	use(z)
}

func use(z *zap.Logger) {
	base = z
	Info = stdAt(z, zapcore.InfoLevel, "")
	Warning = stdAt(z, zapcore.WarnLevel, "")
	Error = stdAt(z, zapcore.ErrorLevel, "")
	Debug = stdAt(z, zapcore.DebugLevel, "")
	HTTP = stdAt(z.Named("http"), zapcore.InfoLevel, "")
}

func stdAt(z *zap.Logger, level zapcore.Level, prefix string) *log.Logger {
	l, err := zap.NewStdLogAt(z, level)
	if err != nil {
		return log.New(os.Stdout, prefix, log.LstdFlags)
	}
	return l
}

// Zap returns the structured logger behind the package loggers.
func Zap() *zap.Logger {
	return base
}

// Sync flushes buffered entries.
func Sync() {
	_ = base.Sync()
}
