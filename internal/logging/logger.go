package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes diagnostics to stderr so stdout only carries the push status
type Logger struct {
	*zap.Logger
}

// NewLogger builds a logger at level ("debug", "info", "warn", "error") using
// format "console" or "json", writing to w
func NewLogger(level, format string, w io.Writer) (*Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch format {
	case "", "console":
		config.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(config)
	case "json":
		encoder = zapcore.NewJSONEncoder(config)
	default:
		return nil, fmt.Errorf("invalid log format %q: expected console or json", format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(zapLevel))
	return &Logger{zap.New(core)}, nil
}

// LevelFor returns "debug" when the runner has step debugging enabled,
// otherwise level
func LevelFor(level string, runnerDebug string) string {
	if runnerDebug == "1" {
		return "debug"
	}
	return level
}
