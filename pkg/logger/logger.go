
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	s *zap.SugaredLogger
}

// New builds a production (JSON) logger at the given level: debug, info, warn or error.
// Unknown levels fall back to info.
func New(level string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{s: z.Sugar()}, nil
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() *Logger { return &Logger{s: zap.NewNop().Sugar()} }

func (l *Logger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.s.Warnf(format, args...) }
func (l *Logger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }

// Infow and Warnw log a message with structured key/value pairs.
func (l *Logger) Infow(msg string, kv ...any) { l.s.Infow(msg, kv...) }
func (l *Logger) Warnw(msg string, kv ...any) { l.s.Warnw(msg, kv...) }

// With returns a child logger that always carries kv.
func (l *Logger) With(kv ...any) *Logger { return &Logger{s: l.s.With(kv...)} }

func (l *Logger) Sync() error { return l.s.Sync() }
