// Package logger provides structured logging for the simulation server.
// Every state-changing action should be traceable through this.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap sugared logger behind the small surface the rest
// of the server uses.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New creates a production logger writing JSON lines to stdout.
func New() *Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Config is static; Build only fails on invalid output paths.
		z = zap.NewNop()
	}
	return &Logger{sugar: z.Sugar()}
}

// NewNop creates a logger that discards everything. For tests.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// Info logs informational messages. Accepts printf-style args.
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs warning messages.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs error messages.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Event logs a simulation event as structured key/values.
func (l *Logger) Event(eventType, subject, details string) {
	l.sugar.Infow("event",
		"type", eventType,
		"subject", subject,
		"details", details,
	)
}

// Sync flushes buffered log entries. Call on shutdown.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}
