package logger

import (
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger emits structured JSON log lines with the service name, hostname,
// action and request id attached to every entry.
type Logger struct {
	service  string
	hostname string
	zl       *zap.Logger
}

// New creates a logger for the given service name.
func New(service string) *Logger {
	hostname, _ := os.Hostname()

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)

	zl, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		zl = zap.NewNop()
	}

	return &Logger{
		service:  service,
		hostname: hostname,
		zl:       zl,
	}
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// GenerateRequestID returns a fresh id for correlating log entries across
// one logical operation.
func GenerateRequestID() string {
	return uuid.NewString()
}

func (l *Logger) fields(action, requestID string, extra map[string]interface{}) []zap.Field {
	fields := []zap.Field{
		zap.String("service", l.service),
		zap.String("hostname", l.hostname),
		zap.String("action", action),
		zap.String("request_id", requestID),
	}
	for k, v := range extra {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

// Info logs an informational message.
func (l *Logger) Info(action, message, requestID string, extra map[string]interface{}) {
	l.zl.Info(message, l.fields(action, requestID, extra)...)
}

// Debug logs a debug message.
func (l *Logger) Debug(action, message, requestID string, extra map[string]interface{}) {
	l.zl.Debug(message, l.fields(action, requestID, extra)...)
}

// Error logs an error with the originating error attached.
func (l *Logger) Error(action, message, requestID string, err error, extra map[string]interface{}) {
	fields := l.fields(action, requestID, extra)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	l.zl.Error(message, fields...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() {
	_ = l.zl.Sync()
}
