package logging

import (
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes JSON lines to the process-wide log and keeps a separate
// append-only error log for failures that must outlive the session.
type Logger struct {
	main      *zap.Logger
	errs      *zap.Logger
	debugMode bool
}

// LogEntry is the shape of one line in the process-wide log.
type LogEntry struct {
	Level     string    `json:"level"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
}

// New returns a logger writing to w. Errors are not persisted separately.
func New(w io.Writer, debug bool) *Logger {
	return NewWithErrorLog(w, nil, debug)
}

// NewWithErrorLog returns a logger writing JSON lines to w and, when errLog is
// non-nil, plain console lines for every error to errLog.
func NewWithErrorLog(w io.Writer, errLog io.Writer, debug bool) *Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	l := &Logger{
		main:      zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.Lock(zapcore.AddSync(w)), level)),
		errs:      zap.NewNop(),
		debugMode: debug,
	}
	if errLog != nil {
		l.errs = zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig()), zapcore.Lock(zapcore.AddSync(errLog)), zapcore.ErrorLevel))
	}
	return l
}

// Nop discards everything. Useful for tests and library callers.
func Nop() *Logger {
	return &Logger{main: zap.NewNop(), errs: zap.NewNop()}
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		LevelKey:       "level",
		TimeKey:        "timestamp",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := jsonEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.ConsoleSeparator = " - "
	return cfg
}

func fields(data any) []zap.Field {
	if data == nil {
		return nil
	}
	return []zap.Field{zap.Any("data", data)}
}

func (l *Logger) Info(msg string, data any) {
	l.main.Info(msg, fields(data)...)
}

func (l *Logger) Error(msg string, data any) {
	l.main.Error(msg, fields(data)...)
}

func (l *Logger) Debug(msg string, data any) {
	if l.debugMode {
		l.main.Debug(msg, fields(data)...)
	}
}

// Persist logs msg as an error to both the process-wide log and the error log.
func (l *Logger) Persist(msg string, data any) {
	l.main.Error(msg, fields(data)...)
	l.errs.Error(msg, fields(data)...)
}

// Sync flushes both sinks.
func (l *Logger) Sync() error {
	err := l.main.Sync()
	if errErr := l.errs.Sync(); err == nil {
		err = errErr
	}
	return err
}
