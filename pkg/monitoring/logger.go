package monitoring

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents logging severity, kept distinct from zap's own level
// type so callers throughout the simulator don't need a zap import.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a config string (the teacher's LOG_LEVEL convention:
// "debug", "info", "warn", "error", "fatal", case-insensitive) to a LogLevel,
// defaulting to INFO for anything unrecognized.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "warn":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger wraps a zap SugaredLogger behind the field/level surface the rest
// of the simulator expects (WithField, Infof, Warnf, ...).
type Logger struct {
	sugar *zap.SugaredLogger
	atom  zap.AtomicLevel
}

// NewLogger creates a logger at the given level, writing JSON lines to
// stdout.
func NewLogger(level LogLevel) *Logger {
	atom := zap.NewAtomicLevelAt(level.zapLevel())

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.Lock(os.Stdout), atom)
	logger := zap.New(core)

	return &Logger{sugar: logger.Sugar(), atom: atom}
}

// Component returns a logger tagged with a "component" field, the
// convention every package in this module uses to identify its own log
// lines (e.g. monitoring.Component("chain")).
func Component(name string) *Logger {
	return globalLogger.WithField("component", name)
}

// WithField returns a derived logger carrying one extra structured field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(key, value), atom: l.atom}
}

// WithFields returns a derived logger carrying several extra structured
// fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{sugar: l.sugar.With(args...), atom: l.atom}
}

func (l *Logger) Debug(msg string)  { l.sugar.Debug(msg) }
func (l *Logger) Info(msg string)   { l.sugar.Info(msg) }
func (l *Logger) Warn(msg string)   { l.sugar.Warn(msg) }
func (l *Logger) Error(msg string)  { l.sugar.Error(msg) }
func (l *Logger) Fatal(msg string)  { l.sugar.Fatal(msg) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// Global logger instance, mirroring the teacher's package-level convenience
// functions.
var globalLogger = NewLogger(INFO)

// SetGlobalLevel sets the global logger's level (and, transitively, every
// Component() logger's level, since they share globalLogger's atomic level).
func SetGlobalLevel(level LogLevel) {
	globalLogger.atom.SetLevel(level.zapLevel())
}

func Debug(msg string)                          { globalLogger.Debug(msg) }
func Debugf(format string, args ...interface{}) { globalLogger.Debugf(format, args...) }
func Info(msg string)                           { globalLogger.Info(msg) }
func Infof(format string, args ...interface{})  { globalLogger.Infof(format, args...) }
func Warn(msg string)                           { globalLogger.Warn(msg) }
func Warnf(format string, args ...interface{})  { globalLogger.Warnf(format, args...) }
func Error(msg string)                          { globalLogger.Error(msg) }
func Errorf(format string, args ...interface{}) { globalLogger.Errorf(format, args...) }
func Fatal(msg string)                          { globalLogger.Fatal(msg) }
func Fatalf(format string, args ...interface{}) { globalLogger.Fatalf(format, args...) }
