package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

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

func (l LogLevel) toLogrus() logrus.Level {
	switch l {
	case DEBUG:
		return logrus.DebugLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	case FATAL:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// ParseLevel maps a level name such as "debug" or "WARN" to a LogLevel.
func ParseLevel(s string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	case "FATAL":
		return FATAL, true
	}
	return INFO, false
}

// Logger is a leveled logger backed by logrus. Loggers derived with
// WithField share the parent's output and level.
type Logger struct {
	entry *logrus.Entry
}

var (
	defaultLogger *Logger
	once          sync.Once
)

type Config struct {
	Level      LogLevel
	Prefix     string // logged as the "component" field
	Colorize   bool
	ShowTime   bool
	TimeFormat string
	JSON       bool
	Output     io.Writer
}

// DefaultConfig logs INFO and above to stderr, leaving stdout to command
// output.
func DefaultConfig() Config {
	return Config{
		Level:      INFO,
		Colorize:   true,
		ShowTime:   true,
		TimeFormat: "2006-01-02 15:04:05",
		Output:     os.Stderr,
	}
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = "2006-01-02 15:04:05"
	}

	base := logrus.New()
	base.SetOutput(cfg.Output)
	base.SetLevel(cfg.Level.toLogrus())
	if cfg.JSON {
		base.SetFormatter(&logrus.JSONFormatter{
			DisableTimestamp: !cfg.ShowTime,
			TimestampFormat:  cfg.TimeFormat,
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			DisableColors:    !cfg.Colorize,
			FullTimestamp:    cfg.ShowTime,
			DisableTimestamp: !cfg.ShowTime,
			TimestampFormat:  cfg.TimeFormat,
		})
	}

	entry := logrus.NewEntry(base)
	if cfg.Prefix != "" {
		entry = entry.WithField("component", cfg.Prefix)
	}
	return &Logger{entry: entry}
}

// GetLogger returns the process-wide logger. Its level comes from LOG_LEVEL
// and LOG_FORMAT=json switches it to JSON lines.
func GetLogger() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()
		if lvl, ok := ParseLevel(os.Getenv("LOG_LEVEL")); ok {
			cfg.Level = lvl
		}
		cfg.JSON = strings.EqualFold(os.Getenv("LOG_FORMAT"), "json")
		defaultLogger = New(cfg)
	})
	return defaultLogger
}

// WithField returns a logger that adds key=value to every entry.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.entry.Logger.SetLevel(level.toLogrus())
}

func (l *Logger) SetOutput(w io.Writer) {
	l.entry.Logger.SetOutput(w)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

// Fatalf logs at FATAL level and exits the program
func (l *Logger) Fatalf(format string, args ...any) {
	l.entry.Fatalf(format, args...)
}

// Package-level convenience functions using the default logger

func Debugf(format string, args ...any) {
	GetLogger().Debugf(format, args...)
}

func Infof(format string, args ...any) {
	GetLogger().Infof(format, args...)
}

func Warnf(format string, args ...any) {
	GetLogger().Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	GetLogger().Errorf(format, args...)
}

func Fatalf(format string, args ...any) {
	GetLogger().Fatalf(format, args...)
}

func SetLevel(level LogLevel) {
	GetLogger().SetLevel(level)
}

func SetOutput(w io.Writer) {
	GetLogger().SetOutput(w)
}
