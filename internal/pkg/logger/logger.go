package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a ports.Logger backed by logrus.
type Logger struct {
	log *logrus.Logger
}

// New creates a Logger writing to stderr. Verbose forces debug level, otherwise
// level is parsed with logrus.ParseLevel and falls back to warn.
func New(verbose bool, level string) *Logger {
	return NewWithWriter(os.Stderr, verbose, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(out io.Writer, verbose bool, level string) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: false, FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	l.SetLevel(lvl)
	return &Logger{log: l}
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger {
	return NewWithWriter(io.Discard, false, "panic")
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.log.WithFields(fields).Debug(msg)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.log.WithFields(fields).Info(msg)
}

func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.log.WithFields(fields).Warn(msg)
}

func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	l.log.WithFields(fields).WithError(err).Error(msg)
}
