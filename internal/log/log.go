// Package log is the process wide logger, a logrus backend behind a small
// interface.
package log

import (
	"io"
	"os"
	"sync"
)

type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})

	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	Panic(args ...interface{})
	Panicf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsTraceEnabled() bool
	IsDebugEnabled() bool
	IsInfoEnabled() bool
}

var (
	mu     sync.RWMutex
	logger Logger
	output *MultiWriter
)

func init() {
	l, _ := newLogrus(&LoggerConfig{Level: "info"}, NewMultiWriter().Add(os.Stderr))
	logger = l
}

// GetLogger returns the process logger. Before Init it logs at info level
// to stderr.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Init replaces the process logger. Lines go to stderr, plus a rotated file
// when cfg.File.Filename is set. Stdout is left to decoded output.
func Init(cfg *LoggerConfig) error {
	return InitWithWriter(cfg, os.Stderr)
}

// InitWithWriter is Init with console lines sent to w.
func InitWithWriter(cfg *LoggerConfig, w io.Writer) error {
	out := NewMultiWriter().Add(w).AddFileAppender(cfg.File)
	l, err := newLogrus(cfg, out)
	if err != nil {
		_ = out.Close()
		return err
	}

	mu.Lock()
	prev := output
	logger, output = l, out
	mu.Unlock()

	if prev != nil {
		return prev.Close()
	}
	return nil
}

// Close releases the file appender, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if output == nil {
		return nil
	}
	err := output.Close()
	output = nil
	return err
}
