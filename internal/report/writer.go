package report

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig sends output to a size rotated file instead of stdout.
type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`    // megabytes
	MaxBackups int    `mapstructure:"max_backups"` // number of backups
	MaxAge     int    `mapstructure:"max_age"`     // days
	Compress   bool   `mapstructure:"compress"`
}

// NewWriter returns the output for decoded frames: a lumberjack logger when
// cfg.Path is set, stdout otherwise. Closing stdout is a no-op.
func NewWriter(cfg FileConfig, stdout io.Writer) io.WriteCloser {
	if cfg.Path == "" {
		return nopCloser{stdout}
	}
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
