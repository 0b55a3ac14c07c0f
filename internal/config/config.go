// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"firestige.xyz/modbusdump/internal/core"
	"firestige.xyz/modbusdump/internal/log"
	"firestige.xyz/modbusdump/internal/report"
	"firestige.xyz/modbusdump/internal/source"
)

// Config is the whole static configuration of one modbusdump run.
// Maps to the `modbusdump:` root key in YAML.
type Config struct {
	Capture CaptureConfig    `mapstructure:"capture"`
	Modbus  ModbusConfig     `mapstructure:"modbus"`
	Output  OutputConfig     `mapstructure:"output"`
	Log     log.LoggerConfig `mapstructure:"log"`
	Metrics MetricsConfig    `mapstructure:"metrics"`
}

// ─── Capture ───

// CaptureConfig describes how frames are acquired.
type CaptureConfig struct {
	SnapLen      int           `mapstructure:"snaplen"`
	Promiscuous  bool          `mapstructure:"promiscuous"`
	Timeout      time.Duration `mapstructure:"timeout"` // 0 = block until a frame arrives
	Filter       string        `mapstructure:"filter"`  // BPF expression
	Engine       string        `mapstructure:"engine"`  // pcap | afpacket
	BufferSizeMB int           `mapstructure:"buffer_size_mb"`
	LinkOffset   int           `mapstructure:"link_offset"` // -1 = derive from link type
	Count        int           `mapstructure:"count"`       // 0 = unlimited
}

// Source converts the capture settings for device.
func (c CaptureConfig) Source(device string) source.Config {
	return source.Config{
		Device:       device,
		SnapLen:      c.SnapLen,
		Promiscuous:  c.Promiscuous,
		Timeout:      c.Timeout,
		Filter:       c.Filter,
		Engine:       c.Engine,
		BufferSizeMB: c.BufferSizeMB,
	}
}

// ─── Modbus ───

type ModbusConfig struct {
	Port uint16 `mapstructure:"port"`
}

// ─── Output ───

// OutputConfig selects the renderer of decoded frames and where they go.
type OutputConfig struct {
	Format string            `mapstructure:"format"` // text | json | yaml
	File   report.FileConfig `mapstructure:"file"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ValidateAndApplyDefaults validates configuration and fills values that
// cannot be expressed as viper defaults. Every failure wraps
// core.ErrConfigInvalid.
func (cfg *Config) ValidateAndApplyDefaults() error {
	// ── Log ──
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: invalid log level: %s (must be trace/debug/info/warn/error)", core.ErrConfigInvalid, cfg.Log.Level)
	}
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	switch cfg.Log.Format {
	case log.FormatPattern, log.FormatPrefixed, log.FormatJSON:
	default:
		return fmt.Errorf("%w: invalid log format: %s (must be pattern/prefixed/json)", core.ErrConfigInvalid, cfg.Log.Format)
	}

	// ── Output ──
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	switch cfg.Output.Format {
	case report.FormatText, report.FormatJSON, report.FormatYAML:
	default:
		return fmt.Errorf("%w: invalid output format: %s (must be text/json/yaml)", core.ErrConfigInvalid, cfg.Output.Format)
	}

	// ── Capture ──
	cfg.Capture.Engine = strings.ToLower(cfg.Capture.Engine)
	switch cfg.Capture.Engine {
	case source.EnginePcap, source.EngineAFPacket:
	default:
		return fmt.Errorf("%w: invalid capture engine: %s (must be pcap/afpacket)", core.ErrConfigInvalid, cfg.Capture.Engine)
	}
	if cfg.Capture.SnapLen <= 0 {
		return fmt.Errorf("%w: capture.snaplen must be positive, got %d", core.ErrConfigInvalid, cfg.Capture.SnapLen)
	}
	if cfg.Capture.Timeout < 0 {
		return fmt.Errorf("%w: capture.timeout must not be negative, got %s", core.ErrConfigInvalid, cfg.Capture.Timeout)
	}
	if cfg.Capture.LinkOffset < -1 {
		return fmt.Errorf("%w: capture.link_offset must be -1 or an offset, got %d", core.ErrConfigInvalid, cfg.Capture.LinkOffset)
	}
	if cfg.Capture.Count < 0 {
		return fmt.Errorf("%w: capture.count must not be negative, got %d", core.ErrConfigInvalid, cfg.Capture.Count)
	}
	if cfg.Capture.Engine == source.EngineAFPacket && cfg.Capture.BufferSizeMB <= 0 {
		return fmt.Errorf("%w: capture.buffer_size_mb must be positive for the afpacket engine", core.ErrConfigInvalid)
	}

	// ── Modbus ──
	if cfg.Modbus.Port == 0 {
		return fmt.Errorf("%w: modbus.port must not be 0", core.ErrConfigInvalid)
	}

	// ── Metrics ──
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("%w: metrics.listen is required when metrics.enabled=true", core.ErrConfigInvalid)
	}

	return nil
}
