package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/modbusdump/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modbusdump.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 65535, cfg.Capture.SnapLen)
	assert.True(t, cfg.Capture.Promiscuous)
	assert.Equal(t, 500*time.Millisecond, cfg.Capture.Timeout)
	assert.Equal(t, "pcap", cfg.Capture.Engine)
	assert.Equal(t, -1, cfg.Capture.LinkOffset)
	assert.Equal(t, uint16(502), cfg.Modbus.Port)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Empty(t, cfg.Output.File.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "prefixed", cfg.Log.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9502", cfg.Metrics.Listen)
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
modbusdump:
  capture:
    snaplen: 1514
    timeout: 2s
    filter: "tcp port 5020"
    engine: afpacket
    buffer_size_mb: 16
    link_offset: 14
    count: 10
  modbus:
    port: 5020
  output:
    format: JSON
    file:
      path: /tmp/modbus.jsonl
      max_size: 10
  log:
    level: debug
    format: pattern
  metrics:
    enabled: true
    listen: 127.0.0.1:9100
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 1514, cfg.Capture.SnapLen)
	assert.Equal(t, 2*time.Second, cfg.Capture.Timeout)
	assert.Equal(t, "tcp port 5020", cfg.Capture.Filter)
	assert.Equal(t, "afpacket", cfg.Capture.Engine)
	assert.Equal(t, 16, cfg.Capture.BufferSizeMB)
	assert.Equal(t, 14, cfg.Capture.LinkOffset)
	assert.Equal(t, 10, cfg.Capture.Count)
	assert.Equal(t, uint16(5020), cfg.Modbus.Port)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "/tmp/modbus.jsonl", cfg.Output.File.Path)
	assert.Equal(t, 10, cfg.Output.File.MaxSize)
	assert.Equal(t, 5, cfg.Output.File.MaxBackups)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "pattern", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	src := cfg.Capture.Source("eth1")
	assert.Equal(t, "eth1", src.Device)
	assert.Equal(t, 16, src.BufferSizeMB)
	assert.Equal(t, "tcp port 5020", src.Filter)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"log level", "modbusdump:\n  log:\n    level: chatty\n"},
		{"log format", "modbusdump:\n  log:\n    format: xml\n"},
		{"output format", "modbusdump:\n  output:\n    format: csv\n"},
		{"engine", "modbusdump:\n  capture:\n    engine: dpdk\n"},
		{"zero port", "modbusdump:\n  modbus:\n    port: 0\n"},
		{"snaplen", "modbusdump:\n  capture:\n    snaplen: 0\n"},
		{"link offset", "modbusdump:\n  capture:\n    link_offset: -2\n"},
		{"count", "modbusdump:\n  capture:\n    count: -1\n"},
		{"metrics listen", "modbusdump:\n  metrics:\n    enabled: true\n    listen: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			assert.ErrorIs(t, err, core.ErrConfigInvalid)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"), nil)
	assert.ErrorContains(t, err, "failed to read config file")
	assert.NotErrorIs(t, err, core.ErrConfigInvalid)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
modbusdump:
  capture:
    filter: "from file"
    snaplen: 2000
  modbus:
    port: 1502
`)
	t.Setenv("MODBUSDUMP_CAPTURE_FILTER", "from env")
	t.Setenv("MODBUSDUMP_CAPTURE_SNAPLEN", "3000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("filter", "", "")
	flags.Int("snaplen", 65535, "")
	flags.Uint16("port", 502, "")
	flags.Duration("timeout", 0, "")
	require.NoError(t, flags.Parse([]string{"--filter", "from flag", "--timeout", "1s"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "from flag", cfg.Capture.Filter)
	assert.Equal(t, 3000, cfg.Capture.SnapLen)
	// unset flag defaults do not override the file
	assert.Equal(t, uint16(1502), cfg.Modbus.Port)
	assert.Equal(t, time.Second, cfg.Capture.Timeout)
}

func TestValidateDirectly(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	cfg.Modbus.Port = 0
	err = cfg.ValidateAndApplyDefaults()
	require.ErrorIs(t, err, core.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "modbus.port")

	cfg.Modbus.Port = 502
	cfg.Log.Level = "DEBUG"
	require.NoError(t, cfg.ValidateAndApplyDefaults())
	assert.Equal(t, "debug", cfg.Log.Level)
}
