package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// rootKey wraps every key, so `modbusdump.log.level` is read from the YAML
// root `modbusdump:` and from env MODBUSDUMP_LOG_LEVEL.
const rootKey = "modbusdump"

type configRoot struct {
	Modbusdump Config `mapstructure:"modbusdump"`
}

// FlagKeys maps command line flag names to configuration keys. Flags that
// were set on the command line win over every other source.
var FlagKeys = map[string]string{
	"snaplen":      "capture.snaplen",
	"promiscuous":  "capture.promiscuous",
	"timeout":      "capture.timeout",
	"filter":       "capture.filter",
	"engine":       "capture.engine",
	"buffer-size":  "capture.buffer_size_mb",
	"link-offset":  "capture.link_offset",
	"count":        "capture.count",
	"port":         "modbus.port",
	"format":       "output.format",
	"output":       "output.file.path",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"metrics":      "metrics.enabled",
	"metrics-addr": "metrics.listen",
}

// Load merges defaults, the optional YAML file at path, MODBUSDUMP_*
// environment variables and flags, in increasing precedence.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(rootKey+"."+key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var root configRoot
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&root, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Modbusdump

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
func setDefaults(v *viper.Viper) {
	d := func(key string, value interface{}) { v.SetDefault(rootKey+"."+key, value) }

	// Capture defaults
	d("capture.snaplen", 65535)
	d("capture.promiscuous", true)
	d("capture.timeout", "500ms")
	d("capture.filter", "")
	d("capture.engine", "pcap")
	d("capture.buffer_size_mb", 8)
	d("capture.link_offset", -1)
	d("capture.count", 0)

	// Modbus defaults
	d("modbus.port", 502)

	// Output defaults
	d("output.format", "text")
	d("output.file.path", "")
	d("output.file.max_size", 100)
	d("output.file.max_backups", 5)
	d("output.file.max_age", 30)
	d("output.file.compress", false)

	// Log defaults
	d("log.level", "info")
	d("log.format", "prefixed")
	d("log.pattern", "%time [%level] %caller: %msg %field\n")
	d("log.time", "2006-01-02 15:04:05.000")
	d("log.file.filename", "")
	d("log.file.max_size", 100)
	d("log.file.max_backups", 5)
	d("log.file.max_age", 30)
	d("log.file.compress", true)

	// Metrics defaults
	d("metrics.enabled", false)
	d("metrics.listen", ":9502")
	d("metrics.path", "/metrics")
}
