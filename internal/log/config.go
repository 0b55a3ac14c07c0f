package log

// Output formats.
const (
	FormatPattern  = "pattern"
	FormatPrefixed = "prefixed"
	FormatJSON     = "json"
)

// LoggerConfig configures the process logger.
type LoggerConfig struct {
	Level   string          `mapstructure:"level"`
	Format  string          `mapstructure:"format"`
	Pattern string          `mapstructure:"pattern"`
	Time    string          `mapstructure:"time"`
	File    FileAppenderOpt `mapstructure:"file"`
}

// DefaultPattern is used when the pattern format has no pattern.
const DefaultPattern = "%time [%level] %caller: %msg %field\n"

// DefaultTimeLayout is used when no time layout is configured.
const DefaultTimeLayout = "2006-01-02 15:04:05.000"
