package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

type Log struct {
	Format    LogFormat  `env:"LOG_FORMAT" envDefault:"JSON"`
	Level     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	AddSource bool       `env:"LOG_ADD_SOURCE" envDefault:"false"`
}

// LogFormat selects the slog handler: JSON for collectors, TEXT for a terminal.
type LogFormat uint8

const (
	LogFormatJSON LogFormat = iota
	LogFormatText
)

var logFormatNames = []string{"JSON", "TEXT"}

func (f LogFormat) String() string {
	return logFormatNames[f]
}

// UnmarshalText implements [encoding.TextUnmarshaler]. Matching is case-insensitive.
func (f *LogFormat) UnmarshalText(text []byte) error {
	i := slices.Index(logFormatNames, strings.ToUpper(string(text)))
	if i < 0 {
		return fmt.Errorf("unknown log format: %s", text)
	}
	*f = LogFormat(i)
	return nil
}

func (f LogFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
