package cli

import (
	"fmt"

	"pcfg.dev/cli/internal/application/ports"
	"pcfg.dev/cli/internal/infrastructure/record"
)

// Environment variables that configure the tool itself. They are never
// read as properties.
const (
	EnvBaseDir      = "PCFG_BASE_DIR"
	EnvRecordsDir   = "PCFG_RECORDS_DIR"
	EnvRecordFormat = "PCFG_RECORD_FORMAT"
	EnvLogLevel     = "PCFG_LOG_LEVEL"
)

// SettingsEnvVars lists the variables read by LoadSettings.
var SettingsEnvVars = []string{EnvBaseDir, EnvRecordsDir, EnvRecordFormat, EnvLogLevel}

// Settings holds the tool's own configuration
type Settings struct {
	BaseDir      string
	RecordsDir   string
	RecordFormat string
	LogLevel     string
	Debug        bool
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() Settings {
	return Settings{
		BaseDir:      ".",
		RecordsDir:   ".pcfg/records",
		RecordFormat: string(record.FormatYAML),
		LogLevel:     string(ports.LogLevelWarn),
	}
}

// LoadSettings applies environment overrides to the defaults
func LoadSettings(getenv func(string) string) Settings {
	s := DefaultSettings()
	set := func(key string, field *string) {
		if v := getenv(key); v != "" {
			*field = v
		}
	}
	set(EnvBaseDir, &s.BaseDir)
	set(EnvRecordsDir, &s.RecordsDir)
	set(EnvRecordFormat, &s.RecordFormat)
	set(EnvLogLevel, &s.LogLevel)
	return s
}

// EffectiveLogLevel returns debug when Debug is set, else LogLevel
func (s Settings) EffectiveLogLevel() ports.LogLevel {
	if s.Debug {
		return ports.LogLevelDebug
	}
	return ports.LogLevel(s.LogLevel)
}

// Validate checks the settings that have a closed set of values
func (s Settings) Validate() error {
	if _, err := record.ParseFormat(s.RecordFormat); err != nil {
		return err
	}
	if _, ok := ports.ParseLogLevel(string(s.EffectiveLogLevel())); !ok {
		return fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s.LogLevel)
	}
	return nil
}
