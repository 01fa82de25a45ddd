package ports

import (
	"context"
	"io"

	"pcfg.dev/cli/internal/core/domain"
	"pcfg.dev/cli/internal/core/property"
)

// SourceRequest describes where a loader should look for property sources
type SourceRequest struct {
	BaseDir    string
	Location   string
	Profiles   []string
	Overrides  []string
	IncludeEnv bool
}

// SourceLoader defines the interface for loading ordered property sources.
// Sources are returned lowest precedence first.
type SourceLoader interface {
	// Load returns the sources this loader contributes for the request
	Load(ctx context.Context, req SourceRequest) ([]property.Source, error)

	// Name returns the loader name used in logs
	Name() string
}

// Renderer defines the interface for writing a resolution in one output format
type Renderer interface {
	// Format returns the format name selected on the command line
	Format() string

	// Render writes res to w
	Render(w io.Writer, res *domain.Resolution) error
}

// LoggingGateway defines the interface for logging operations
type LoggingGateway interface {
	// Log logs a message with the specified level
	Log(level LogLevel, message string, fields map[string]interface{})

	// LogError logs an error
	LogError(err error, message string, fields map[string]interface{})

	// LogResolution logs a summary of a finished resolution
	LogResolution(res *domain.Resolution, message string)

	// SetLogLevel sets the logging level
	SetLogLevel(level LogLevel)

	// GetLogLevel returns the current logging level
	GetLogLevel() LogLevel

	// ConfigureLogging configures logging settings
	ConfigureLogging(config *LoggingConfig) error
}

// LogLevel defines the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ParseLogLevel maps a level name onto a LogLevel, reporting false for
// unknown names.
func ParseLogLevel(s string) (LogLevel, bool) {
	switch LogLevel(s) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return LogLevel(s), true
	}
	return "", false
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	Level  LogLevel `json:"level"`
	Format string   `json:"format"` // "json" or "text"
	Output io.Writer
}
