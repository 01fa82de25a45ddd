package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"pcfg.dev/cli/internal/application/ports"
	"pcfg.dev/cli/internal/core/domain"
)

// SlogGateway implements ports.LoggingGateway on log/slog.
type SlogGateway struct {
	mu     sync.RWMutex
	level  *slog.LevelVar
	logger *slog.Logger
	name   ports.LogLevel
}

// NewSlogGateway returns a text logger on stderr at info level.
func NewSlogGateway() *SlogGateway {
	g := &SlogGateway{level: new(slog.LevelVar)}
	if err := g.ConfigureLogging(&ports.LoggingConfig{Level: ports.LogLevelInfo}); err != nil {
		panic(err)
	}
	return g
}

func (g *SlogGateway) Log(level ports.LogLevel, message string, fields map[string]interface{}) {
	g.mu.RLock()
	logger := g.logger
	g.mu.RUnlock()
	logger.Log(context.Background(), toSlog(level), message, attrs(fields)...)
}

func (g *SlogGateway) LogError(err error, message string, fields map[string]interface{}) {
	args := append([]any{slog.String("error", err.Error())}, attrs(fields)...)
	g.mu.RLock()
	logger := g.logger
	g.mu.RUnlock()
	logger.Error(message, args...)
}

func (g *SlogGateway) LogResolution(res *domain.Resolution, message string) {
	g.Log(ports.LogLevelInfo, message, map[string]interface{}{
		"resolution": res.ID,
		"profiles":   res.ProfilesString(),
		"sources":    len(res.Sources),
		"properties": res.Properties.Len(),
		"digest":     res.Digest,
	})
}

func (g *SlogGateway) SetLogLevel(level ports.LogLevel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.name = level
	g.level.Set(toSlog(level))
}

func (g *SlogGateway) GetLogLevel() ports.LogLevel {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.name
}

// ConfigureLogging replaces the handler. Output defaults to stderr and
// Format to text.
func (g *SlogGateway) ConfigureLogging(config *ports.LoggingConfig) error {
	if config == nil {
		return fmt.Errorf("logging config is nil")
	}
	level := config.Level
	if level == "" {
		level = ports.LogLevelInfo
	}
	if _, ok := ports.ParseLogLevel(string(level)); !ok {
		return fmt.Errorf("unknown log level %q", level)
	}
	var out io.Writer = os.Stderr
	if config.Output != nil {
		out = config.Output
	}

	opts := &slog.HandlerOptions{Level: g.level}
	var handler slog.Handler
	switch config.Format {
	case "", "text":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		return fmt.Errorf("unknown log format %q", config.Format)
	}

	g.SetLogLevel(level)
	g.mu.Lock()
	g.logger = slog.New(handler)
	g.mu.Unlock()
	return nil
}

func toSlog(level ports.LogLevel) slog.Level {
	switch level {
	case ports.LogLevelDebug:
		return slog.LevelDebug
	case ports.LogLevelWarn:
		return slog.LevelWarn
	case ports.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// attrs turns fields into slog attributes sorted by key so output is stable.
func attrs(fields map[string]interface{}) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}

var _ ports.LoggingGateway = (*SlogGateway)(nil)
