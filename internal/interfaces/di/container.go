package di

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pcfg.dev/cli/internal/application/ports"
	"pcfg.dev/cli/internal/application/services"
	"pcfg.dev/cli/internal/infrastructure/logging"
	"pcfg.dev/cli/internal/infrastructure/record"
	"pcfg.dev/cli/internal/infrastructure/source"
	"pcfg.dev/cli/internal/interfaces/cli"
)

// Container holds all application dependencies
type Container struct {
	mu sync.Mutex

	// Configuration
	Settings cli.Settings

	// Infrastructure
	Logger      *logging.SlogGateway
	Loaders     []ports.SourceLoader
	RecordStore *record.FileStore

	// Application services
	ResolutionService *services.ResolutionService

	// CLI
	CLIContainer *cli.CLIContainer
}

// NewContainer creates and configures the dependency injection container
func NewContainer() (*Container, error) {
	return NewContainerWithSettings(cli.LoadSettings(os.Getenv))
}

// NewContainerWithSettings builds the container from explicit settings
func NewContainerWithSettings(settings cli.Settings) (*Container, error) {
	container := &Container{
		Settings: settings,
		Logger:   logging.NewSlogGateway(),
	}

	if err := container.initializeComponents(); err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return container, nil
}

// initializeComponents initializes all components with proper dependencies
func (c *Container) initializeComponents() error {
	// 1. Validate settings and configure logging
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	if err := c.Logger.ConfigureLogging(&ports.LoggingConfig{
		Level:  c.Settings.EffectiveLogLevel(),
		Format: "text",
		Output: os.Stderr,
	}); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	// 2. Initialize source loaders, lowest precedence first
	c.Loaders = []ports.SourceLoader{
		source.NewFileLoader(source.WithLogger(c.Logger)),
		source.NewEnvLoader(source.WithExcluded(cli.SettingsEnvVars...)),
		source.NewOverrideLoader(),
	}

	// 3. Initialize the record store and the application service
	if err := c.buildServices(); err != nil {
		return err
	}

	// 4. Initialize CLI container
	c.CLIContainer = &cli.CLIContainer{
		ResolutionService: c.ResolutionService,
		Logger:            c.Logger,
		Settings:          c.Settings,
		MainContainer:     c, // Reference to self for settings overrides
	}

	c.Logger.Log(ports.LogLevelDebug, "Dependency injection container initialized", map[string]interface{}{
		"base_dir":    c.Settings.BaseDir,
		"records_dir": c.recordsDir(),
	})
	return nil
}

func (c *Container) buildServices() error {
	format, err := record.ParseFormat(c.Settings.RecordFormat)
	if err != nil {
		return err
	}
	c.RecordStore = record.NewFileStore(c.recordsDir(), format)
	c.ResolutionService = services.NewResolutionService(c.Loaders, nil, c.RecordStore, c.Logger)
	return nil
}

// recordsDir resolves a relative records directory against the base directory
func (c *Container) recordsDir() string {
	if filepath.IsAbs(c.Settings.RecordsDir) {
		return c.Settings.RecordsDir
	}
	return filepath.Join(c.Settings.BaseDir, c.Settings.RecordsDir)
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return c.CLIContainer
}

// ApplySettings rebuilds the settings-dependent components after flags
// have been parsed
func (c *Container) ApplySettings(settings cli.Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := settings.Validate(); err != nil {
		return err
	}
	if settings == c.Settings {
		return nil
	}

	c.Settings = settings
	c.Logger.SetLogLevel(settings.EffectiveLogLevel())
	if err := c.buildServices(); err != nil {
		return fmt.Errorf("failed to rebuild services: %w", err)
	}
	if c.CLIContainer != nil {
		c.CLIContainer.ResolutionService = c.ResolutionService
		c.CLIContainer.Settings = settings
	}

	c.Logger.Log(ports.LogLevelDebug, "Applied settings", map[string]interface{}{
		"base_dir":      settings.BaseDir,
		"records_dir":   c.recordsDir(),
		"record_format": settings.RecordFormat,
	})
	return nil
}

// HealthCheck verifies that all components are wired
func (c *Container) HealthCheck(ctx context.Context) error {
	if c.ResolutionService == nil {
		return fmt.Errorf("resolution service not initialized")
	}
	if c.RecordStore == nil {
		return fmt.Errorf("record store not initialized")
	}
	if len(c.Loaders) == 0 {
		return fmt.Errorf("no source loaders configured")
	}
	if _, err := c.RecordStore.List(ctx); err != nil {
		return fmt.Errorf("record store unavailable: %w", err)
	}
	return nil
}

