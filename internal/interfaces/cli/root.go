package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"pcfg.dev/cli/internal/application/ports"
	"pcfg.dev/cli/internal/application/services"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// CLIContainer holds all the dependencies for CLI commands
type CLIContainer struct {
	ResolutionService *services.ResolutionService
	Logger            ports.LoggingGateway
	Settings          Settings
	MainContainer     interface{} // Will be set to *di.Container, avoiding circular import
}

// NewRootCommand RootCommand represents the base command when called without any subcommands
func NewRootCommand(container *CLIContainer) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "pcfg",
		Short: "pcfg - layered configuration resolver",
		Long: `pcfg resolves layered configuration files into one set of properties.

Sources are read from a location list, filtered by active profiles,
combined by precedence (later sources win, arrays are replaced whole)
and rebuilt into a nested tree that can be printed in several formats.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applySettings(container); err != nil {
				return fmt.Errorf("failed to apply settings: %w", err)
			}
			return nil
		},
	}

	// Set custom version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	// Add persistent flags
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&container.Settings.Debug, "debug", container.Settings.Debug, "Enable debug logging")
	flags.StringVar(&container.Settings.BaseDir, "base-dir", container.Settings.BaseDir, "Directory relative locations are resolved against (env "+EnvBaseDir+")")
	flags.StringVar(&container.Settings.RecordsDir, "records-dir", container.Settings.RecordsDir, "Directory run records are stored in (env "+EnvRecordsDir+")")
	flags.StringVar(&container.Settings.RecordFormat, "record-format", container.Settings.RecordFormat, "Run record encoding: yaml or cbor (env "+EnvRecordFormat+")")

	// Add subcommands
	rootCmd.AddCommand(NewResolveCommand(container))
	rootCmd.AddCommand(NewGetCommand(container))
	rootCmd.AddCommand(NewTreeCommand(container))
	rootCmd.AddCommand(NewProfilesCommand(container))
	rootCmd.AddCommand(NewRecordCommand(container))
	rootCmd.AddCommand(NewViewCommand(container))

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// applySettings validates the settings after flag parsing and hands them
// to the main container, which rebuilds what depends on them
func applySettings(container *CLIContainer) error {
	if err := container.Settings.Validate(); err != nil {
		return err
	}
	if container.Logger != nil {
		container.Logger.SetLogLevel(container.Settings.EffectiveLogLevel())
	}

	mainContainer, ok := container.MainContainer.(interface {
		ApplySettings(Settings) error
	})
	if !ok {
		return nil
	}
	return mainContainer.ApplySettings(container.Settings)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context, container *CLIContainer) {
	rootCmd := NewRootCommand(container)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
