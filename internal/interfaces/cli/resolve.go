package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pcfg.dev/cli/internal/application/services"
	"pcfg.dev/cli/internal/infrastructure/render"
	"pcfg.dev/cli/internal/infrastructure/source"
)

// overrideList collects repeated --set key=value flags, rejecting
// malformed pairs at parse time
type overrideList []string

func (o *overrideList) String() string { return "[" + strings.Join(*o, ",") + "]" }

func (o *overrideList) Set(v string) error {
	if _, _, err := source.ParseOverride(v); err != nil {
		return err
	}
	*o = append(*o, v)
	return nil
}

func (o *overrideList) Type() string { return "key=value" }

var _ pflag.Value = (*overrideList)(nil)

// ResolveFlags holds the flags shared by every command that resolves
type ResolveFlags struct {
	Location  string
	Profiles  []string
	ScopeFile string
	Overrides overrideList
	Env       bool
}

func (f *ResolveFlags) bind(flags *pflag.FlagSet) {
	flags.StringVarP(&f.Location, "location", "l", "", "Comma-separated files or directories (trailing / marks a directory)")
	flags.StringSliceVarP(&f.Profiles, "profile", "p", nil, "Active profiles, comma-separated or repeated")
	flags.StringVar(&f.ScopeFile, "scope-file", "", "YAML file of nested scopes whose profiles are inherited")
	flags.Var(&f.Overrides, "set", "Override a property, highest precedence (repeatable)")
	flags.BoolVar(&f.Env, "env", false, "Read PCFG_* environment variables as properties")
}

func (f *ResolveFlags) request(container *CLIContainer) (services.ResolveRequest, error) {
	req := services.ResolveRequest{
		Location:   f.Location,
		BaseDir:    container.Settings.BaseDir,
		Profiles:   f.Profiles,
		Overrides:  f.Overrides,
		IncludeEnv: f.Env,
	}
	if f.ScopeFile != "" {
		scope, err := LoadScopeFile(f.ScopeFile)
		if err != nil {
			return req, err
		}
		req.Scope = scope
	}
	return req, nil
}

// ResolveCommandFlags holds command-line flags for the resolve command
type ResolveCommandFlags struct {
	ResolveFlags
	Format string
	RunID  string
	Hide   bool
}

// NewResolveCommand creates the resolve command
func NewResolveCommand(container *CLIContainer) *cobra.Command {
	flags := &ResolveCommandFlags{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve configuration and print the result",
		Long: `Load every source for the active profiles, combine them and print the result.

Examples:
  pcfg resolve                                  # application.* in the base directory
  pcfg resolve -l conf/,optional:local.yml -p dev
  pcfg resolve --set server.port=9090 --format yaml
  pcfg resolve --record build-42                # append the result to a run record`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := render.New(flags.Format)
			if err != nil {
				return err
			}
			req, err := flags.request(container)
			if err != nil {
				return err
			}
			req.RunID = flags.RunID
			req.Hide = flags.Hide

			res, err := container.ResolutionService.Resolve(cmd.Context(), req)
			if err != nil {
				return err
			}
			return renderer.Render(cmd.OutOrStdout(), res)
		},
	}

	flags.bind(cmd.Flags())
	cmd.Flags().StringVarP(&flags.Format, "format", "f", "flat", fmt.Sprintf("Output format (%s)", strings.Join(render.Formats(), ", ")))
	cmd.Flags().StringVar(&flags.RunID, "record", "", "Append the result to the named run record")
	cmd.Flags().BoolVar(&flags.Hide, "hide", false, "Do not record this resolution even when --record is given")

	return cmd
}
