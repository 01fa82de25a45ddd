package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pcfg.dev/cli/internal/core/profile"
)

// NewProfilesCommand creates the profiles command
func NewProfilesCommand(container *CLIContainer) *cobra.Command {
	var (
		scopeFile string
		explicit  []string
		chain     bool
	)

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Print the active profiles",
		Long: `Print the profiles that would be active: those declared along the scope
chain, outermost first, followed by explicitly requested ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var scope *profile.Scope
			if scopeFile != "" {
				s, err := LoadScopeFile(scopeFile)
				if err != nil {
					return err
				}
				scope = s
			}

			out := cmd.OutOrStdout()
			if chain && scope != nil {
				for _, s := range scope.Chain() {
					fmt.Fprintf(out, "%-20s %s\n", s.Name, profile.String(profile.Parse(s.Profiles)))
				}
			}
			_, err := fmt.Fprintln(out, profile.String(profile.Resolve(scope, explicit...)))
			return err
		},
	}

	cmd.Flags().StringVar(&scopeFile, "scope-file", "", "YAML file of nested scopes whose profiles are inherited")
	cmd.Flags().StringSliceVarP(&explicit, "profile", "p", nil, "Explicitly requested profiles")
	cmd.Flags().BoolVar(&chain, "chain", false, "Also print each scope with the profiles it declares")

	return cmd
}
