package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pcfg.dev/cli/internal/core/property"
	"pcfg.dev/cli/internal/infrastructure/render"
)

// NewTreeCommand creates the tree command
func NewTreeCommand(container *CLIContainer) *cobra.Command {
	flags := &ResolveFlags{}

	cmd := &cobra.Command{
		Use:   "tree [KEY-PATH]",
		Short: "Print the nested configuration tree",
		Long: `Resolve configuration and print the nested tree as YAML, or only the
subtree at KEY-PATH (for example "server" or "users[0]").`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(container)
			if err != nil {
				return err
			}
			res, err := container.ResolutionService.Resolve(cmd.Context(), req)
			if err != nil {
				return err
			}

			var node property.Node = res.Tree.Root()
			if len(args) == 1 {
				found, ok := res.Tree.Lookup(args[0])
				if !ok {
					return fmt.Errorf("no node at %q", args[0])
				}
				node = found
			}
			return render.WriteNode(cmd.OutOrStdout(), node)
		},
	}

	flags.bind(cmd.Flags())
	return cmd
}
