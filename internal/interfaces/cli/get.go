package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pcfg.dev/cli/internal/core/property"
)

// GetFlags holds command-line flags for the get command
type GetFlags struct {
	ResolveFlags
	Required bool
	As       string
	Default  string
}

// NewGetCommand creates the get command
func NewGetCommand(container *CLIContainer) *cobra.Command {
	flags := &GetFlags{}

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print one resolved property",
		Long: `Resolve configuration and print the value of KEY.

A key that names a subtree prints every property below it. A missing key
prints the --default value, or fails with --required.

Examples:
  pcfg get server.port --as int --required
  pcfg get hosts --as list
  pcfg get server`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(container)
			if err != nil {
				return err
			}
			res, err := container.ResolutionService.Resolve(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printProperty(cmd.OutOrStdout(), res.Properties, args[0], flags, cmd.Flags().Changed("default"))
		},
	}

	flags.bind(cmd.Flags())
	cmd.Flags().BoolVar(&flags.Required, "required", false, "Fail when the key is missing")
	cmd.Flags().StringVar(&flags.As, "as", "string", "Convert the value: string, int, float, bool, duration or list")
	cmd.Flags().StringVar(&flags.Default, "default", "", "Value printed when the key is missing")

	return cmd
}

func printProperty(w io.Writer, m property.FlatMap, key string, flags *GetFlags, hasDefault bool) error {
	text, err := convertProperty(m, key, flags.As)
	if err == nil {
		_, err = fmt.Fprintln(w, text)
		return err
	}
	if !errors.Is(err, property.ErrMissingRequiredProperty) {
		return err
	}

	if sub := m.WithPrefix(key); sub.Len() > 0 && flags.As == "string" {
		sub.Range(func(k string, v property.Value) bool {
			_, err = fmt.Fprintf(w, "%s = %s\n", k, v.String())
			return err == nil
		})
		return err
	}
	if flags.Required {
		return err
	}
	if hasDefault {
		_, err = fmt.Fprintln(w, flags.Default)
		return err
	}
	return nil
}

func convertProperty(m property.FlatMap, key, as string) (string, error) {
	switch as {
	case "", "string":
		return m.RequireString(key)
	case "int":
		v, err := m.RequireInt(key)
		return strconv.FormatInt(v, 10), err
	case "float":
		v, err := m.RequireFloat(key)
		return strconv.FormatFloat(v, 'g', -1, 64), err
	case "bool":
		v, err := m.RequireBool(key)
		return strconv.FormatBool(v), err
	case "duration":
		v, err := m.RequireDuration(key)
		return v.Round(time.Millisecond).String(), err
	case "list":
		v, err := m.RequireStringSlice(key)
		return strings.Join(v, "\n"), err
	default:
		return "", fmt.Errorf("unknown conversion %q (want string, int, float, bool, duration or list)", as)
	}
}
