package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pcfg.dev/cli/internal/core/domain"
	"pcfg.dev/cli/internal/infrastructure/render"
)

// NewRecordCommand creates the record command
func NewRecordCommand(container *CLIContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Inspect stored run records",
		Long: `Inspect the property sets recorded with 'pcfg resolve --record RUN'.

Each run record keeps every resolution appended to it, in order, with the
active profiles and a digest of the properties.`,
	}

	cmd.AddCommand(NewRecordListCommand(container))
	cmd.AddCommand(NewRecordShowCommand(container))

	return cmd
}

// NewRecordListCommand creates the list subcommand
func NewRecordListCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored run records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := container.ResolutionService.Records(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list records: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No run records found.")
				return nil
			}
			fmt.Fprintf(out, "%-24s %-7s %-20s %s\n", "RUN", "ENTRIES", "UPDATED", "PROFILES")
			for _, s := range summaries {
				fmt.Fprintf(out, "%-24s %-7d %-20s %s\n", s.RunID, s.Entries, s.UpdatedAt.Local().Format(time.DateTime), joinProfiles(s.Profiles))
			}
			return nil
		},
	}
}

func joinProfiles(sets []string) string {
	out := ""
	for i, p := range sets {
		if i > 0 {
			out += " | "
		}
		if p == "" {
			p = "(none)"
		}
		out += p
	}
	return out
}

// NewRecordShowCommand creates the show subcommand
func NewRecordShowCommand(container *CLIContainer) *cobra.Command {
	var (
		format string
		entry  int
	)

	cmd := &cobra.Command{
		Use:   "show RUN",
		Short: "Print the property sets of a run record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := render.New(format)
			if err != nil {
				return err
			}
			rec, err := container.ResolutionService.Record(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			entries := rec.Entries
			if entry > 0 {
				if entry > len(entries) {
					return fmt.Errorf("run %s has %d entries, no entry %d", rec.RunID, len(entries), entry)
				}
				entries = entries[entry-1 : entry]
			}

			out := cmd.OutOrStdout()
			for i, e := range entries {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if format != "cbor" && format != "json" {
					fmt.Fprintln(out, entryHeader(e))
				}
				res, err := e.Resolution()
				if err != nil {
					return err
				}
				if err := renderer.Render(out, res); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "flat", "Output format")
	cmd.Flags().IntVar(&entry, "entry", 0, "Show only the Nth entry (1-based)")

	return cmd
}

func entryHeader(e domain.RecordEntry) string {
	profiles := e.Profiles
	if profiles == "" {
		profiles = "(none)"
	}
	digest := e.Digest
	if len(digest) > 12 {
		digest = digest[:12]
	}
	return fmt.Sprintf("# %s profiles=%s digest=%s resolved=%s",
		e.ResolutionID, profiles, digest, e.ResolvedAt.UTC().Format(time.RFC3339))
}
