package main

import (
	"fmt"
	"strings"

	"github.com/cuemby/tally/pkg/storage"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	var (
		to     string
		toDir  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy attendance data to another storage backend",
		Long: `Copy the stored subjects, entries and limits from the configured backend
to another one. The source is left unchanged.

Examples:
  tally migrate --to sqlite --dry-run
  tally migrate --to sqlite
  tally --backend sqlite migrate --to bolt --to-dir /backup/tally`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from := opts.config.Backend
			if toDir == "" {
				toDir = opts.config.DataDir
			}
			if to == from && toDir == opts.config.DataDir {
				return fmt.Errorf("source and destination are the same %s store", to)
			}

			src, err := storage.Open(from, opts.config.DataDir)
			if err != nil {
				return fmt.Errorf("failed to open source: %w", err)
			}
			defer src.Close()

			dst, err := storage.Open(to, toDir)
			if err != nil {
				return fmt.Errorf("failed to open destination: %w", err)
			}
			defer dst.Close()

			result, err := storage.Migrate(cmd.Context(), src, dst, dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "[DRY RUN] Would copy from %s to %s:\n", from, to)
			} else {
				fmt.Fprintf(out, "✓ Migrated from %s to %s\n", from, to)
			}
			fmt.Fprintf(out, "  Copied:  %s\n", listOrNone(result.Copied))
			fmt.Fprintf(out, "  Missing: %s\n", listOrNone(result.Missing))
			if len(result.Skipped) > 0 {
				fmt.Fprintf(out, "⚠ Skipped invalid values: %s\n", strings.Join(result.Skipped, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "destination backend (bolt|sqlite) (required)")
	cmd.Flags().StringVar(&toDir, "to-dir", "", "destination data directory (default: the configured data_dir)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be migrated without writing")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func listOrNone(keys []string) string {
	if len(keys) == 0 {
		return "none"
	}
	return strings.Join(keys, ", ")
}
