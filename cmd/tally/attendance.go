package main

import (
	"fmt"

	"github.com/cuemby/tally/pkg/types"
	"github.com/spf13/cobra"
)

// NewMarkCommand creates the mark command
func NewMarkCommand(opts *RootOptions) *cobra.Command {
	var date, entryID string

	cmd := &cobra.Command{
		Use:   "mark SUBJECT STATUS",
		Short: "Record attendance for a subject",
		Long: `Record attendance for a subject. STATUS is present, absent or no-class.

Every call without --entry adds a new entry, so a day with two lectures can
hold two marks. Pass --entry to change the status of an existing entry.

Examples:
  tally mark Mathematics present
  tally mark Physics absent --date 2025-11-04
  tally mark Physics no-class --entry 0192f6c4-...`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := types.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				subject, err := resolveSubject(a.tracker, args[0])
				if err != nil {
					return err
				}

				entry, created, err := a.tracker.Mark(subject.ID, dateOrToday(a.tracker, date), status, entryID)
				if err != nil {
					return err
				}

				verb := "Marked"
				if !created {
					verb = "Updated"
				}
				return opts.printResult(cmd, entry,
					fmt.Sprintf("✓ %s %s %s on %s (entry %s)", verb, subject.Name, entry.Status, entry.Date, entry.ID))
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "attendance date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&entryID, "entry", "", "existing entry id to update")

	return cmd
}

// NewResetCommand creates the reset command
func NewResetCommand(opts *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "reset SUBJECT",
		Short: "Remove every entry of a subject on one date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				subject, err := resolveSubject(a.tracker, args[0])
				if err != nil {
					return err
				}

				day := dateOrToday(a.tracker, date)
				removed, err := a.tracker.ResetDate(subject.ID, day)
				if err != nil {
					return err
				}
				if removed == nil {
					removed = []types.Entry{}
				}
				return opts.printResult(cmd, removed,
					fmt.Sprintf("✓ Reset %s on %s (%d entries removed)", subject.Name, day, len(removed)))
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date to reset YYYY-MM-DD (default today)")

	return cmd
}

// NewEntriesCommand creates the entries command
func NewEntriesCommand(opts *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "entries SUBJECT",
		Short: "List the attendance entries of a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				subject, err := resolveSubject(a.tracker, args[0])
				if err != nil {
					return err
				}

				entries := a.tracker.Entries(subject.ID)
				if date != "" {
					entries = a.tracker.EntriesOn(subject.ID, date)
				}
				return opts.renderer(cmd).Entries(subject, entries)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "only show entries on this date")

	return cmd
}
