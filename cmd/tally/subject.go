package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cuemby/tally/pkg/types"
	"github.com/spf13/cobra"
)

// NewSubjectCommand creates the subject command group
func NewSubjectCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subject",
		Aliases: []string{"subjects"},
		Short:   "Manage subjects",
	}

	cmd.AddCommand(newSubjectAddCommand(opts))
	cmd.AddCommand(newSubjectListCommand(opts))
	cmd.AddCommand(newSubjectEditCommand(opts))
	cmd.AddCommand(newSubjectRemoveCommand(opts))

	return cmd
}

func newSubjectAddCommand(opts *RootOptions) *cobra.Command {
	var days []string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a subject",
		Long: `Add a subject and the weekdays it meets.

Days are numbers (0 = Sunday through 6 = Saturday) or names.

Examples:
  tally subject add Mathematics --days 1,3,5
  tally subject add "Computer Science" --days tue,fri`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classDays, err := parseDays(days)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				subject, err := a.tracker.AddSubject(args[0], classDays)
				if err != nil {
					return err
				}
				return opts.printResult(cmd, subject,
					fmt.Sprintf("✓ Subject added: %s (%s)", subject.Name, subject.ID))
			})
		},
	}

	cmd.Flags().StringSliceVar(&days, "days", nil, "class days, e.g. 1,3,5 or mon,wed,fri (required)")
	_ = cmd.MarkFlagRequired("days")

	return cmd
}

func newSubjectListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List subjects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				return opts.renderer(cmd).Subjects(a.tracker.Subjects())
			})
		},
	}
}

func newSubjectEditCommand(opts *RootOptions) *cobra.Command {
	var (
		name string
		days []string
	)

	cmd := &cobra.Command{
		Use:   "edit SUBJECT",
		Short: "Rename a subject or change its class days",
		Long: `Rename a subject or change its class days. Attendance entries are kept.

Examples:
  tally subject edit Physics --name "Applied Physics"
  tally subject edit 2 --days 2,4,6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("days") {
				return fmt.Errorf("nothing to change: set --name or --days")
			}
			return withApp(cmd, opts, func(a *app) error {
				subject, err := resolveSubject(a.tracker, args[0])
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("name") {
					subject.Name = name
				}
				if cmd.Flags().Changed("days") {
					subject.ClassDays, err = parseDays(days)
					if err != nil {
						return err
					}
				}

				updated, _, err := a.tracker.UpdateSubject(subject.ID, subject.Name, subject.ClassDays)
				if err != nil {
					return err
				}
				return opts.printResult(cmd, updated,
					fmt.Sprintf("✓ Subject updated: %s (%s)", updated.Name, formatDays(updated.ClassDays)))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new subject name")
	cmd.Flags().StringSliceVar(&days, "days", nil, "new class days")

	return cmd
}

func newSubjectRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove SUBJECT",
		Aliases: []string{"rm"},
		Short:   "Remove a subject and all of its attendance entries",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				// Unknown refs fall through as ids so orphaned entries are purged
				id := args[0]
				name := args[0]
				if subject, ok := a.tracker.FindSubject(args[0]); ok {
					id, name = subject.ID, subject.Name
				}

				found, purged, err := a.tracker.RemoveSubject(id)
				if err != nil {
					return err
				}
				if !found && purged == 0 {
					return fmt.Errorf("subject %q not found", args[0])
				}
				return opts.printResult(cmd,
					map[string]any{"id": id, "removed": found, "purged": purged},
					fmt.Sprintf("✓ Subject removed: %s (%d entries purged)", name, purged))
			})
		},
	}
}

// parseDays converts day numbers or names into sorted weekday numbers
func parseDays(values []string) ([]int, error) {
	days := make([]int, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		day, err := parseDay(v)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

func parseDay(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("invalid day %d: must be 0 (Sunday) through 6 (Saturday)", n)
		}
		return n, nil
	}
	for d := 0; d < 7; d++ {
		name := types.DayName(d)
		if strings.EqualFold(v, name) || strings.EqualFold(v, types.DayShortName(d)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid day %q", v)
}

func formatDays(days []int) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = types.DayShortName(d)
	}
	return strings.Join(names, ", ")
}
