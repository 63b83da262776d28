package main

import (
	"fmt"
	"time"

	"github.com/cuemby/tally/pkg/tracker"
	"github.com/cuemby/tally/pkg/types"
	"github.com/spf13/cobra"
)

// NewOverviewCommand creates the overview command
func NewOverviewCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show attendance per subject and overall",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				summaries, overall := a.tracker.Overview()
				return opts.renderer(cmd).Overview(summaries, overall, a.tracker.Limits())
			})
		},
	}
}

// NewTodayCommand creates the today command
func NewTodayCommand(opts *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the subjects scheduled today and how they are marked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				var now time.Time
				if date != "" {
					parsed, err := types.ParseDate(date)
					if err != nil {
						return err
					}
					now = parsed
				} else {
					now = a.tracker.Now()
				}

				statuses := a.tracker.Today(now)
				return opts.renderer(cmd).Today(types.FormatDate(now), int(now.Weekday()), statuses)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "show another date YYYY-MM-DD")

	return cmd
}

// NewShowCommand creates the show command
func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show SUBJECT",
		Short: "Show a subject's attendance by date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				subject, err := resolveSubject(a.tracker, args[0])
				if err != nil {
					return err
				}
				detail, ok := a.tracker.SubjectDetail(subject.ID)
				if !ok {
					return fmt.Errorf("subject %q not found", args[0])
				}
				return opts.renderer(cmd).Detail(detail)
			})
		},
	}
}

// NewLimitsCommand creates the limits command group
func NewLimitsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Show or change the warning and critical limits",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				return opts.renderer(cmd).Limits(a.tracker.Limits())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set LOWER UPPER",
		Short: "Set the limits (percentages, LOWER < UPPER)",
		Long: `Set the limits. Attendance at or above UPPER is good, at or above LOWER
is a warning, and anything below LOWER is critical.

Example:
  tally limits set 65 75`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limits, err := tracker.ParseLimits(args[0], args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				if err := a.tracker.SetLimits(limits); err != nil {
					return err
				}
				return opts.printResult(cmd, limits,
					fmt.Sprintf("✓ Limits updated: critical below %d%%, warning below %d%%", limits.Lower, limits.Upper))
			})
		},
	})

	return cmd
}
