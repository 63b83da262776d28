package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cuemby/tally/pkg/config"
	"github.com/cuemby/tally/pkg/events"
	"github.com/cuemby/tally/pkg/log"
	"github.com/cuemby/tally/pkg/persist"
	"github.com/cuemby/tally/pkg/report"
	"github.com/cuemby/tally/pkg/storage"
	"github.com/cuemby/tally/pkg/tracker"
	"github.com/cuemby/tally/pkg/types"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	ConfigFile string
	DataDir    string
	Backend    string
	LogLevel   string
	LogJSON    bool
	Format     string

	config config.Config
	format report.Format
}

// NewRootCommand creates the root command for the tally CLI
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tally",
		Short: "Tally - personal class attendance tracker",
		Long: `Tally keeps track of the classes you attend.

Register your subjects with the weekdays they meet, mark each class as
present, absent or no-class, and tally reports your attendance percentage
per subject against configurable warning and critical limits.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	cmd.SetVersionTemplate(fmt.Sprintf(
		"Tally version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory holding the attendance database")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend (bolt|sqlite|memory)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.LogJSON, "log-json", false, "log as JSON")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	// Add subcommands
	cmd.AddCommand(NewSubjectCommand(opts))
	cmd.AddCommand(NewMarkCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewEntriesCommand(opts))
	cmd.AddCommand(NewOverviewCommand(opts))
	cmd.AddCommand(NewTodayCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewLimitsCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// init resolves the configuration: file, then environment, then flags
func (o *RootOptions) init(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = o.DataDir
	}
	if flags.Changed("backend") {
		cfg.Backend = o.Backend
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.LogLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = o.LogJSON
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := report.ParseFormat(o.Format)
	if err != nil {
		return err
	}

	lc := cfg.LogConfig()
	lc.Output = cmd.ErrOrStderr()
	log.Init(lc)

	o.config = cfg
	o.format = format
	return nil
}

// app is one open tracker with its save queue and event broker
type app struct {
	gw      storage.Gateway
	tracker *tracker.Tracker
	queue   *persist.Queue
	broker  *events.Broker
}

func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	gw, err := storage.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, err
	}

	queue := persist.NewQueue(gw)
	queue.Start()
	broker := events.NewBroker()
	broker.Start()

	tr := tracker.New(tracker.Options{Gateway: gw, Queue: queue, Broker: broker})
	if _, err := tr.Load(ctx); err != nil {
		_ = tr.Close(ctx)
		return nil, fmt.Errorf("failed to load attendance data: %w", err)
	}

	return &app{gw: gw, tracker: tr, queue: queue, broker: broker}, nil
}

// withApp opens the tracker, runs fn and closes it, waiting for pending saves
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(*app) error) (err error) {
	a, err := openApp(cmd.Context(), opts.config)
	if err != nil {
		return err
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), persist.DefaultWriteTimeout)
		defer cancel()
		if cerr := a.tracker.Close(ctx); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to save changes: %w", cerr))
		}
	}()

	return fn(a)
}

func (o *RootOptions) renderer(cmd *cobra.Command) *report.Renderer {
	return report.New(cmd.OutOrStdout(), o.format)
}

// printResult writes v as JSON, or text in text mode
func (o *RootOptions) printResult(cmd *cobra.Command, v any, text string) error {
	out := cmd.OutOrStdout()
	if o.format == report.FormatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(out, text)
	return err
}

// resolveSubject finds a subject by id or name
func resolveSubject(tr *tracker.Tracker, ref string) (types.Subject, error) {
	subject, ok := tr.FindSubject(ref)
	if !ok {
		return types.Subject{}, fmt.Errorf("subject %q not found", ref)
	}
	return subject, nil
}

// dateOrToday returns date, or today's date from the tracker clock
func dateOrToday(tr *tracker.Tracker, date string) string {
	if date == "" {
		return types.FormatDate(tr.Now())
	}
	return date
}
