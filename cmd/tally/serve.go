package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/tally/pkg/api"
	"github.com/cuemby/tally/pkg/health"
	"github.com/cuemby/tally/pkg/metrics"
	"github.com/cuemby/tally/pkg/tracker"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve metrics, health checks and read-only reports over HTTP",
		Long: `Serve Prometheus metrics, health probes and JSON reports.

Endpoints: /metrics, /health, /ready, /live, /v1/overview, /v1/subjects,
/v1/subjects/{ref}, /v1/today, /v1/limits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.config.MetricsAddr
			}
			return withApp(cmd, opts, func(a *app) error {
				return serve(cmd, a, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config metrics_addr)")

	return cmd
}

func serve(cmd *cobra.Command, a *app, addr string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	metrics.SetVersion(Version)

	monitor, err := health.NewMonitor(health.DefaultConfig(), metrics.UpdateComponent)
	if err != nil {
		return err
	}
	monitor.Add(metrics.ComponentTracker, health.CheckFunc(func(context.Context) error {
		if !a.tracker.Loaded() {
			return tracker.ErrNotLoaded
		}
		return nil
	}))
	monitor.Add(metrics.ComponentStorage, health.NewStorageChecker(a.gw))
	monitor.Add(metrics.ComponentPersist, health.NewPersistChecker(a.queue))
	monitor.Start()
	defer monitor.Stop()

	collector := metrics.NewCollector(a.tracker, a.broker)
	collector.Start()
	defer collector.Stop()

	srv := api.NewServer(a.tracker)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	fmt.Fprintf(out, "✓ Serving on http://%s\n", addr)
	fmt.Fprintln(out, "Press Ctrl+C to stop.")

	select {
	case <-ctx.Done():
		fmt.Fprintln(out, "\nShutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	fmt.Fprintln(out, "✓ Shutdown complete")
	return nil
}
