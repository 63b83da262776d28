/*
Package api serves the tally HTTP endpoints started by "tally serve".

Every endpoint is read-only. Mutations go through the CLI so that a single
process owns the store.

# Endpoints

	GET /health               component health (healthy, degraded, unhealthy)
	GET /ready                503 until storage and tracker are ready
	GET /live                 always 200 while the process runs
	    /metrics              Prometheus exposition
	GET /v1/overview          per-subject summaries plus the overall rollup
	GET /v1/subjects          subject list
	GET /v1/subjects/{ref}    one subject by id or name, with per-date rollups
	GET /v1/today[?date=]     marks of the subjects scheduled on a date
	GET /v1/limits            severity thresholds

Report bodies are rendered by package report in its JSON format, so they
match "tally <command> --format json" byte for byte.

# Usage

	srv := api.NewServer(tr)
	go func() {
		if err := srv.Start("127.0.0.1:9464"); err != nil {
			log.Logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()
	defer srv.Stop(ctx)
*/
package api
