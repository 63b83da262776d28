/*
Package log provides structured logging for tally using zerolog.

The package keeps one global zerolog Logger. Until Init is called the logger
discards everything, so library packages can log unconditionally and tests
stay quiet.

# Configuration

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: false,      // console format for humans
		Output:     os.Stderr,  // default
	})

Levels: debug, info, warn, error. Unknown names map to info via ParseLevel.

Output goes to stderr by default so command output on stdout stays clean for
piping (tally overview --format json | jq).

# Component Loggers

	logger := log.WithComponent("persist")
	logger.Error().Err(err).Msg("Failed to save snapshot")

	logger := log.WithSubjectID(id)
	logger.Info().Msg("Subject removed")

Component names in use: storage, persist, tracker, metrics, cli.

# Conventions

  - Messages start with a capital letter and carry no trailing period
  - Errors are attached with .Err(err), never formatted into the message
  - Persistence failures are logged here and nowhere else; callers keep
    running on in-memory state
*/
package log
