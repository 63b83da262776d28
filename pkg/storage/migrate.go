package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cuemby/tally/pkg/log"
)

// Keys lists every snapshot key in save order
var Keys = []string{KeySubjects, KeyEntries, KeyLimits}

// MigrateResult describes what Migrate copied
type MigrateResult struct {
	Copied  []string
	Missing []string
	// Skipped keys held values that are not valid JSON
	Skipped []string
}

// Migrate copies the raw snapshot values from src to dst. Keys absent from
// src are left untouched in dst. With dryRun nothing is written.
func Migrate(ctx context.Context, src, dst Gateway, dryRun bool) (MigrateResult, error) {
	logger := log.WithComponent("storage")
	var result MigrateResult
	values := make(map[string][]byte)

	for _, key := range Keys {
		value, err := src.Get(ctx, key)
		if err != nil {
			return MigrateResult{}, fmt.Errorf("failed to read %s: %w", key, err)
		}
		switch {
		case value == nil:
			result.Missing = append(result.Missing, key)
		case !json.Valid(value):
			logger.Warn().Str("key", key).Msg("Skipping invalid JSON value")
			result.Skipped = append(result.Skipped, key)
		default:
			values[key] = value
			result.Copied = append(result.Copied, key)
		}
	}

	if dryRun || len(values) == 0 {
		return result, nil
	}
	if err := Save(ctx, dst, values); err != nil {
		return MigrateResult{}, fmt.Errorf("failed to write snapshot: %w", err)
	}
	logger.Info().Strs("keys", result.Copied).Msg("Snapshot migrated")
	return result, nil
}
