package health

import (
	"context"
	"fmt"

	"github.com/cuemby/tally/pkg/storage"
)

// StorageChecker reads the limits key through the gateway
type StorageChecker struct {
	gw storage.Gateway
}

// NewStorageChecker creates a storage health checker
func NewStorageChecker(gw storage.Gateway) *StorageChecker {
	return &StorageChecker{gw: gw}
}

// Check performs one read
func (c *StorageChecker) Check(ctx context.Context) Result {
	return timed(func() (string, error) {
		if _, err := c.gw.Get(ctx, storage.KeyLimits); err != nil {
			return "", fmt.Errorf("read failed: %w", err)
		}
		return "read ok", nil
	})
}

// LastErrorer reports the outcome of the most recent save
type LastErrorer interface {
	LastError() error
}

// PersistChecker reports whether the last snapshot save succeeded
type PersistChecker struct {
	source LastErrorer
}

// NewPersistChecker creates a save health checker
func NewPersistChecker(source LastErrorer) *PersistChecker {
	return &PersistChecker{source: source}
}

func (c *PersistChecker) Check(ctx context.Context) Result {
	return timed(func() (string, error) {
		if err := c.source.LastError(); err != nil {
			return "", fmt.Errorf("last save failed: %w", err)
		}
		return "last save ok", nil
	})
}
