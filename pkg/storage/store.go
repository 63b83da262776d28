package storage

import (
	"context"
	"errors"
	"fmt"
)

// Snapshot keys
const (
	KeySubjects = "subjects"
	KeyEntries  = "attendanceRecords"
	KeyLimits   = "attendanceLimits"
)

// Backend names accepted by Open
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name
var ErrUnknownBackend = errors.New("unknown storage backend")

// Gateway is the key-value interface snapshots are persisted through.
// Get returns a nil slice and nil error when the key is absent.
type Gateway interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	// Utility
	Close() error
}

// Open creates the gateway for the named backend rooted at dataDir
func Open(backend, dataDir string) (Gateway, error) {
	switch backend {
	case "", BackendBolt:
		return NewBoltStore(dataDir)
	case BackendSQLite:
		return NewSQLiteStore(dataDir)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}
