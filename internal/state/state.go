// Package state defines the external key-value backend OpenMP distributed
// variables and memory snapshots round-trip through, and ships an
// in-memory reference implementation.
package state

import "context"

// Service is the key-value state backend, scoped to exactly the
// operations the OpenMP core needs: atomic counters for
// __faasmp_incrby/__faasmp_getLong, and snapshot/restore for the
// distributed fork dispatcher's guest-memory replication.
type Service interface {
	// IncrByLong atomically adds delta to the long stored at key and
	// returns the new value (__faasmp_incrby).
	IncrByLong(ctx context.Context, key string, delta int64) (int64, error)

	// GetLong reads the long stored at key, defaulting to zero if unset
	// (__faasmp_getLong).
	GetLong(ctx context.Context, key string) (int64, error)

	// SnapshotToState persists data under key and returns its size, for
	// the distributed fork dispatcher to record on child messages.
	SnapshotToState(ctx context.Context, key string, data []byte) (size uint32, err error)

	// RestoreFromState reads back exactly size bytes previously written
	// under key.
	RestoreFromState(ctx context.Context, key string, size uint32) ([]byte, error)
}
