package state

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// InMemory is a reference Service backed by a guarded map, standing in for
// the external KV store (e.g. Redis) that a real cluster deployment would
// supply.
type InMemory struct {
	mu       sync.Mutex
	longs    map[string]int64
	snapshot map[string][]byte
}

// NewInMemory builds an empty in-memory state service.
func NewInMemory() *InMemory {
	return &InMemory{
		longs:    make(map[string]int64),
		snapshot: make(map[string][]byte),
	}
}

// IncrByLong implements Service.
func (s *InMemory) IncrByLong(_ context.Context, key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.longs[key] += delta
	return s.longs[key], nil
}

// GetLong implements Service.
func (s *InMemory) GetLong(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.longs[key], nil
}

// SnapshotToState implements Service.
func (s *InMemory) SnapshotToState(_ context.Context, key string, data []byte) (uint32, error) {
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	s.snapshot[key] = cp
	s.mu.Unlock()

	return uint32(len(cp)), nil
}

// RestoreFromState implements Service.
func (s *InMemory) RestoreFromState(_ context.Context, key string, size uint32) ([]byte, error) {
	s.mu.Lock()
	data, ok := s.snapshot[key]
	s.mu.Unlock()

	if !ok {
		return nil, errors.Errorf("state: no snapshot stored under key %q", key)
	}
	if uint32(len(data)) != size {
		return nil, errors.Errorf("state: snapshot %q has size %d, expected %d", key, len(data), size)
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
