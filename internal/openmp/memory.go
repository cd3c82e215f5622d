package openmp

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/faasmp/ompshim/internal/state"
)

// GuestMemory is the narrow read/write/snapshot surface the core sees:
// internal/openmp never touches api.Module directly, so it stays
// independent of the host runtime.
type GuestMemory interface {
	ReadU32(offset uint32) (uint32, bool)
	ReadU64(offset uint32) (uint64, bool)
	WriteU32(offset uint32, v uint32) bool
	WriteU64(offset uint32, v uint64) bool

	// Snapshot persists the entirety of this guest's linear memory under
	// key via the state service and returns its size.
	Snapshot(ctx context.Context, key string) (size uint32, err error)

	// Restore overwrites this guest's linear memory with the size bytes
	// previously persisted under key.
	Restore(ctx context.Context, key string, size uint32) error

	// Size returns the current size of linear memory in bytes.
	Size() uint32
}

// WazeroMemory adapts a wazero api.Module's linear memory to GuestMemory,
// using svc to back Snapshot/Restore.
type WazeroMemory struct {
	mod api.Module
	svc state.Service
}

// NewWazeroMemory builds a GuestMemory backed by mod's default memory.
func NewWazeroMemory(mod api.Module, svc state.Service) *WazeroMemory {
	return &WazeroMemory{mod: mod, svc: svc}
}

func (m *WazeroMemory) ReadU32(offset uint32) (uint32, bool) {
	return m.mod.Memory().ReadUint32Le(offset)
}

func (m *WazeroMemory) ReadU64(offset uint32) (uint64, bool) {
	return m.mod.Memory().ReadUint64Le(offset)
}

func (m *WazeroMemory) WriteU32(offset uint32, v uint32) bool {
	return m.mod.Memory().WriteUint32Le(offset, v)
}

func (m *WazeroMemory) WriteU64(offset uint32, v uint64) bool {
	return m.mod.Memory().WriteUint64Le(offset, v)
}

func (m *WazeroMemory) Size() uint32 {
	return m.mod.Memory().Size()
}

func (m *WazeroMemory) Snapshot(ctx context.Context, key string) (uint32, error) {
	data, ok := m.mod.Memory().Read(0, m.mod.Memory().Size())
	if !ok {
		return 0, errMemoryReadOutOfRange
	}
	return m.svc.SnapshotToState(ctx, key, data)
}

func (m *WazeroMemory) Restore(ctx context.Context, key string, size uint32) error {
	data, err := m.svc.RestoreFromState(ctx, key, size)
	if err != nil {
		return err
	}
	if !m.mod.Memory().Write(0, data) {
		return errMemoryWriteOutOfRange
	}
	return nil
}
