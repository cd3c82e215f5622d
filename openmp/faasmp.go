package openmp

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

// readCString reads a NUL-terminated string out of mod's linear memory
// starting at ptr, following the same convention Emscripten's own
// host-import glue uses for string arguments.
func readCString(mod api.Module, ptr uint32) (string, bool) {
	mem := mod.Memory()
	size := mem.Size()
	buf := make([]byte, 0, 32)
	for i := ptr; i < size; i++ {
		b, ok := mem.ReadByte(i)
		if !ok {
			return "", false
		}
		if b == 0 {
			return string(buf), true
		}
		buf = append(buf, b)
	}
	return "", false
}

// faasmpIncrby implements __faasmp_incrby: atomically adds val to the long
// keyed by the NUL-terminated string at keyPtr.
func (s *Surface) faasmpIncrby(ctx context.Context, mod api.Module, keyPtr int32, val int64) int64 {
	key, ok := readCString(mod, uint32(keyPtr))
	if !ok {
		s.log.WithField("keyPtr", keyPtr).Error("__faasmp_incrby: key out of range")
		return 0
	}
	n, err := s.state.IncrByLong(ctx, key, val)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("__faasmp_incrby: state service error")
		return 0
	}
	return n
}

// faasmpGetLong implements __faasmp_getLong: reads the long keyed by the
// NUL-terminated string at keyPtr, defaulting to zero.
func (s *Surface) faasmpGetLong(ctx context.Context, mod api.Module, keyPtr int32) int64 {
	key, ok := readCString(mod, uint32(keyPtr))
	if !ok {
		s.log.WithField("keyPtr", keyPtr).Error("__faasmp_getLong: key out of range")
		return 0
	}
	n, err := s.state.GetLong(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("__faasmp_getLong: state service error")
		return 0
	}
	return n
}
