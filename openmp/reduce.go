package openmp

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	intomp "github.com/faasmp/ompshim/internal/openmp"
)

var reductionCoordinator intomp.ReductionCoordinator

// kmpcReduce implements __kmpc_reduce and __kmpc_reduce_nowait. numVars,
// reduceSize, reduceData, reduceFunc, and lck are accepted for ABI
// compatibility and never dereferenced: the core coordinates mutual
// exclusion only.
func (s *Surface) kmpcReduce(ctx context.Context, _ api.Module, loc, gtid, numVars, reduceSize, reduceData, reduceFunc, lck int32) int32 {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return int32(intomp.ReductionNone)
	}
	code, err := reductionCoordinator.StartReduction(level)
	if err != nil {
		s.log.WithError(err).Error("__kmpc_reduce: unsupported reduction method")
		panic(err)
	}
	return int32(code)
}

// kmpcEndReduce implements __kmpc_end_reduce and __kmpc_end_reduce_nowait.
func (s *Surface) kmpcEndReduce(ctx context.Context, _ api.Module, loc, gtid, lck int32) {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return
	}
	reductionCoordinator.EndReduction(level)
}
