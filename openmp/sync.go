package openmp

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero/api"
)

// errNotMasterThread traps a guest whose control flow reaches the end of a
// master or single block on a thread other than thread 0.
var errNotMasterThread = errors.New("openmp: end of master/single block reached by non-master thread")

// kmpcBarrier implements __kmpc_barrier: blocks the calling team member
// until every member of the current Level has arrived.
func (s *Surface) kmpcBarrier(ctx context.Context, _ api.Module, loc, globalTid int32) {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return
	}
	start := time.Now()
	level.Barrier()
	s.metrics.ObserveBarrierWaitSeconds(time.Since(start).Seconds())
}

// kmpcCritical implements __kmpc_critical: acquires the team-wide critical
// section. The guest's `crit` identity argument is accepted for ABI
// compatibility but ignored.
func (s *Surface) kmpcCritical(ctx context.Context, _ api.Module, loc, globalTid, crit int32) {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return
	}
	level.LockCritical()
}

// kmpcEndCritical implements __kmpc_end_critical.
func (s *Surface) kmpcEndCritical(ctx context.Context, _ api.Module, loc, globalTid, crit int32) {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return
	}
	level.UnlockCritical()
}

// kmpcFlush implements __kmpc_flush. Go's memory model gives every guarded
// access here a happens-before edge through the same mutexes/condition
// variables backing Barrier/LockCritical, so there is nothing left for a
// flush to do beyond acting as a no-op compiler-visible marker.
func (s *Surface) kmpcFlush(ctx context.Context, _ api.Module, loc int32) {
	s.log.Debug("__kmpc_flush")
}

// kmpcMaster implements __kmpc_master: returns 1 for thread 0, 0 otherwise,
// so the guest's generated branch skips the master-only block on every
// other thread.
func (s *Surface) kmpcMaster(ctx context.Context, _ api.Module, loc, globalTid int32) int32 {
	threadNum, _, ok := ThreadStateFromContext(ctx)
	if !ok {
		return 1
	}
	if threadNum == 0 {
		return 1
	}
	return 0
}

// kmpcEndMaster implements __kmpc_end_master: no lock was taken by
// kmpcMaster, so nothing is released, but only thread 0 may ever reach
// the end of a master block.
func (s *Surface) kmpcEndMaster(ctx context.Context, _ api.Module, loc, globalTid int32) {
	if threadNum, _, ok := ThreadStateFromContext(ctx); ok && threadNum != 0 {
		panic(errNotMasterThread)
	}
}

// kmpcSingle implements __kmpc_single: exactly one team member (by
// convention, thread 0) is granted entry; the rest see a false return and
// must implicitly wait at the following barrier the compiler emits.
func (s *Surface) kmpcSingle(ctx context.Context, _ api.Module, loc, globalTid int32) int32 {
	threadNum, _, ok := ThreadStateFromContext(ctx)
	if !ok {
		return 1
	}
	if threadNum == 0 {
		return 1
	}
	return 0
}

// kmpcEndSingle implements __kmpc_end_single.
func (s *Surface) kmpcEndSingle(ctx context.Context, _ api.Module, loc, globalTid int32) {
	if threadNum, _, ok := ThreadStateFromContext(ctx); ok && threadNum != 0 {
		panic(errNotMasterThread)
	}
}
