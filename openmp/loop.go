package openmp

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	intomp "github.com/faasmp/ompshim/internal/openmp"
)

// kmpcForStaticInit4 implements __kmpc_for_static_init_4 for 32-bit loop
// variables.
func (s *Surface) kmpcForStaticInit4(ctx context.Context, mod api.Module, loc, gtid, sched, lastIterPtr, lowerPtr, upperPtr, stridePtr, incr, chunk int32) {
	threadNum, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return
	}

	lower, lok := mod.Memory().ReadUint32Le(uint32(lowerPtr))
	upper, uok := mod.Memory().ReadUint32Le(uint32(upperPtr))
	if !lok || !uok {
		s.log.Error("__kmpc_for_static_init_4: loop bounds out of range")
		return
	}

	res, err := intomp.StaticLoopInit(sched, threadNum, level.NumThreads, int32(lower), int32(upper), incr, chunk)
	if err != nil {
		s.log.WithError(err).WithField("sched", sched).Error("__kmpc_for_static_init_4: unsupported schedule")
		panic(err)
	}

	s.writeLoopResult4(mod, lastIterPtr, lowerPtr, upperPtr, stridePtr, res)
}

// kmpcForStaticInit8 implements __kmpc_for_static_init_8 for 64-bit loop
// variables.
func (s *Surface) kmpcForStaticInit8(ctx context.Context, mod api.Module, loc, gtid, sched, lastIterPtr, lowerPtr, upperPtr, stridePtr int32, incr, chunk int64) {
	threadNum, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return
	}

	lower, lok := mod.Memory().ReadUint64Le(uint32(lowerPtr))
	upper, uok := mod.Memory().ReadUint64Le(uint32(upperPtr))
	if !lok || !uok {
		s.log.Error("__kmpc_for_static_init_8: loop bounds out of range")
		return
	}

	res, err := intomp.StaticLoopInit(sched, threadNum, level.NumThreads, int64(lower), int64(upper), incr, chunk)
	if err != nil {
		s.log.WithError(err).WithField("sched", sched).Error("__kmpc_for_static_init_8: unsupported schedule")
		panic(err)
	}

	s.writeLoopResult8(mod, lastIterPtr, lowerPtr, upperPtr, stridePtr, res)
}

func (s *Surface) writeLoopResult4(mod api.Module, lastIterPtr, lowerPtr, upperPtr, stridePtr int32, res intomp.StaticLoopResult[int32]) {
	var lastIter uint32
	if res.LastIter {
		lastIter = 1
	}
	mem := mod.Memory()
	mem.WriteUint32Le(uint32(lastIterPtr), lastIter)
	mem.WriteUint32Le(uint32(lowerPtr), uint32(res.Lower))
	mem.WriteUint32Le(uint32(upperPtr), uint32(res.Upper))
	mem.WriteUint32Le(uint32(stridePtr), uint32(res.Stride))
}

func (s *Surface) writeLoopResult8(mod api.Module, lastIterPtr, lowerPtr, upperPtr, stridePtr int32, res intomp.StaticLoopResult[int64]) {
	var lastIter uint32
	if res.LastIter {
		lastIter = 1
	}
	mem := mod.Memory()
	mem.WriteUint32Le(uint32(lastIterPtr), lastIter)
	mem.WriteUint64Le(uint32(lowerPtr), uint64(res.Lower))
	mem.WriteUint64Le(uint32(upperPtr), uint64(res.Upper))
	mem.WriteUint64Le(uint32(stridePtr), uint64(res.Stride))
}

// kmpcForStaticFini implements __kmpc_for_static_fini: a no-op, since all
// bookkeeping happened at init time.
func (s *Surface) kmpcForStaticFini(ctx context.Context, _ api.Module, loc, gtid int32) {
}
