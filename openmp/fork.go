package openmp

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/tetratelabs/wazero/api"

	intomp "github.com/faasmp/ompshim/internal/openmp"
)

// kmpcForkCall implements __kmpc_fork_call, the single entry point for
// spawning a parallel region. argsPtr addresses argc
// contiguous little-endian u32 guest pointers, one per shared variable.
func (s *Surface) kmpcForkCall(ctx context.Context, mod api.Module, loc, argc, fnIdx, argsPtr int32) {
	_, parent, ok := ThreadStateFromContext(ctx)
	if !ok {
		s.log.Error("__kmpc_fork_call with no ThreadState installed")
		return
	}

	args := make([]uint32, argc)
	for i := int32(0); i < argc; i++ {
		v, ok := mod.Memory().ReadUint32Le(uint32(argsPtr) + uint32(i)*4)
		if !ok {
			s.log.WithField("argsPtr", argsPtr).Error("__kmpc_fork_call: argument pointer array out of range")
			return
		}
		args[i] = v
	}

	numThreads := parent.NextLevelNumThreads(s.cfg.DefaultNumThreads)
	parent.ConsumePushedNumThreads()
	child := intomp.NewChildLevel(parent, numThreads)

	s.log.WithFields(logrus.Fields{
		"depth":      child.Depth,
		"numThreads": child.NumThreads,
		"argc":       argc,
	}).Debug("__kmpc_fork_call")

	var err error
	if child.UserDefaultDevice() >= 0 {
		err = s.runLocal(ctx, mod, child, fnIdx, argc, args)
	} else {
		err = s.runDistributed(ctx, mod, child, fnIdx, args)
	}
	if err != nil {
		s.log.WithError(err).WithField("depth", child.Depth).Error("parallel region failed")
		// A host-function panic is wazero's trap mechanism: it unwinds
		// the calling guest frame and surfaces the failure from the
		// invocation's Call as an error.
		panic(err)
	}
}

func (s *Surface) runLocal(ctx context.Context, mod api.Module, level *intomp.Level, fnIdx, argc int32, args []uint32) error {
	task, err := resolveMicrotask(mod, uint32(fnIdx), int(argc))
	if err != nil {
		return err
	}
	return s.pool.Run(ctx, level, args, task)
}

func (s *Surface) runDistributed(ctx context.Context, mod api.Module, level *intomp.Level, fnIdx int32, args []uint32) error {
	mem := intomp.NewWazeroMemory(mod, s.state)
	dispatcher := intomp.NewDistributedForkDispatcher(s.sched, mem, s.log, s.metrics, s.cfg.SnapshotKeyPrefix, s.chainedCallTimeout())
	return dispatcher.Run(ctx, level, intomp.ForkSpec{
		User:     level.User,
		Function: level.Function,
		FuncPtr:  uint32(fnIdx),
		Args:     args,
	})
}
