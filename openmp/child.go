package openmp

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/tetratelabs/wazero/api"

	intomp "github.com/faasmp/ompshim/internal/openmp"
	"github.com/faasmp/ompshim/internal/scheduler"
)

// RunChildInvocation executes one distributed team member on this host:
// it restores the parent's memory snapshot into mod, rebuilds the
// member's ThreadState from the chained-call fields, invokes the
// microtask, and returns a copy of call with ReturnValue filled in. A
// worker wires this up as the handler for incoming calls whose
// OMPNumThreads is set.
func (s *Surface) RunChildInvocation(ctx context.Context, mod api.Module, call *scheduler.Message) (*scheduler.Message, error) {
	mem := intomp.NewWazeroMemory(mod, s.state)
	if call.SnapshotKey != "" {
		if err := mem.Restore(ctx, call.SnapshotKey, call.SnapshotSize); err != nil {
			return nil, err
		}
	}

	level := intomp.LevelFromMessage(call, s.cfg.DefaultNumThreads)
	ts := &intomp.ThreadState{ThisThreadNumber: call.OMPThreadNum, ThisLevel: level}
	childCtx := intomp.WithThreadState(ctx, ts)

	// The wire carries the argument pointers in the reverse order the
	// guest-side trampoline pops them in; a direct table call takes them
	// forward.
	args := make([]uint32, len(call.OMPFunctionArgs))
	for i, a := range call.OMPFunctionArgs {
		args[len(args)-1-i] = a
	}

	task, err := resolveMicrotask(mod, call.FuncPtr, len(args))
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"thread":     call.OMPThreadNum,
		"numThreads": call.OMPNumThreads,
		"snapshot":   call.SnapshotKey,
	}).Debug("running distributed OpenMP thread")

	code, err := task(childCtx, call.OMPThreadNum, args)
	if err != nil {
		return nil, err
	}

	result := *call
	result.ReturnValue = code
	result.Success = code == 0
	return &result, nil
}
