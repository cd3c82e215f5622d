package openmp

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Microtask is the guest function pointer executed by every team member.
// It receives the thread number and the shared-variable argument pointers
// (raw guest-memory offsets), and returns a nonzero value on error.
type Microtask func(ctx context.Context, threadNum int, args []uint32) (int32, error)

// LocalTeamPool runs the N team members of a single-host parallel region.
// Each member is a goroutine; errgroup supplies the submit-then-join
// shape, the same way grailbio/bigslice fans machine RPCs out in
// exec/bigmachine.go.
type LocalTeamPool struct {
	metrics *Metrics
}

// NewLocalTeamPool builds a LocalTeamPool that reports to metrics (which
// may be nil).
func NewLocalTeamPool(metrics *Metrics) *LocalTeamPool {
	return &LocalTeamPool{metrics: metrics}
}

// Run invokes task once per team member of level, each observing level
// through its own ThreadState, with argument pointers args shared
// read-only across all members. args is never mutated, so it safely
// outlives every invocation.
//
// The join is uncancellable: every member runs to completion even when a
// sibling fails, so a plain errgroup.Group is used rather than
// errgroup.WithContext, whose cancellation would tear down members
// mid-microtask.
//
// Run returns TeamExecutionFailed if any member's task reports a nonzero
// code. If a member's task itself returns an error, Run returns that error
// once every member has finished, and error codes are not counted.
func (p *LocalTeamPool) Run(ctx context.Context, level *Level, args []uint32, task Microtask) error {
	p.metrics.observeFork("local", level.NumThreads)

	var g errgroup.Group
	errCodes := make([]int32, level.NumThreads)

	for threadNum := 0; threadNum < level.NumThreads; threadNum++ {
		threadNum := threadNum
		ts := &ThreadState{ThisThreadNumber: threadNum, ThisLevel: level}
		memberCtx := WithThreadState(ctx, ts)

		g.Go(func() error {
			code, err := task(memberCtx, threadNum, args)
			if err != nil {
				return err
			}
			errCodes[threadNum] = code
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	var numErrors int
	for _, code := range errCodes {
		if code != 0 {
			numErrors++
		}
	}

	p.metrics.observeTeamErrors(numErrors)
	return NewTeamExecutionFailed(numErrors)
}
