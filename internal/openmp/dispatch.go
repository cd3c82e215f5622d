package openmp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/faasmp/ompshim/internal/scheduler"
)

// DistributedForkDispatcher handles the cross-host __kmpc_fork_call case,
// userDefaultDevice < 0.
type DistributedForkDispatcher struct {
	sched   scheduler.Scheduler
	mem     GuestMemory
	log     *logrus.Entry
	metrics *Metrics

	snapshotKeyPrefix  string
	chainedCallTimeout time.Duration
}

// NewDistributedForkDispatcher builds a dispatcher that snapshots guest
// memory through mem and fans invocations out through sched.
func NewDistributedForkDispatcher(sched scheduler.Scheduler, mem GuestMemory, log *logrus.Entry, metrics *Metrics, snapshotKeyPrefix string, chainedCallTimeout time.Duration) *DistributedForkDispatcher {
	return &DistributedForkDispatcher{
		sched:              sched,
		mem:                mem,
		log:                log,
		metrics:            metrics,
		snapshotKeyPrefix:  snapshotKeyPrefix,
		chainedCallTimeout: chainedCallTimeout,
	}
}

// ForkSpec describes the invocation being forked, factored out of
// ThreadState/parent Message so DistributedForkDispatcher needs no
// knowledge of the caller's wasm.Module type.
type ForkSpec struct {
	User, Function string
	FuncPtr        uint32
	// Args are the microtask's shared-variable argument pointers, in the
	// guest's original (forward) order; Run reverses them per-message
	// itself.
	Args []uint32
}

// Run snapshots the guest's linear memory, posts level.NumThreads child
// invocations through the scheduler, and blocks until every child has
// responded or timed out. It returns TeamExecutionFailed if any child
// reported an error, timed out, or raised an exception.
func (d *DistributedForkDispatcher) Run(ctx context.Context, level *Level, spec ForkSpec) error {
	d.metrics.observeFork("distributed", level.NumThreads)

	snapshotKey := fmt.Sprintf("%s-%s", d.snapshotKeyPrefix, uuid.NewString())
	snapshotSize, err := d.mem.Snapshot(ctx, snapshotKey)
	if err != nil {
		return fmt.Errorf("openmp: snapshotting guest memory: %w", err)
	}

	reversedArgs := make([]uint32, len(spec.Args))
	for i, v := range spec.Args {
		reversedArgs[len(spec.Args)-1-i] = v
	}

	ids := make([]string, level.NumThreads)
	for threadNum := 0; threadNum < level.NumThreads; threadNum++ {
		call := &scheduler.Message{
			ID:              uuid.NewString(),
			User:            spec.User,
			Function:        spec.Function,
			SnapshotKey:     snapshotKey,
			SnapshotSize:    snapshotSize,
			FuncPtr:         spec.FuncPtr,
			OMPThreadNum:    threadNum,
			OMPNumThreads:   level.NumThreads,
			OMPDepth:        level.Depth,
			OMPFunctionArgs: reversedArgs,
		}
		ids[threadNum] = call.ID

		d.log.WithFields(logrus.Fields{
			"thread":   threadNum,
			"snapshot": snapshotKey,
			"callID":   call.ID,
		}).Debug("dispatching distributed OpenMP thread")

		if err := d.sched.CallFunction(ctx, call); err != nil {
			return fmt.Errorf("openmp: dispatching thread %d: %w", threadNum, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	errCounts := make([]int32, level.NumThreads)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			start := time.Now()
			result, err := d.sched.FunctionResult(gctx, id, d.chainedCallTimeout)
			d.metrics.observeDistributedJoinSeconds(time.Since(start).Seconds())

			if err != nil {
				// A timeout or scheduler failure counts as a member error;
				// it is logged, never propagated individually.
				d.log.WithError(err).WithField("callID", id).Warn("distributed OpenMP thread wait failed")
				errCounts[i] = 1
				return nil
			}
			if result.ReturnValue != 0 {
				errCounts[i] = 1
			}
			return nil
		})
	}

	// g.Wait() never returns an error here since every Go() captures its
	// failures into errCounts instead of returning them, so all N result
	// slots are consumed even when some children fail - a returned error
	// would let errgroup cancel gctx and abandon the remaining waits.
	_ = g.Wait()

	var numErrors int
	for _, c := range errCounts {
		numErrors += int(c)
	}

	d.metrics.observeTeamErrors(numErrors)
	return NewTeamExecutionFailed(numErrors)
}
