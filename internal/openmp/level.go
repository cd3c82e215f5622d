package openmp

import (
	"sync"

	"github.com/faasmp/ompshim/internal/scheduler"
)

// ReduceMethod is the strategy ReductionCoordinator uses to combine
// per-thread partial results.
type ReduceMethod int

const (
	// ReduceNotDefined means no reduction strategy could be chosen; any
	// attempt to start a reduction under it is an error.
	ReduceNotDefined ReduceMethod = iota
	// ReduceCriticalBlock serializes the reduction body behind Level's
	// reduceMutex.
	ReduceCriticalBlock
	// ReduceEmptyBlock is used for single-member teams, where no
	// synchronization is required at all.
	ReduceEmptyBlock
	// ReduceAtomicBlock lets the guest perform the combine with its own
	// atomic instructions; the core grants it without locking.
	ReduceAtomicBlock
	// ReduceMultiHostSum is used for distributed teams, where the combine
	// must additionally cross host boundaries via the state service.
	ReduceMultiHostSum
)

// defaultMaxActiveLevel is the implementation default for Level.maxActiveLevel
// when a Level is created with no explicit policy to inherit.
const defaultMaxActiveLevel = 1 << 20

// Level is one active parallel region, shared by every member of its
// team. All fields except the ones explicitly called out as
// mutable below are fixed for the Level's lifetime once published to its
// team members.
type Level struct {
	Depth      int
	NumThreads int

	// User and Function identify the originating invocation. Fixed for the lifetime of the
	// whole call tree, so no mutex guards them.
	User     string
	Function string

	// Mutable policy fields. These should only be written by the master
	// thread outside of a parallel region; this is a documented contract,
	// not something this type enforces.
	mu                sync.Mutex
	maxActiveLevel    int
	wantedNumThreads  int
	pushedNumThreads  int
	userDefaultDevice int

	// barrier is nil iff NumThreads <= 1.
	barrier *cyclicBarrier

	criticalSection sync.Mutex
	reduceMutex     sync.Mutex
}

// NewRootLevel builds the implicit outer Level (depth 0, a team of one,
// i.e. before any __kmpc_fork_call has run), tagged with the invocation's
// user/function identity.
func NewRootLevel(defaultNumThreads int, user, function string) *Level {
	return &Level{
		Depth:             0,
		NumThreads:        1,
		User:              user,
		Function:          function,
		maxActiveLevel:    defaultMaxActiveLevel,
		wantedNumThreads:  defaultNumThreads,
		pushedNumThreads:  -1,
		userDefaultDevice: 0,
	}
}

// NewChildLevel builds a new Level for a team of numThreads spawned from
// parent, inheriting parent's mutable policy fields.
func NewChildLevel(parent *Level, numThreads int) *Level {
	parent.mu.Lock()
	maxActiveLevel := parent.maxActiveLevel
	wantedNumThreads := parent.wantedNumThreads
	userDefaultDevice := parent.userDefaultDevice
	parent.mu.Unlock()

	lvl := &Level{
		Depth:             parent.Depth + 1,
		NumThreads:        numThreads,
		User:              parent.User,
		Function:          parent.Function,
		maxActiveLevel:    maxActiveLevel,
		wantedNumThreads:  wantedNumThreads,
		pushedNumThreads:  -1,
		userDefaultDevice: userDefaultDevice,
	}
	if numThreads > 1 {
		lvl.barrier = newCyclicBarrier(numThreads)
	}
	return lvl
}

// LevelFromMessage rebuilds the Level a remote team member belongs to
// from the chained-call fields its parent's fork stamped onto msg. No
// local barrier is created even for a multi-member team: each remote
// worker hosts exactly one member, and any cross-host synchronization the
// guest needs must go through the state service.
func LevelFromMessage(msg *scheduler.Message, defaultNumThreads int) *Level {
	return &Level{
		Depth:             msg.OMPDepth,
		NumThreads:        msg.OMPNumThreads,
		User:              msg.User,
		Function:          msg.Function,
		maxActiveLevel:    defaultMaxActiveLevel,
		wantedNumThreads:  defaultNumThreads,
		pushedNumThreads:  -1,
		userDefaultDevice: 0,
	}
}

// NextLevelNumThreads computes the effective team size the next fork from
// this Level would produce: pushedNumThreads if positive, else
// wantedNumThreads if positive, else defaultNumThreads, clamped to 1 once
// depth+1 exceeds maxActiveLevel.
func (l *Level) NextLevelNumThreads(defaultNumThreads int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextLevelNumThreadsLocked(defaultNumThreads)
}

func (l *Level) nextLevelNumThreadsLocked(defaultNumThreads int) int {
	n := defaultNumThreads
	if l.wantedNumThreads > 0 {
		n = l.wantedNumThreads
	}
	if l.pushedNumThreads > 0 {
		n = l.pushedNumThreads
	}

	if l.Depth+1 > l.maxActiveLevel {
		return 1
	}
	if n < 1 {
		return 1
	}
	return n
}

// ConsumePushedNumThreads resets pushedNumThreads to "unset", to be called once the value has been
// used to size the next fork.
func (l *Level) ConsumePushedNumThreads() {
	l.mu.Lock()
	l.pushedNumThreads = -1
	l.mu.Unlock()
}

// SetWantedNumThreads implements omp_set_num_threads: ignores non-positive
// input.
func (l *Level) SetWantedNumThreads(n int) {
	if n <= 0 {
		return
	}
	l.mu.Lock()
	l.wantedNumThreads = n
	l.mu.Unlock()
}

// PushNumThreads implements __kmpc_push_num_threads: one-shot, ignores
// non-positive input.
func (l *Level) PushNumThreads(n int) {
	if n <= 0 {
		return
	}
	l.mu.Lock()
	l.pushedNumThreads = n
	l.mu.Unlock()
}

// MaxActiveLevel returns the current maxActiveLevel (omp_get_max_active_levels).
func (l *Level) MaxActiveLevel() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxActiveLevel
}

// SetMaxActiveLevel implements omp_set_max_active_levels: negative input is
// ignored with a warning logged by the caller.
func (l *Level) SetMaxActiveLevel(level int) (ok bool) {
	if level < 0 {
		return false
	}
	l.mu.Lock()
	l.maxActiveLevel = level
	l.mu.Unlock()
	return true
}

// UserDefaultDevice returns the device selector: >= 0 selects
// local, < 0 selects distributed.
func (l *Level) UserDefaultDevice() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.userDefaultDevice
}

// SetUserDefaultDevice implements omp_set_default_device: clamps |n| <= 1,
// otherwise ignores with a warning logged by the caller.
func (l *Level) SetUserDefaultDevice(n int) (ok bool) {
	if n > 1 || n < -1 {
		return false
	}
	l.mu.Lock()
	l.userDefaultDevice = n
	l.mu.Unlock()
	return true
}

// Barrier blocks the calling team member until every member of this Level
// has arrived, then releases them all (__kmpc_barrier). It is a no-op
// when NumThreads <= 1 or there is no barrier.
func (l *Level) Barrier() {
	if l.NumThreads <= 1 || l.barrier == nil {
		return
	}
	l.barrier.wait()
}

// LockCritical acquires the team-wide critical section iff NumThreads > 1
// (__kmpc_critical). The guest-supplied `crit` identity is intentionally
// ignored: one region-wide lock over-approximates per-name mutual
// exclusion correctly.
func (l *Level) LockCritical() {
	if l.NumThreads > 1 {
		l.criticalSection.Lock()
	}
}

// UnlockCritical releases the critical section acquired by LockCritical.
func (l *Level) UnlockCritical() {
	if l.NumThreads > 1 {
		l.criticalSection.Unlock()
	}
}

// ReductionMethod chooses the reduction strategy for this Level based on
// team size and device: a distributed team must cross host boundaries
// (multiHostSum); a team of one needs no synchronization (emptyBlock);
// anything else serializes on the team-wide reduceMutex (criticalBlock).
// ReduceAtomicBlock is never chosen automatically here: the guest owns the
// combine step, so the core has no basis to prefer it over the safe
// default.
func (l *Level) ReductionMethod() ReduceMethod {
	if l.NumThreads <= 1 {
		return ReduceEmptyBlock
	}
	if l.UserDefaultDevice() < 0 {
		return ReduceMultiHostSum
	}
	return ReduceCriticalBlock
}

// LockReduce acquires reduceMutex for the critical-block reduction path.
func (l *Level) LockReduce() {
	l.reduceMutex.Lock()
}

// UnlockReduce releases reduceMutex iff this Level's team has more than
// one member. Unlocking an unowned mutex is undefined behavior, so the
// single-member case, which never locked, is guarded explicitly.
func (l *Level) UnlockReduce() {
	if l.NumThreads > 1 {
		l.reduceMutex.Unlock()
	}
}
