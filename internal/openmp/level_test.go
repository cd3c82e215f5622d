package openmp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faasmp/ompshim/internal/scheduler"
)

func TestLevel_NextLevelNumThreadsPrecedence(t *testing.T) {
	l := NewRootLevel(4, "u", "f")
	assert.Equal(t, 4, l.NextLevelNumThreads(4))

	l.SetWantedNumThreads(8)
	assert.Equal(t, 8, l.NextLevelNumThreads(4))

	l.PushNumThreads(2)
	assert.Equal(t, 2, l.NextLevelNumThreads(4))

	l.ConsumePushedNumThreads()
	assert.Equal(t, 8, l.NextLevelNumThreads(4))
}

func TestLevel_NextLevelNumThreadsIgnoresNonPositiveWanted(t *testing.T) {
	l := NewRootLevel(4, "u", "f")
	l.SetWantedNumThreads(-3)
	assert.Equal(t, 4, l.NextLevelNumThreads(4), "non-positive omp_set_num_threads is ignored")
}

func TestLevel_MaxActiveLevelClampsDeepNesting(t *testing.T) {
	l := NewRootLevel(4, "u", "f")
	require.True(t, l.SetMaxActiveLevel(1))
	child := NewChildLevel(l, 4)
	assert.Equal(t, 1, child.NextLevelNumThreads(4), "depth beyond maxActiveLevel forces a team of one")
}

func TestLevel_SetMaxActiveLevelRejectsNegative(t *testing.T) {
	l := NewRootLevel(4, "u", "f")
	assert.False(t, l.SetMaxActiveLevel(-1))
	assert.Equal(t, defaultMaxActiveLevel, l.MaxActiveLevel())
}

func TestLevel_SetUserDefaultDeviceClamps(t *testing.T) {
	l := NewRootLevel(4, "u", "f")
	assert.False(t, l.SetUserDefaultDevice(2))
	assert.False(t, l.SetUserDefaultDevice(-2))
	assert.True(t, l.SetUserDefaultDevice(-1))
	assert.Equal(t, -1, l.UserDefaultDevice())
}

func TestLevel_ChildInheritsPolicy(t *testing.T) {
	parent := NewRootLevel(4, "alice", "main")
	parent.SetWantedNumThreads(6)
	parent.SetUserDefaultDevice(-1)

	child := NewChildLevel(parent, 6)
	assert.Equal(t, "alice", child.User)
	assert.Equal(t, "main", child.Function)
	assert.Equal(t, -1, child.UserDefaultDevice())
	assert.Equal(t, 1, child.Depth)
}

func TestLevel_FromMessageRebuildsRemoteMemberView(t *testing.T) {
	msg := &scheduler.Message{
		User:          "alice",
		Function:      "main",
		OMPThreadNum:  2,
		OMPNumThreads: 4,
		OMPDepth:      1,
	}

	l := LevelFromMessage(msg, 8)
	assert.Equal(t, 1, l.Depth)
	assert.Equal(t, 4, l.NumThreads)
	assert.Equal(t, "alice", l.User)
	assert.Equal(t, "main", l.Function)
	assert.Equal(t, 0, l.UserDefaultDevice(), "nested forks on a remote worker stay local")
	assert.Nil(t, l.barrier, "cross-host synchronization goes through the state service")
	assert.NotPanics(t, func() { l.Barrier() })
}

func TestLevel_BarrierReleasesExactlyNMembers(t *testing.T) {
	const n = 8
	l := NewChildLevel(NewRootLevel(1, "u", "f"), n)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var arrivals []int

	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			l.Barrier()
			mu.Lock()
			arrivals = append(arrivals, i)
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, arrivals, n)
}

func TestLevel_BarrierNoOpForSingleThreadTeam(t *testing.T) {
	l := NewRootLevel(1, "u", "f")
	assert.NotPanics(t, func() { l.Barrier() })
}

func TestLevel_CriticalSectionSerializes(t *testing.T) {
	l := NewChildLevel(NewRootLevel(1, "u", "f"), 4)

	counter := 0
	var wg sync.WaitGroup
	wg.Add(4)
	for i := 0; i < 4; i++ {
		go func() {
			defer wg.Done()
			l.LockCritical()
			defer l.UnlockCritical()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, counter)
}

func TestLevel_ReductionMethodSelection(t *testing.T) {
	single := NewRootLevel(1, "u", "f")
	assert.Equal(t, ReduceEmptyBlock, single.ReductionMethod())

	team := NewChildLevel(single, 4)
	assert.Equal(t, ReduceCriticalBlock, team.ReductionMethod())

	team.SetUserDefaultDevice(-1)
	assert.Equal(t, ReduceMultiHostSum, team.ReductionMethod())
}

func TestLevel_UnlockReduceGuardsSingleThreadTeam(t *testing.T) {
	l := NewRootLevel(1, "u", "f")
	assert.NotPanics(t, func() { l.UnlockReduce() })
}
