package openmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReductionCoordinator_SingleThreadTeamIsEmptyBlock(t *testing.T) {
	var rc ReductionCoordinator
	level := NewRootLevel(1, "u", "f")

	code, err := rc.StartReduction(level)
	require.NoError(t, err)
	assert.Equal(t, ReductionSerial, code)

	assert.NotPanics(t, func() { rc.EndReduction(level) })
}

func TestReductionCoordinator_CriticalBlockLocksAndUnlocks(t *testing.T) {
	var rc ReductionCoordinator
	level := NewChildLevel(NewRootLevel(1, "u", "f"), 4)

	code, err := rc.StartReduction(level)
	require.NoError(t, err)
	assert.Equal(t, ReductionSerial, code)

	unlocked := make(chan struct{})
	go func() {
		level.LockReduce()
		level.reduceMutex.Unlock()
		close(unlocked)
	}()

	select {
	case <-unlocked:
		t.Fatal("reduceMutex should still be held by StartReduction")
	default:
	}

	rc.EndReduction(level)
	<-unlocked
}

func TestReductionCoordinator_DistributedTeamUsesMultiHostSum(t *testing.T) {
	var rc ReductionCoordinator
	level := NewChildLevel(NewRootLevel(1, "u", "f"), 4)
	level.SetUserDefaultDevice(-1)

	code, err := rc.StartReduction(level)
	require.NoError(t, err)
	assert.Equal(t, ReductionSerial, code)
	assert.Equal(t, ReduceMultiHostSum, level.ReductionMethod())

	// EndReduction is a no-op here: reduceMutex was never locked.
	assert.NotPanics(t, func() { rc.EndReduction(level) })
}
