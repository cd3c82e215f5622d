package openmp

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTeamPool_RunVisitsEveryMemberExactlyOnce(t *testing.T) {
	const n = 5
	level := NewChildLevel(NewRootLevel(1, "u", "f"), n)
	pool := NewLocalTeamPool(nil)

	out := make([]int32, n)
	var mu sync.Mutex
	seen := map[int]int{}

	task := func(ctx context.Context, threadNum int, args []uint32) (int32, error) {
		mu.Lock()
		seen[threadNum]++
		mu.Unlock()
		out[threadNum] = int32(threadNum)
		return 0, nil
	}

	err := pool.Run(context.Background(), level, nil, task)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		assert.Equal(t, 1, seen[i], "thread %d should run exactly once", i)
		assert.EqualValues(t, i, out[i])
	}
}

func TestLocalTeamPool_RunAggregatesErrorCodes(t *testing.T) {
	const n = 4
	level := NewChildLevel(NewRootLevel(1, "u", "f"), n)
	pool := NewLocalTeamPool(nil)

	task := func(ctx context.Context, threadNum int, args []uint32) (int32, error) {
		if threadNum%2 == 0 {
			return 1, nil
		}
		return 0, nil
	}

	err := pool.Run(context.Background(), level, nil, task)
	require.Error(t, err)

	var failed *TeamExecutionFailed
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, 2, failed.N)
}

func TestLocalTeamPool_RunPropagatesMemberTaskError(t *testing.T) {
	level := NewChildLevel(NewRootLevel(1, "u", "f"), 2)
	pool := NewLocalTeamPool(nil)

	boom := assert.AnError
	task := func(ctx context.Context, threadNum int, args []uint32) (int32, error) {
		if threadNum == 1 {
			return 0, boom
		}
		return 0, nil
	}

	err := pool.Run(context.Background(), level, nil, task)
	require.ErrorIs(t, err, boom)
}

func TestLocalTeamPool_RunSharesArgsAcrossMembers(t *testing.T) {
	level := NewChildLevel(NewRootLevel(1, "u", "f"), 3)
	pool := NewLocalTeamPool(nil)
	args := []uint32{100, 200}

	var mu sync.Mutex
	var seenArgs [][]uint32

	task := func(ctx context.Context, threadNum int, gotArgs []uint32) (int32, error) {
		mu.Lock()
		seenArgs = append(seenArgs, gotArgs)
		mu.Unlock()
		return 0, nil
	}

	require.NoError(t, pool.Run(context.Background(), level, args, task))
	for _, got := range seenArgs {
		assert.Equal(t, args, got)
	}
}
