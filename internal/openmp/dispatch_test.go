package openmp

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faasmp/ompshim/internal/scheduler"
)

type fakeMemory struct {
	snapshotSize uint32
	snapshotErr  error
}

func (fakeMemory) ReadU32(uint32) (uint32, bool) { return 0, true }
func (fakeMemory) ReadU64(uint32) (uint64, bool) { return 0, true }
func (fakeMemory) WriteU32(uint32, uint32) bool  { return true }
func (fakeMemory) WriteU64(uint32, uint64) bool  { return true }
func (fakeMemory) Size() uint32                  { return 0 }
func (m fakeMemory) Snapshot(context.Context, string) (uint32, error) {
	return m.snapshotSize, m.snapshotErr
}
func (fakeMemory) Restore(context.Context, string, uint32) error { return nil }

// fakeScheduler resolves every call with a canned ReturnValue, recording
// the calls it received.
type fakeScheduler struct {
	mu        sync.Mutex
	calls     []*scheduler.Message
	resultFor func(id string) (*scheduler.Message, error)
}

func (f *fakeScheduler) CallFunction(ctx context.Context, msg *scheduler.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msg)
	return nil
}

func (f *fakeScheduler) FunctionResult(ctx context.Context, id string, timeout time.Duration) (*scheduler.Message, error) {
	return f.resultFor(id)
}

func discardLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func TestDistributedForkDispatcher_FanOutAndJoin(t *testing.T) {
	sched := &fakeScheduler{
		resultFor: func(id string) (*scheduler.Message, error) {
			return &scheduler.Message{ID: id, ReturnValue: 0}, nil
		},
	}
	d := NewDistributedForkDispatcher(sched, fakeMemory{snapshotSize: 1024}, discardLog(), nil, "fork", time.Second)

	level := NewChildLevel(NewRootLevel(1, "u", "f"), 4)
	level.SetUserDefaultDevice(-1)

	err := d.Run(context.Background(), level, ForkSpec{
		User: "alice", Function: "main", FuncPtr: 7, Args: []uint32{1, 2, 3},
	})
	require.NoError(t, err)

	sched.mu.Lock()
	defer sched.mu.Unlock()
	require.Len(t, sched.calls, 4)
	for i, call := range sched.calls {
		assert.Equal(t, "alice", call.User)
		assert.Equal(t, "main", call.Function)
		assert.Equal(t, i, call.OMPThreadNum)
		assert.Equal(t, 4, call.OMPNumThreads)
		assert.Equal(t, []uint32{3, 2, 1}, call.OMPFunctionArgs, "reversed argument order")
		assert.EqualValues(t, 1024, call.SnapshotSize)
		assert.Equal(t, 1, call.OMPDepth)
	}
}

func TestDistributedForkDispatcher_CountsErrorsAndTimeouts(t *testing.T) {
	sched := &fakeScheduler{}
	d := NewDistributedForkDispatcher(sched, fakeMemory{}, discardLog(), nil, "fork", time.Second)
	level := NewChildLevel(NewRootLevel(1, "u", "f"), 4)
	level.SetUserDefaultDevice(-1)

	// uuid-generated call IDs aren't deterministic, so fail every other
	// result regardless of which id it belongs to: the second wait gets a
	// nonzero return value, the fourth a timeout.
	var n int
	var mu sync.Mutex
	sched.resultFor = func(id string) (*scheduler.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		if n == 4 {
			return nil, scheduler.ErrResultTimeout
		}
		if n%2 == 0 {
			return &scheduler.Message{ID: id, ReturnValue: 1}, nil
		}
		return &scheduler.Message{ID: id, ReturnValue: 0}, nil
	}

	err := d.Run(context.Background(), level, ForkSpec{User: "u", Function: "f", FuncPtr: 1})
	require.Error(t, err)
	var failed *TeamExecutionFailed
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, 2, failed.N)
}

func TestDistributedForkDispatcher_SnapshotFailurePropagates(t *testing.T) {
	d := NewDistributedForkDispatcher(&fakeScheduler{}, fakeMemory{snapshotErr: assert.AnError}, discardLog(), nil, "fork", time.Second)
	level := NewChildLevel(NewRootLevel(1, "u", "f"), 2)

	err := d.Run(context.Background(), level, ForkSpec{User: "u", Function: "f"})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
