package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrResultTimeout is returned by FunctionResult when no result arrives
// within the requested timeout.
var ErrResultTimeout = errors.New("scheduler: timed out waiting for function result")

// Executor runs a Message and produces its result. A production scheduler
// would hand the message to a remote worker; InMemory runs it in-process,
// which is enough to exercise the distributed fork path end to end inside
// a single test binary.
type Executor func(ctx context.Context, call *Message) (*Message, error)

// InMemory is a reference Scheduler that runs each posted call on its own
// goroutine and stores the result for later collection. It
// exists so DistributedForkDispatcher can be driven without a real
// cluster; a real deployment supplies its own Scheduler.
type InMemory struct {
	exec Executor

	mu      sync.Mutex
	pending map[string]chan *Message
}

// NewInMemory builds an InMemory scheduler that runs every posted call
// through exec on its own goroutine.
func NewInMemory(exec Executor) *InMemory {
	return &InMemory{
		exec:    exec,
		pending: make(map[string]chan *Message),
	}
}

// CallFunction implements Scheduler.
func (s *InMemory) CallFunction(ctx context.Context, call *Message) error {
	ch := make(chan *Message, 1)

	s.mu.Lock()
	s.pending[call.ID] = ch
	s.mu.Unlock()

	go func() {
		result, err := s.exec(ctx, call)
		if err != nil {
			result = &Message{ID: call.ID, ReturnValue: 1, Success: false}
		}
		ch <- result
	}()

	return nil
}

// FunctionResult implements Scheduler.
func (s *InMemory) FunctionResult(ctx context.Context, id string, timeout time.Duration) (*Message, error) {
	s.mu.Lock()
	ch, ok := s.pending[id]
	s.mu.Unlock()
	if !ok {
		return nil, errors.Errorf("scheduler: unknown call id %q", id)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-ch:
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return result, nil
	case <-timer.C:
		return nil, ErrResultTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
