package scheduler

import (
	"context"
	"time"
)

// Scheduler assigns function invocations to hosts. The OpenMP core only
// needs to post an asynchronous invocation and later block for its result,
// so that is the entire surface exposed here.
type Scheduler interface {
	// CallFunction posts an asynchronous invocation of call and returns
	// once it has been accepted for scheduling (fire-and-forget: it does
	// not wait for the invocation to run).
	CallFunction(ctx context.Context, call *Message) error

	// FunctionResult blocks until the invocation identified by id has a
	// result available, or timeout elapses. A timeout returns
	// ErrResultTimeout.
	FunctionResult(ctx context.Context, id string, timeout time.Duration) (*Message, error)
}
