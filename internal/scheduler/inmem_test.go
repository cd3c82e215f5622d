package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_CallFunctionAndFunctionResult(t *testing.T) {
	exec := func(ctx context.Context, call *Message) (*Message, error) {
		return &Message{ID: call.ID, ReturnValue: 0, OutputData: []byte("ok")}, nil
	}
	s := NewInMemory(exec)

	call := &Message{ID: "abc"}
	require.NoError(t, s.CallFunction(context.Background(), call))

	result, err := s.FunctionResult(context.Background(), "abc", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "abc", result.ID)
	assert.Equal(t, []byte("ok"), result.OutputData)
}

func TestInMemory_FunctionResultUnknownID(t *testing.T) {
	s := NewInMemory(func(context.Context, *Message) (*Message, error) { return nil, nil })
	_, err := s.FunctionResult(context.Background(), "nope", time.Second)
	assert.Error(t, err)
}

func TestInMemory_FunctionResultTimesOut(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	exec := func(ctx context.Context, call *Message) (*Message, error) {
		<-block
		return &Message{ID: call.ID}, nil
	}
	s := NewInMemory(exec)

	call := &Message{ID: "slow"}
	require.NoError(t, s.CallFunction(context.Background(), call))

	_, err := s.FunctionResult(context.Background(), "slow", 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrResultTimeout)
}

func TestInMemory_ExecutorErrorBecomesFailureResult(t *testing.T) {
	exec := func(ctx context.Context, call *Message) (*Message, error) {
		return nil, assert.AnError
	}
	s := NewInMemory(exec)

	call := &Message{ID: "fails"}
	require.NoError(t, s.CallFunction(context.Background(), call))

	result, err := s.FunctionResult(context.Background(), "fails", time.Second)
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.ReturnValue)
	assert.False(t, result.Success)
}
