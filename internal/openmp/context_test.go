package openmp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreadStateFromContext_RoundTrips(t *testing.T) {
	level := NewRootLevel(4, "u", "f")
	ts := &ThreadState{ThisThreadNumber: 2, ThisLevel: level}

	ctx := WithThreadState(context.Background(), ts)
	got, ok := ThreadStateFromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, ts, got)
}

func TestThreadStateFromContext_MissingIsNotOk(t *testing.T) {
	_, ok := ThreadStateFromContext(context.Background())
	assert.False(t, ok)
}
