package flowent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingReceiver is a thread-safe Tickable for observing the runtime loop.
type countingReceiver struct {
	mu     sync.Mutex
	deltas []float64
}

func (c *countingReceiver) Advance(deltaTime float64) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deltas = append(c.deltas, deltaTime)
	return 0, false
}

func (c *countingReceiver) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deltas)
}

func TestRuntimeDeliversMeasuredDeltas(t *testing.T) {
	rt := NewRuntime(RuntimeConfig{TickRate: 2 * time.Millisecond})
	recv := &countingReceiver{}
	rt.Subscribe(recv)

	require.NoError(t, rt.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, rt.Stop())

	require.Greater(t, recv.count(), 0)
	recv.mu.Lock()
	defer recv.mu.Unlock()
	for _, delta := range recv.deltas {
		assert.Greater(t, delta, 0.0)
	}
}

func TestRuntimeLifecycleErrors(t *testing.T) {
	rt := NewRuntime(RuntimeConfig{})
	assert.Error(t, rt.Stop())

	require.NoError(t, rt.Start(context.Background()))
	assert.Error(t, rt.Start(context.Background()))
	require.NoError(t, rt.Stop())
}

func TestRuntimeSurvivesPanickingReceiver(t *testing.T) {
	rt := NewRuntime(RuntimeConfig{TickRate: 2 * time.Millisecond})
	recv := &countingReceiver{}
	rt.Subscribe(recv)
	rt.Subscribe(&panickyReceiver{})

	require.NoError(t, rt.Start(context.Background()))
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, rt.Stop())

	assert.Greater(t, recv.count(), 0, "ticks keep flowing after a panic")
}

type panickyReceiver struct{}

func (p *panickyReceiver) Advance(float64) (float64, bool) {
	panic("bad update callback")
}

func TestRuntimeDrivesTweenToCompletion(t *testing.T) {
	rt := NewRuntime(RuntimeConfig{TickRate: time.Millisecond})
	tw, err := NewTween(rt, NewTweenOptions(0.01))
	require.NoError(t, err)
	require.NoError(t, rt.Start(context.Background()))
	defer rt.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tw.StartAsync(ctx))
	assert.Equal(t, Finished, tw.State())
}
