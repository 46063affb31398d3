package flowent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowOptionsDefaults(t *testing.T) {
	opts := NewFlowOptions()
	require.NoError(t, opts.Err())
	assert.Equal(t, 1, opts.loopCount)
	assert.Equal(t, 1.0, opts.timeScale)
	assert.False(t, opts.infinite)
}

func TestFlowOptionsFirstErrorWins(t *testing.T) {
	opts := NewFlowOptions().SetTimeScale(-1).SetDelay(-2)

	var argErr *ArgumentError
	require.ErrorAs(t, opts.Err(), &argErr)
	assert.Equal(t, "timeScale", argErr.Name)

	_, err := NewFlow(nil, opts)
	assert.Equal(t, opts.Err(), err)
}

func TestFlowOptionsInfiniteAfterCount(t *testing.T) {
	opts := NewFlowOptions().SetLoopCount(3).SetInfiniteLoops()
	require.NoError(t, opts.Err())
	assert.True(t, opts.infinite)
}

func TestFlowOptionsValidValues(t *testing.T) {
	opts := NewFlowOptions().
		SetDelay(0.5).
		SetSkipFrames(2).
		SetLoopCount(4).
		SetTimeScale(0) // zero pauses, but is valid
	require.NoError(t, opts.Err())

	f, err := NewFlow(nil, opts)
	require.NoError(t, err)
	assert.Equal(t, Building, f.State())
}
