package flowent

import (
	"testing"

	"github.com/fogleman/ease"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTween(t *testing.T, ticker TickSource, opts *TweenOptions) *Tween {
	t.Helper()
	tw, err := NewTween(ticker, opts)
	require.NoError(t, err)
	return tw
}

func TestTweenProgress(t *testing.T) {
	var progress []float64
	tw := buildTween(t, nil, NewTweenOptions(2))
	tw.OnUpdate(func(p float64) { progress = append(progress, p) })
	require.NoError(t, tw.start(false))

	over, done := tw.Advance(0.5)
	assert.False(t, done)
	assert.Zero(t, over)

	over, done = tw.Advance(1.5)
	assert.True(t, done)
	assert.Zero(t, over, "reaching the duration exactly completes with zero overdraft")
	assert.Equal(t, []float64{0.25, 1}, progress)
	assert.Equal(t, Finished, tw.State())
}

func TestTweenEasing(t *testing.T) {
	var progress []float64
	tw := buildTween(t, nil, NewTweenOptions(1).SetEasing(ease.InQuad))
	tw.OnUpdate(func(p float64) { progress = append(progress, p) })
	require.NoError(t, tw.start(false))

	tw.Advance(0.5)
	assert.Equal(t, []float64{0.25}, progress)
}

func TestTweenLoops(t *testing.T) {
	var progress []float64
	completed := 0
	tw := buildTween(t, nil, NewTweenOptions(1).SetLoopCount(2))
	tw.OnUpdate(func(p float64) { progress = append(progress, p) }).
		OnCompleted(func() { completed++ })
	require.NoError(t, tw.start(false))

	tw.Advance(0.8)
	// Crosses the loop boundary 0.2 into this tick; the remainder replays.
	tw.Advance(0.7)
	over, done := tw.Advance(0.5)

	assert.True(t, done)
	assert.Zero(t, over)
	assert.Equal(t, []float64{0.8, 1, 0.5, 1}, progress)
	assert.Equal(t, 1, completed)

	over, done = tw.Advance(1)
	assert.False(t, done)
	assert.Zero(t, over, "advancing a finished tween is a no-op")
}

func TestTweenOverdraftSpansMultipleLoops(t *testing.T) {
	tw := buildTween(t, nil, NewTweenOptions(1).SetLoopCount(3))
	require.NoError(t, tw.start(false))

	over, done := tw.Advance(3.5)
	assert.True(t, done)
	assert.Equal(t, 0.5, over)
}

func TestTweenTimeScale(t *testing.T) {
	tw := buildTween(t, nil, NewTweenOptions(4).SetTimeScale(2))
	require.NoError(t, tw.start(false))

	over, done := tw.Advance(2.5)
	assert.True(t, done)
	assert.Equal(t, 1.0, over)
}

func TestTweenDelay(t *testing.T) {
	ticker := NewTicker()
	var progress []float64
	tw := buildTween(t, ticker, NewTweenOptions(1).SetDelay(0.5))
	tw.OnUpdate(func(p float64) { progress = append(progress, p) })
	require.NoError(t, tw.Start())

	ticker.Tick(0.25)
	assert.Equal(t, Building, tw.State())

	ticker.Tick(0.5)
	assert.Equal(t, Playing, tw.State())
	assert.Equal(t, []float64{0.25}, progress, "excess delta beyond the delay is not lost")
}

func TestTweenSkipFrames(t *testing.T) {
	ticker := NewTicker()
	tw := buildTween(t, ticker, NewTweenOptions(1).SetSkipFrames(1))
	require.NoError(t, tw.Start())

	ticker.Tick(1)
	assert.Equal(t, Playing, tw.State())
	assert.Zero(t, tw.elapsed)

	ticker.Tick(0.5)
	assert.Equal(t, 0.5, tw.elapsed)
}

func TestTweenAutoStart(t *testing.T) {
	ticker := NewTicker()
	tw := buildTween(t, ticker, NewTweenOptions(1).SetAutoStart(true))

	assert.Equal(t, Building, tw.State())
	ticker.Tick(0.1)
	assert.Equal(t, Playing, tw.State())
}

func TestTweenLifecycleErrors(t *testing.T) {
	t.Run("start twice", func(t *testing.T) {
		tw := buildTween(t, NewTicker(), NewTweenOptions(1))
		require.NoError(t, tw.Start())

		var stateErr *StateError
		require.ErrorAs(t, tw.Start(), &stateErr)
	})

	t.Run("start without ticker", func(t *testing.T) {
		tw := buildTween(t, nil, NewTweenOptions(1))

		var argErr *ArgumentError
		require.ErrorAs(t, tw.Start(), &argErr)
	})

	t.Run("parent can restart a finished tween", func(t *testing.T) {
		tw := buildTween(t, nil, NewTweenOptions(1))
		require.NoError(t, tw.start(false))
		_, done := tw.Advance(1)
		require.True(t, done)

		require.NoError(t, tw.start(false))
		assert.Equal(t, Playing, tw.State())
		assert.Zero(t, tw.elapsed)
	})
}

func TestTweenOptionValidation(t *testing.T) {
	cases := []struct {
		name string
		opts *TweenOptions
	}{
		{"zero duration", NewTweenOptions(0)},
		{"negative duration", NewTweenOptions(-1)},
		{"negative delay", NewTweenOptions(1).SetDelay(-0.5)},
		{"negative time scale", NewTweenOptions(1).SetTimeScale(-1)},
		{"non-positive loop count", NewTweenOptions(1).SetLoopCount(0)},
		{"negative skip frames", NewTweenOptions(1).SetSkipFrames(-1)},
		{"nil easing", NewTweenOptions(1).SetEasing(nil)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTween(nil, tc.opts)
			var argErr *ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tc.opts.Err(), err)
		})
	}
}
