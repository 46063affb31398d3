package flowent

import (
	"fmt"

	"github.com/fogleman/ease"
)

// Easing maps normalized progress in [0,1] to eased progress. The functions
// in github.com/fogleman/ease satisfy this signature directly.
type Easing func(t float64) float64

// animationOptions carries the configuration shared by tweens and flows.
// Setters record the first invalid value; the constructor that consumes the
// snapshot surfaces it.
type animationOptions struct {
	autoStart  bool
	skipFrames int
	delay      float64
	loopCount  int
	infinite   bool
	timeScale  float64
	err        error
}

func newAnimationOptions() animationOptions {
	return animationOptions{loopCount: 1, timeScale: 1}
}

func (o *animationOptions) setErr(err error) {
	if o.err == nil {
		o.err = err
	}
}

func (o *animationOptions) setSkipFrames(frames int) {
	if frames < 0 {
		o.setErr(&ArgumentError{Name: "skipFrames", Reason: fmt.Sprintf("must be non-negative, got %d", frames)})
		return
	}
	o.skipFrames = frames
}

func (o *animationOptions) setDelay(delay float64) {
	if delay < 0 {
		o.setErr(&ArgumentError{Name: "delay", Reason: fmt.Sprintf("must be non-negative, got %v", delay)})
		return
	}
	o.delay = delay
}

func (o *animationOptions) setLoopCount(count int) {
	if count <= 0 {
		o.setErr(&ArgumentError{Name: "loopCount", Reason: fmt.Sprintf("must be positive, got %d", count)})
		return
	}
	o.loopCount = count
	o.infinite = false
}

func (o *animationOptions) setTimeScale(scale float64) {
	if scale < 0 {
		o.setErr(&ArgumentError{Name: "timeScale", Reason: fmt.Sprintf("must be non-negative, got %v", scale)})
		return
	}
	o.timeScale = scale
}

// FlowOptions is the configuration snapshot a Flow is built from. The zero
// configuration plays one loop at time scale 1 with no delay.
type FlowOptions struct {
	animationOptions
}

func NewFlowOptions() *FlowOptions {
	return &FlowOptions{newAnimationOptions()}
}

// SetAutoStart makes the flow start itself on the next tick after creation,
// unless it is queued into a parent flow first.
func (o *FlowOptions) SetAutoStart(autoStart bool) *FlowOptions {
	o.autoStart = autoStart
	return o
}

// SetSkipFrames delays the start until the given number of ticks elapsed.
func (o *FlowOptions) SetSkipFrames(frames int) *FlowOptions {
	o.setSkipFrames(frames)
	return o
}

// SetDelay delays the start by the given amount of time.
func (o *FlowOptions) SetDelay(delay float64) *FlowOptions {
	o.setDelay(delay)
	return o
}

// SetLoopCount replays the whole schedule count times in total.
func (o *FlowOptions) SetLoopCount(count int) *FlowOptions {
	o.setLoopCount(count)
	return o
}

// SetInfiniteLoops replays the schedule until the process stops driving it.
func (o *FlowOptions) SetInfiniteLoops() *FlowOptions {
	o.infinite = true
	return o
}

// SetTimeScale multiplies every incoming delta; 2 halves the perceived
// duration, 0 pauses the flow indefinitely.
func (o *FlowOptions) SetTimeScale(scale float64) *FlowOptions {
	o.setTimeScale(scale)
	return o
}

// Err returns the first invalid value recorded by a setter.
func (o *FlowOptions) Err() error {
	return o.err
}

// TweenOptions is the configuration snapshot a Tween is built from.
type TweenOptions struct {
	animationOptions
	duration float64
	easing   Easing
}

// NewTweenOptions creates options for a tween lasting duration per loop.
// The duration must be positive.
func NewTweenOptions(duration float64) *TweenOptions {
	o := &TweenOptions{
		animationOptions: newAnimationOptions(),
		duration:         duration,
		easing:           ease.Linear,
	}
	if duration <= 0 {
		o.setErr(&ArgumentError{Name: "duration", Reason: fmt.Sprintf("must be positive, got %v", duration)})
	}
	return o
}

// SetEasing replaces the default linear easing.
func (o *TweenOptions) SetEasing(easing Easing) *TweenOptions {
	if easing == nil {
		o.setErr(&ArgumentError{Name: "easing", Reason: "must not be nil"})
		return o
	}
	o.easing = easing
	return o
}

func (o *TweenOptions) SetAutoStart(autoStart bool) *TweenOptions {
	o.autoStart = autoStart
	return o
}

func (o *TweenOptions) SetSkipFrames(frames int) *TweenOptions {
	o.setSkipFrames(frames)
	return o
}

func (o *TweenOptions) SetDelay(delay float64) *TweenOptions {
	o.setDelay(delay)
	return o
}

func (o *TweenOptions) SetLoopCount(count int) *TweenOptions {
	o.setLoopCount(count)
	return o
}

func (o *TweenOptions) SetInfiniteLoops() *TweenOptions {
	o.infinite = true
	return o
}

func (o *TweenOptions) SetTimeScale(scale float64) *TweenOptions {
	o.setTimeScale(scale)
	return o
}

func (o *TweenOptions) Err() error {
	return o.err
}
