// Package flowent is a composable animation timeline scheduler. A Flow owns
// an ordered collection of child animations, starts each child either
// sequentially after its track predecessor or at an explicit time offset,
// fans external ticks out to all running children, and completes once every
// child has finished. Flows implement the same capability as leaf tweens, so
// they nest arbitrarily.
package flowent

// PlayState is the lifecycle state shared by every animation.
type PlayState int

const (
	// Building animations accept configuration and children.
	Building PlayState = iota
	// Playing animations consume time from a tick source or an owning flow.
	Playing
	// Finished animations have exhausted their configured loop count.
	Finished
)

func (s PlayState) String() string {
	switch s {
	case Building:
		return "Building"
	case Playing:
		return "Playing"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Animation is the capability a Flow schedules: anything that can be started
// and advanced by slices of time. Tween and Flow both implement it, which is
// what makes nesting uniform: a flow advances its children exactly the way a
// tick source advances the flow.
type Animation interface {
	// State reports the lifecycle state.
	State() PlayState

	// Advance moves playback forward by deltaTime. While running it returns
	// (0, false); on the advance that completes the animation it returns the
	// unused remainder of deltaTime and true. Advancing an animation that is
	// not playing is a no-op.
	Advance(deltaTime float64) (overdraft float64, done bool)

	// startable reports whether start could succeed right now: nil for a
	// fully configured animation, the blocking error otherwise. A flow
	// consults it when a child is queued and again when the flow starts, so
	// a child that could never start is rejected synchronously instead of
	// stalling the schedule at tick time.
	startable() error

	// start begins playback. When subscribe is false the animation must not
	// attach itself to any tick source; its time arrives via Advance from an
	// owning flow, which may also restart a finished animation on replay.
	start(subscribe bool) error

	// cancelAutoStart withdraws a pending auto-start, if any. A flow calls
	// this on every queued child so a child never free-runs beside its
	// parent's schedule.
	cancelAutoStart()
}

type callbackList []func()

func (l *callbackList) add(fn func()) {
	*l = append(*l, fn)
}

// invoke runs all callbacks in registration order.
func (l callbackList) invoke() {
	for _, fn := range l {
		fn()
	}
}

// pendingStart defers an animation's real start across a number of skipped
// frames and then a delay, carrying any delta time beyond the delay into the
// start itself. It is also the one-shot used for auto-starts (frames = 1).
type pendingStart struct {
	ticker TickSource
	frames int
	delay  float64
	begin  func(carried float64)
}

func (p *pendingStart) Advance(deltaTime float64) (float64, bool) {
	if p.frames > 0 {
		p.frames--
		if p.frames > 0 || p.delay > 0 {
			return 0, false
		}
		p.ticker.Unsubscribe(p)
		p.begin(0)
		return 0, false
	}
	p.delay -= deltaTime
	if p.delay > 0 {
		return 0, false
	}
	p.ticker.Unsubscribe(p)
	p.begin(-p.delay)
	return 0, false
}
