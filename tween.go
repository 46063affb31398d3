package flowent

import "context"

// A Tween is the leaf animation: it advances normalized progress across a
// fixed duration, applies an easing curve, and reports the eased progress to
// its update callbacks. What the progress drives (a property, a color, a
// frame) is entirely the callback's business.
type Tween struct {
	ticker TickSource
	opts   TweenOptions

	state      PlayState
	started    bool
	subscribed bool
	auto       *pendingStart
	gate       *pendingStart

	elapsed   float64
	loopsLeft int

	onStarted   callbackList
	onUpdate    []func(t float64)
	onCompleted callbackList
	done        chan struct{}
	doneClosed  bool
}

// NewTween builds a tween from an options snapshot. Invalid option values
// surface here, never at tick time. The tick source may be nil for a tween
// that only ever runs inside a flow.
func NewTween(ticker TickSource, opts *TweenOptions) (*Tween, error) {
	if opts == nil {
		return nil, &ArgumentError{Name: "opts", Reason: "tween options are required"}
	}
	if opts.err != nil {
		return nil, opts.err
	}
	t := &Tween{
		ticker: ticker,
		opts:   *opts,
		state:  Building,
		done:   make(chan struct{}),
	}
	if t.opts.autoStart {
		if ticker == nil {
			return nil, &ArgumentError{Name: "ticker", Reason: "auto-start requires a tick source"}
		}
		t.auto = &pendingStart{ticker: ticker, frames: 1, begin: func(float64) { _ = t.Start() }}
		ticker.Subscribe(t.auto)
	}
	return t, nil
}

// State reports the tween's lifecycle state.
func (t *Tween) State() PlayState {
	return t.state
}

// OnStarted registers fn to run when the tween actually begins playing.
func (t *Tween) OnStarted(fn func()) *Tween {
	t.onStarted.add(fn)
	return t
}

// OnUpdate registers fn to receive the eased progress in [0,1] on every
// advance. It fires with 1 at each loop boundary.
func (t *Tween) OnUpdate(fn func(progress float64)) *Tween {
	t.onUpdate = append(t.onUpdate, fn)
	return t
}

// OnCompleted registers fn to run after the final loop completes.
func (t *Tween) OnCompleted(fn func()) *Tween {
	t.onCompleted.add(fn)
	return t
}

// Done is closed after the tween first completes, once the completion
// callbacks have run.
func (t *Tween) Done() <-chan struct{} {
	return t.done
}

// A constructed tween is always startable: NewTween rejects invalid options
// up front.
func (t *Tween) startable() error {
	return nil
}

// Start begins playback, honoring skipped frames and delay, and subscribes
// the tween to its tick source.
func (t *Tween) Start() error {
	return t.start(true)
}

// StartAsync starts the tween and blocks until it completes or ctx is done.
func (t *Tween) StartAsync(ctx context.Context) error {
	if err := t.start(true); err != nil {
		return err
	}
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tween) start(subscribe bool) error {
	if subscribe && (t.state != Building || t.started) {
		return &StateError{Op: "start tween", State: t.state}
	}
	if !subscribe && t.state == Playing {
		return &StateError{Op: "restart tween", State: t.state}
	}
	t.started = true
	t.cancelAutoStart()
	if subscribe {
		if t.ticker == nil {
			return &ArgumentError{Name: "ticker", Reason: "starting a tween requires a tick source"}
		}
		if t.opts.skipFrames > 0 || t.opts.delay > 0 {
			t.gate = &pendingStart{
				ticker: t.ticker,
				frames: t.opts.skipFrames,
				delay:  t.opts.delay,
				begin: func(carried float64) {
					t.gate = nil
					t.startNow(true)
					if carried > 0 {
						t.Advance(carried)
					}
				},
			}
			t.ticker.Subscribe(t.gate)
			return nil
		}
	}
	t.startNow(subscribe)
	return nil
}

func (t *Tween) startNow(subscribe bool) {
	t.elapsed = 0
	t.loopsLeft = t.opts.loopCount
	if subscribe {
		t.ticker.Subscribe(t)
		t.subscribed = true
	}
	t.onStarted.invoke()
	t.state = Playing
}

func (t *Tween) cancelAutoStart() {
	if t.auto != nil {
		t.ticker.Unsubscribe(t.auto)
		t.auto = nil
	}
}

// Advance moves the tween forward by deltaTime. Reaching the duration
// exactly finishes the current loop with zero overdraft; leftover time is
// carried into the next loop or returned on final completion.
func (t *Tween) Advance(deltaTime float64) (float64, bool) {
	if t.state != Playing {
		return 0, false
	}
	remaining := deltaTime * t.opts.timeScale
	for {
		t.elapsed += remaining
		if t.elapsed < t.opts.duration {
			t.update(t.elapsed / t.opts.duration)
			return 0, false
		}
		overdraft := t.elapsed - t.opts.duration
		t.update(1)
		if t.opts.infinite || t.loopsLeft > 1 {
			if !t.opts.infinite {
				t.loopsLeft--
			}
			t.elapsed = 0
			remaining = overdraft
			continue
		}
		t.finish()
		return overdraft, true
	}
}

func (t *Tween) update(progress float64) {
	eased := t.opts.easing(progress)
	for _, fn := range t.onUpdate {
		fn(eased)
	}
}

func (t *Tween) finish() {
	if t.subscribed {
		t.ticker.Unsubscribe(t)
		t.subscribed = false
	}
	t.onCompleted.invoke()
	t.state = Finished
	if !t.doneClosed {
		t.doneClosed = true
		close(t.done)
	}
}
