package flowent

import "sync"

// Tickable receives time from a TickSource. The return values mirror
// Animation.Advance so a flow can sit behind the same contract as a leaf.
type Tickable interface {
	Advance(deltaTime float64) (overdraft float64, done bool)
}

// TickSource is the per-frame time feed animations subscribe to while they
// play standalone. Children of a flow never subscribe; their time arrives
// from the parent.
type TickSource interface {
	Subscribe(r Tickable)
	Unsubscribe(r Tickable)
}

// Ticker is a manual TickSource: every Tick call fans the delta out to the
// subscribed receivers in subscription order. It is the deterministic driver
// used in tests and the building block of the wall-clock Runtime. The
// receiver slice keeps the order; the membership set makes the per-receiver
// mid-tick check constant time.
type Ticker struct {
	mu        sync.Mutex
	receivers []Tickable
	members   map[Tickable]struct{}
}

func NewTicker() *Ticker {
	return &Ticker{members: make(map[Tickable]struct{})}
}

// Subscribe registers r. Subscribing an already subscribed receiver is a
// no-op.
func (t *Ticker) Subscribe(r Tickable) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.members[r]; ok {
		return
	}
	t.members[r] = struct{}{}
	t.receivers = append(t.receivers, r)
}

// Unsubscribe removes r, preserving the order of the remaining receivers.
func (t *Ticker) Unsubscribe(r Tickable) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.members[r]; !ok {
		return
	}
	delete(t.members, r)
	for i, cur := range t.receivers {
		if cur == r {
			t.receivers = append(t.receivers[:i], t.receivers[i+1:]...)
			return
		}
	}
}

// Tick advances every subscriber by deltaTime. Receivers may subscribe or
// unsubscribe from inside the call; a receiver subscribed mid-tick first
// sees the next tick, and one unsubscribed mid-tick is not advanced.
func (t *Ticker) Tick(deltaTime float64) {
	t.mu.Lock()
	snapshot := make([]Tickable, len(t.receivers))
	copy(snapshot, t.receivers)
	t.mu.Unlock()

	for _, r := range snapshot {
		if !t.subscribed(r) {
			continue
		}
		r.Advance(deltaTime)
	}
}

func (t *Ticker) subscribed(r Tickable) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.members[r]
	return ok
}
