// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package debounce delays actions per key, so only the last of a burst runs.
package debounce

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Keyed holds at most one pending action per key.
// Scheduling an action for a key with a pending action cancels the pending one.
// Actions for different keys are independent.
type Keyed[K comparable] struct {
	clock  clock.WithDelayedExecution
	period time.Duration

	m       sync.Mutex
	pending map[K]*entry
	stopped bool
}

type entry struct {
	timer  clock.Timer
	action func()
}

// New Keyed debouncer that delays actions by period on clock c.
// If c is nil, the real clock is used.
func New[K comparable](c clock.WithDelayedExecution, period time.Duration) *Keyed[K] {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Keyed[K]{clock: c, period: period, pending: map[K]*entry{}}
}

// Schedule action to run after the period, replacing any pending action for key.
// Does nothing after Stop.
func (d *Keyed[K]) Schedule(key K, action func()) {
	d.m.Lock()
	defer d.m.Unlock()
	if d.stopped {
		return
	}
	d.cancel(key)
	e := &entry{action: action}
	e.timer = d.clock.AfterFunc(d.period, func() { d.fire(key, e) })
	d.pending[key] = e
}

// fire runs e if it is still the pending entry for key.
// A timer that fired while being replaced finds a different entry and does nothing.
func (d *Keyed[K]) fire(key K, e *entry) {
	d.m.Lock()
	if d.pending[key] != e {
		d.m.Unlock()
		return
	}
	delete(d.pending, key)
	d.m.Unlock()
	e.action()
}

// Cancel the pending action for key, returns true if there was one.
func (d *Keyed[K]) Cancel(key K) bool {
	d.m.Lock()
	defer d.m.Unlock()
	return d.cancel(key)
}

func (d *Keyed[K]) cancel(key K) bool {
	e, ok := d.pending[key]
	if ok {
		e.timer.Stop()
		delete(d.pending, key)
	}
	return ok
}

// Pending returns the number of keys with a pending action.
func (d *Keyed[K]) Pending() int {
	d.m.Lock()
	defer d.m.Unlock()
	return len(d.pending)
}

// Flush runs all pending actions now, in the calling goroutine.
func (d *Keyed[K]) Flush() {
	d.m.Lock()
	var actions []func()
	for key, e := range d.pending {
		e.timer.Stop()
		actions = append(actions, e.action)
		delete(d.pending, key)
	}
	d.m.Unlock()
	for _, a := range actions {
		a()
	}
}

// Stop cancels all pending actions, later calls to Schedule do nothing.
func (d *Keyed[K]) Stop() {
	d.m.Lock()
	defer d.m.Unlock()
	d.stopped = true
	for key := range d.pending {
		d.cancel(key)
	}
}
