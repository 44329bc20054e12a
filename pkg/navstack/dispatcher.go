package navstack

import (
	"go.uber.org/atomic"

	"github.com/BrandonKowalski/navstack/pkg/navstack/constants"
)

// dispatcher serializes navigation work on the single logical UI thread. Work
// submitted while other work is running is queued and drained in submission
// order once the running work, including its side effects, has finished.
type dispatcher struct {
	busy     atomic.Bool
	queue    []func()
	maxQueue int
	overflow bool
}

func newDispatcher() *dispatcher {
	return &dispatcher{maxQueue: constants.DefaultMaxQueuedOps}
}

// run executes fn now if idle and reports true, or queues it and reports false.
// Queuing fails with ErrQueueOverflow once the queue is full; the pending
// queue is then dropped after the running work finishes.
func (d *dispatcher) run(fn func()) (ran bool, err error) {
	if !d.busy.CompareAndSwap(false, true) {
		if len(d.queue) >= d.maxQueue {
			d.overflow = true
			return false, ErrQueueOverflow
		}
		d.queue = append(d.queue, fn)
		return false, nil
	}
	defer func() {
		d.queue = nil
		d.overflow = false
		d.busy.Store(false)
	}()

	fn()
	for len(d.queue) > 0 && !d.overflow {
		next := d.queue[0]
		d.queue = d.queue[1:]
		next()
	}
	return true, nil
}

// idle reports whether nothing is running.
func (d *dispatcher) idle() bool {
	return !d.busy.Load()
}
