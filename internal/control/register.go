package control

import "sync"

// Register is a single-slot, overwrite-on-send mailbox between the pose
// producer and the render consumer. Publish never blocks and the consumer
// only ever sees the most recent signal.
type Register struct {
	mu   sync.Mutex // serialises producers so drain+send is atomic
	slot chan Signal

	// consumer side; touched only by the render tick
	last Signal
}

// NewRegister returns a register whose last-known value starts at initial.
func NewRegister(initial Signal) *Register {
	return &Register{
		slot: make(chan Signal, 1),
		last: initial,
	}
}

// Publish replaces any pending signal with s.
func (r *Register) Publish(s Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.slot:
	default:
	}
	r.slot <- s
}

// Latest returns the newest published signal, or the last known one when
// nothing new arrived. fresh reports whether a new value was taken.
func (r *Register) Latest() (s Signal, fresh bool) {
	select {
	case s = <-r.slot:
		r.last = s
		return s, true
	default:
		return r.last, false
	}
}
