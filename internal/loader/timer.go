package loader

import (
	"sync"
	"time"
)

// Handle identifies one armed timer. The zero Handle never gets assigned
// by a real Timer, so it doubles as "nothing armed" and Cancel(0) is a
// safe no-op.
type Handle uint64

// Timer is the debounce clock abstraction spec §9 calls for: hosts inject
// a Timer rather than the loader hard-wiring a clock source, which is
// also what makes deterministic debounce tests (spec §8 S6) possible via
// a fake implementation.
type Timer interface {
	Arm(d time.Duration, cb func()) Handle
	Cancel(h Handle)
}

// realTimer wraps time.AfterFunc/Stop. This is the same reset-on-rearm
// idiom as github.com/bep/debounce (an indirect dependency pulled in
// elsewhere in the example pack), reimplemented here because debounce's
// single "call again to rearm" function doesn't expose a Cancel distinct
// from rearming, and can't be swapped for a fake clock in tests.
type realTimer struct {
	mu     sync.Mutex
	next   Handle
	timers map[Handle]*time.Timer
}

// NewRealTimer returns the production Timer implementation.
func NewRealTimer() Timer {
	return &realTimer{timers: make(map[Handle]*time.Timer)}
}

func (t *realTimer) Arm(d time.Duration, cb func()) Handle {
	t.mu.Lock()
	t.next++
	h := t.next
	t.mu.Unlock()

	tm := time.AfterFunc(d, func() {
		t.mu.Lock()
		delete(t.timers, h)
		t.mu.Unlock()
		cb()
	})

	t.mu.Lock()
	t.timers[h] = tm
	t.mu.Unlock()
	return h
}

func (t *realTimer) Cancel(h Handle) {
	if h == 0 {
		return
	}
	t.mu.Lock()
	tm, ok := t.timers[h]
	delete(t.timers, h)
	t.mu.Unlock()
	if ok {
		tm.Stop()
	}
}
