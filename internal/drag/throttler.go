// Package drag coalesces the high-frequency position updates of a drag
// gesture into at most one store write per flush interval.
package drag

import (
	"sync"
	"time"

	"github.com/xaenox/problem-notes/internal/models"
)

// DefaultInterval is one display frame at 60Hz.
const DefaultInterval = 16 * time.Millisecond

// Mover receives committed positions. *store.Store satisfies it.
type Mover interface {
	MoveElement(id string, position models.Position)
}

type move struct {
	id       string
	position models.Position
}

// Throttler buffers at most one pending position. A newer position for
// the same element replaces the buffered one; a position for another
// element first commits the buffered one, so nothing is dropped and
// commits keep their order. End flushes synchronously.
type Throttler struct {
	mover    Mover
	interval time.Duration
	now      func() time.Time

	mu         sync.Mutex
	pending    *move
	timer      *time.Timer
	generation uint64
	lastCommit time.Time
}

func NewThrottler(mover Mover, interval time.Duration) *Throttler {
	if interval < 0 {
		interval = 0
	}
	return &Throttler{
		mover:    mover,
		interval: interval,
		now:      time.Now,
	}
}

// Move records the latest position of a dragged element.
func (t *Throttler) Move(id string, position models.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil && t.pending.id != id {
		t.commitLocked(*t.pending)
		t.pending = nil
	}

	now := t.now()
	elapsed := now.Sub(t.lastCommit)
	if t.timer == nil && t.pending == nil && elapsed >= t.interval {
		t.commitLocked(move{id: id, position: position})
		return
	}

	t.pending = &move{id: id, position: position}
	if t.timer == nil {
		wait := t.interval - elapsed
		if wait < 0 {
			wait = 0
		}
		t.generation++
		gen := t.generation
		t.timer = time.AfterFunc(wait, func() { t.flush(gen) })
	}
}

func (t *Throttler) flush(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation {
		return
	}
	t.timer = nil
	if t.pending != nil {
		t.commitLocked(*t.pending)
		t.pending = nil
	}
}

// End finishes the gesture: the scheduled flush is cancelled and any
// buffered position is committed before End returns.
func (t *Throttler) End() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.generation++
	if t.pending != nil {
		t.commitLocked(*t.pending)
		t.pending = nil
	}
}

// Cancel aborts the gesture. The buffered position is still committed.
func (t *Throttler) Cancel() {
	t.End()
}

// Pending reports whether a position is waiting to be committed.
func (t *Throttler) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

func (t *Throttler) commitLocked(m move) {
	t.mover.MoveElement(m.id, m.position)
	t.lastCommit = t.now()
}
