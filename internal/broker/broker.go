// Package broker serializes exclusive access to the engine subprocess.
//
// The engine is one shared, stateful, line-buffered resource; two
// conversations interleaved on its stdio corrupt each other's parse state.
// The broker guarantees that exactly one conversation is in flight at a
// time by granting Tickets strictly in Acquire call order.
package broker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pleasehelpm32/chesstutor/internal/errors"
)

// Ticket is one exclusive occupation of the engine granted to one logical
// request. It is created on grant and destroyed when the request resolves,
// is rejected, or times out; it never outlives its owning request.
type Ticket struct {
	id        string
	grantedAt time.Time
	fail      chan error
}

// ID returns the ticket's unique identity.
func (t *Ticket) ID() string {
	return t.id
}

// GrantedAt returns when the broker granted this ticket.
func (t *Ticket) GrantedAt() time.Time {
	return t.grantedAt
}

// Failed yields the rejection reason when the broker bulk-fails the active
// ticket (engine crash or shutdown). It never yields on normal release.
func (t *Ticket) Failed() <-chan error {
	return t.fail
}

type grantResult struct {
	ticket *Ticket
	err    error
}

// waiter is one queued Acquire call.
type waiter struct {
	id      string
	ch      chan grantResult
	removed bool
}

// Broker grants Tickets FIFO, one at a time, only while the engine is ready.
type Broker struct {
	log *slog.Logger

	mu       sync.Mutex
	ready    bool
	active   *Ticket
	queue    []*waiter
	maxDepth int
}

// New creates a broker. maxDepth bounds the wait queue; zero means
// unbounded, and past the bound Acquire rejects with EngineBusyError.
func New(log *slog.Logger, maxDepth int) *Broker {
	return &Broker{
		log:      log.With("component", "broker"),
		maxDepth: maxDepth,
	}
}

// SetReady marks the engine ready (or not) for new grants. Turning ready
// on grants the next queued waiter, if any.
func (b *Broker) SetReady(ready bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ready = ready
	if ready {
		b.grantNextLocked()
	}
}

// Acquire blocks until the caller is granted exclusive use of the engine,
// the context is cancelled, or the broker fails. Callers are served
// strictly in Acquire call order.
func (b *Broker) Acquire(ctx context.Context) (*Ticket, error) {
	b.mu.Lock()

	if b.maxDepth > 0 && len(b.queue) >= b.maxDepth {
		b.mu.Unlock()
		b.log.Debug("Acquire rejected, wait queue full", "max_depth", b.maxDepth)

		return nil, &errors.EngineBusyError{QueueDepth: b.maxDepth}
	}

	w := &waiter{
		id: ulid.Make().String(),
		ch: make(chan grantResult, 1),
	}
	b.queue = append(b.queue, w)
	b.grantNextLocked()
	b.mu.Unlock()

	select {
	case res := <-w.ch:
		return res.ticket, res.err

	case <-ctx.Done():
		b.mu.Lock()
		// The grant may have raced the cancellation; if it did, hand the
		// ticket straight back so the next waiter is not starved.
		select {
		case res := <-w.ch:
			b.mu.Unlock()

			if res.ticket != nil {
				b.Release(res.ticket)
			}

			return nil, ctx.Err()
		default:
			w.removed = true
			b.removeLocked(w)
			b.mu.Unlock()
			b.log.Debug("Queued ticket cancelled before grant", "waiter_id", w.id)

			return nil, ctx.Err()
		}
	}
}

// Release hands the engine back and grants the next queued waiter, if any,
// in the same step. Releasing a ticket that is not active is a no-op.
func (b *Broker) Release(t *Ticket) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active != t {
		b.log.Debug("Release of non-active ticket ignored", "ticket_id", t.ID())

		return
	}

	b.active = nil
	b.grantNextLocked()
}

// FailAll rejects every queued waiter with err, delivers err to the active
// ticket's Failed channel, and stops granting until SetReady(true).
func (b *Broker) FailAll(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ready = false

	for _, w := range b.queue {
		if w.removed {
			continue
		}

		w.removed = true
		w.ch <- grantResult{err: err}
	}

	b.queue = nil

	if b.active != nil {
		select {
		case b.active.fail <- err:
		default:
		}
	}
}

// removeLocked splices a cancelled waiter out of the queue so it no
// longer counts against the admission bound. Caller must hold b.mu.
func (b *Broker) removeLocked(w *waiter) {
	for i, q := range b.queue {
		if q == w {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)

			return
		}
	}
}

// Active returns the currently active ticket, or nil.
func (b *Broker) Active() *Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.active
}

// QueueLen returns the current wait queue depth.
func (b *Broker) QueueLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0

	for _, w := range b.queue {
		if !w.removed {
			n++
		}
	}

	return n
}

// grantNextLocked grants the head of the queue if the engine is ready and
// no ticket is active. Caller must hold b.mu.
func (b *Broker) grantNextLocked() {
	for b.ready && b.active == nil && len(b.queue) > 0 {
		w := b.queue[0]
		b.queue = b.queue[1:]

		if w.removed {
			continue
		}

		t := &Ticket{
			id:        w.id,
			grantedAt: time.Now(),
			fail:      make(chan error, 1),
		}
		b.active = t
		w.ch <- grantResult{ticket: t}
		b.log.Debug("Ticket granted", "ticket_id", t.id, "queued", len(b.queue))

		return
	}
}
