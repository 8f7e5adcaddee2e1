package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
)

// ErrStale is returned when the selection changed while an operation was in flight
var ErrStale = errors.New("selection changed while the operation was in flight")

// Selection is the (wallet, chain) pair a client is currently working with
type Selection struct {
	Wallet string
	Chain  domain.Chain
}

// Tracker records the active selection of each client slot.
// Beginning a different selection on a slot supersedes every ticket issued for
// the previous one; tickets for the same selection run side by side.
type Tracker struct {
	mu          sync.Mutex
	slots       map[string]*slot
	generations uint64
}

type slot struct {
	generation uint64
	selection  Selection
	nextID     uint64
	inflight   map[uint64]context.CancelFunc
}

// Ticket identifies one in-flight operation
type Ticket struct {
	tracker    *Tracker
	slot       string
	id         uint64
	generation uint64
	selection  Selection
	ctx        context.Context
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{slots: make(map[string]*slot)}
}

// Begin makes (wallet, chain) the active selection of the slot and returns a ticket for it.
// The ticket context is canceled as soon as the ticket is superseded.
func (t *Tracker) Begin(ctx context.Context, slotID string, wallet string, chain domain.Chain) Ticket {
	ctx, cancel := context.WithCancel(ctx)
	selection := Selection{Wallet: domain.NormalizeAddress(wallet), Chain: chain}

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.slots[slotID]
	switch {
	case !ok:
		t.generations++
		s = &slot{generation: t.generations, selection: selection, inflight: make(map[uint64]context.CancelFunc)}
		t.slots[slotID] = s
	case s.selection != selection:
		for _, c := range s.inflight {
			c()
		}
		t.generations++
		s.generation = t.generations
		s.selection = selection
		s.inflight = make(map[uint64]context.CancelFunc)
	}

	s.nextID++
	s.inflight[s.nextID] = cancel

	return Ticket{
		tracker:    t,
		slot:       slotID,
		id:         s.nextID,
		generation: s.generation,
		selection:  selection,
		ctx:        ctx,
	}
}

// Finish ends the ticket. The slot is dropped once its last active ticket finishes.
func (t *Tracker) Finish(ticket Ticket) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.slots[ticket.slot]
	if !ok || s.generation != ticket.generation {
		return
	}
	if cancel, ok := s.inflight[ticket.id]; ok {
		cancel()
		delete(s.inflight, ticket.id)
	}
	if len(s.inflight) == 0 {
		delete(t.slots, ticket.slot)
	}
}

func (t *Tracker) current(slotID string, generation uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.slots[slotID]
	return ok && s.generation == generation
}

// Valid reports whether the ticket's selection is still the active one
func (k Ticket) Valid() bool {
	if k.tracker == nil {
		return false
	}
	return k.tracker.current(k.slot, k.generation)
}

// Context is canceled when the ticket is superseded or finished
func (k Ticket) Context() context.Context {
	return k.ctx
}

// Run executes fn under the ticket. The result is discarded with ErrStale when the
// selection changed before fn returned.
func Run[T any](ticket Ticket, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	result, err := fn(ticket.Context())
	if !ticket.Valid() {
		logger.DebugCtx(ticket.Context(), "Discarding result of superseded selection",
			zap.String("wallet", ticket.selection.Wallet),
			zap.String("chain", string(ticket.selection.Chain)))
		return zero, ErrStale
	}
	if err != nil {
		return zero, err
	}
	return result, nil
}
