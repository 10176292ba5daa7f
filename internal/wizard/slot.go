package wizard

import (
	"context"
	"sync"
)

// Slot owns the cancellation token for one kind of remote action. Starting a
// new action cancels the previous one, so only the latest may apply its result.
type Slot struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	active bool
}

// Ticket identifies one started action.
type Ticket struct {
	ctx context.Context
	gen uint64
}

// Context is the context the action must run under.
func (t Ticket) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

// Begin cancels any pending action and returns a ticket for a new one.
func (s *Slot) Begin(parent context.Context) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.gen++
	s.cancel = cancel
	s.active = true
	return Ticket{ctx: ctx, gen: s.gen}
}

// Current reports whether t is the latest ticket and has not been canceled.
func (s *Slot) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && t.gen == s.gen && t.ctx != nil && t.ctx.Err() == nil
}

// Finish releases t. It returns true when t was still current, meaning the
// caller may apply the action's result.
func (s *Slot) Finish(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || t.gen != s.gen {
		return false
	}
	current := t.ctx != nil && t.ctx.Err() == nil
	s.cancel()
	s.cancel = nil
	s.active = false
	return current
}

// Cancel aborts the pending action, if any, and invalidates its ticket.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.active = false
}

// Busy reports whether an action holds the slot.
func (s *Slot) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
