package dispatch

import (
	"context"
	"sync/atomic"
)

// Signal is a one-shot broadcast cancellation switch. It moves from active
// to aborted exactly once and never back.
type Signal struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	aborted atomic.Bool
}

func newSignal() *Signal {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Signal{ctx: ctx, cancel: cancel}
}

// Done is closed once the signal fires.
func (s *Signal) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Aborted reports whether the signal has fired.
func (s *Signal) Aborted() bool {
	return s.aborted.Load()
}

// Cause returns the abort cause, or nil while the signal is active.
func (s *Signal) Cause() error {
	if !s.Aborted() {
		return nil
	}
	return context.Cause(s.ctx)
}

// Abort fires the signal with cause (ErrAborted if nil). Only the first call
// has an effect; it reports whether this call made the transition.
func (s *Signal) Abort(cause error) bool {
	if cause == nil {
		cause = ErrAborted
	}
	if !s.aborted.CompareAndSwap(false, true) {
		return false
	}
	s.cancel(cause)
	return true
}

// bind derives a request context from parent that is also cancelled when
// the signal fires, carrying the signal's cause. Binding to a signal that
// has already fired returns an already-cancelled context.
func (s *Signal) bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	if s.ctx.Err() != nil {
		cancel(context.Cause(s.ctx))
		return ctx, func() { cancel(context.Canceled) }
	}
	stop := context.AfterFunc(s.ctx, func() {
		cancel(context.Cause(s.ctx))
	})
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}
