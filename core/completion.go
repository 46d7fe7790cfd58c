package core

import (
	"context"
	"sync"
)

// Completion represents "this unit of work has finished". The executor
// signals one per submitted task; ReleaseAfter returns one that fires only
// after the unpin has actually happened.
//
// Completions double as dependency edges: a task submitted with a Completion
// dependency does not become ready until that Completion is signaled.
type Completion struct {
	mu   sync.Mutex
	done bool
	ch   chan struct{}
	subs []func()
}

// NewCompletion creates an unsignaled completion. Callers can use it to gate
// tasks on events outside the executor, signaling it themselves.
func NewCompletion() *Completion {
	return &Completion{
		ch: make(chan struct{}),
	}
}

func newCompletedCompletion() *Completion {
	c := NewCompletion()
	c.Signal()
	return c
}

// Signal marks the completion done, closes the Done channel, and runs the
// registered edge callbacks. Safe to call more than once; only the first
// call has any effect.
func (c *Completion) Signal() {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	subs := c.subs
	c.subs = nil
	close(c.ch)
	c.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Done returns a channel closed when the completion is signaled.
func (c *Completion) Done() <-chan struct{} {
	return c.ch
}

// Completed reports whether the completion has been signaled.
func (c *Completion) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Wait blocks until the completion is signaled or ctx is canceled.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// onComplete registers fn to run when the completion is signaled. If it
// already has been, fn runs immediately on the calling goroutine.
func (c *Completion) onComplete(fn func()) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		fn()
		return
	}
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}
