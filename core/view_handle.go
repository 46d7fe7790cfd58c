package core

import (
	"context"
	"sync/atomic"
	"time"
)

// ViewHandle is the owned capability for one view: exactly one pin entry and
// exactly one safety token. It is consumed exactly once, by either Release or
// ReleaseAfter; the state machine is Active -> Released with no way back.
type ViewHandle struct {
	id       string
	registry *PinRegistry
	entry    *PinEntry
	token    *SafetyToken
	exec     Scheduler
	logger   Logger
	metrics  Metrics
	released atomic.Bool
}

// ID returns the handle's identifier, used in logs.
func (h *ViewHandle) ID() string {
	return h.id
}

// Released reports whether the handle has been consumed.
func (h *ViewHandle) Released() bool {
	return h.released.Load()
}

// Release invalidates the safety token and then unpins, synchronously, in
// that order. A second release of the same handle fails with
// ErrHandleReleased.
func (h *ViewHandle) Release() error {
	if !h.released.CompareAndSwap(false, true) {
		return ErrHandleReleased
	}

	// Token first: no access may pass validation once the unpin can race it.
	h.token.Invalidate()
	err := h.registry.Unpin(h.entry)
	h.entry = nil

	h.logger.Debug("view released", F("handle", h.id))
	return err
}

// ReleaseAfter invalidates the safety token immediately, then transfers the
// pin entry into a deferred release task scheduled with an edge from dep, so
// the unpin runs only after dep (and, transitively, everything dep depends
// on) has completed. Non-blocking: the handle is Released as soon as the
// call returns, independent of when the task executes.
//
// The returned Completion fires only after the unpin has actually happened;
// callers that need the memory to be reclaimable must wait on it, not on dep.
// A nil dep means the release task has no upstream edge and is immediately
// ready.
//
// When no executor is configured, or the executor is already shutting down,
// the unpin falls back to the synchronous path so the pin cannot leak; the
// returned Completion is already signaled and the error reports the
// degradation.
func (h *ViewHandle) ReleaseAfter(dep *Completion) (*Completion, error) {
	if !h.released.CompareAndSwap(false, true) {
		return nil, ErrHandleReleased
	}

	// Invalidated before the call returns: no new consumer may be legally
	// scheduled against this view, even while in-flight workers finish.
	h.token.Invalidate()

	entry := h.entry
	h.entry = nil

	if h.exec == nil {
		uerr := h.registry.Unpin(entry)
		if uerr != nil {
			return newCompletedCompletion(), uerr
		}
		return newCompletedCompletion(), ErrNoExecutor
	}

	scheduled := time.Now()
	done, err := h.exec.Submit(func(ctx context.Context) {
		h.metrics.RecordDeferredRelease(time.Since(scheduled))
		if uerr := h.registry.Unpin(entry); uerr != nil {
			h.logger.Error("deferred unpin failed",
				F("handle", h.id), F("error", uerr))
		}
	}, dep)
	if err != nil {
		// Rejected by the executor: release synchronously rather than leak.
		if uerr := h.registry.Unpin(entry); uerr != nil {
			h.logger.Error("fallback unpin failed",
				F("handle", h.id), F("error", uerr))
		}
		return newCompletedCompletion(), err
	}

	h.logger.Debug("view release deferred", F("handle", h.id))
	return done, nil
}
