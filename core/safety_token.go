package core

import "sync/atomic"

// SafetyToken is the validity flag attached to a checked view. Its state is
// monotonic: once invalidated it never returns to valid.
//
// A nil token is the unchecked variant: Validate is a no-op success and
// Invalidate does nothing. Views built with SafetyChecks disabled carry a nil
// token, so the checked/unchecked split is a configuration-time selection
// rather than conditional compilation in the access paths.
type SafetyToken struct {
	invalidated atomic.Bool
	onViolation func()
}

// Validate fails with ErrViewReleased once the token has been invalidated.
func (t *SafetyToken) Validate() error {
	if t == nil {
		return nil
	}
	if t.invalidated.Load() {
		if t.onViolation != nil {
			t.onViolation()
		}
		return ErrViewReleased
	}
	return nil
}

// Invalidate marks the token released. Idempotent.
func (t *SafetyToken) Invalidate() {
	if t != nil {
		t.invalidated.Store(true)
	}
}

// Invalidated reports whether the token has been invalidated.
// A nil (unchecked) token never reports invalidated.
func (t *SafetyToken) Invalidated() bool {
	return t != nil && t.invalidated.Load()
}

// tokenPolicy issues the safety token for a new view. The checked policy
// issues a fresh token per view; the unchecked policy issues the nil token.
// One of the two is selected when the Builder is constructed.
type tokenPolicy interface {
	issue(onViolation func()) *SafetyToken
}

type checkedTokens struct{}

func (checkedTokens) issue(onViolation func()) *SafetyToken {
	return &SafetyToken{onViolation: onViolation}
}

type uncheckedTokens struct{}

func (uncheckedTokens) issue(func()) *SafetyToken {
	return nil
}
