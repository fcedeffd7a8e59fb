package orchestrator

// Test-only accessors, compiled into the test binary only.

// SetTransitionHook registers fn to observe every state change.
func (o *Orchestrator) SetTransitionHook(fn func(from, to State)) {
	o.onTransition = fn
}

var ValidateBatch = validateBatch
