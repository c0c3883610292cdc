// Package errors - error hook integration
package errors

import (
	"sync"
	"sync/atomic"
)

// ErrorHook is called for every EnhancedError produced by Build.
// Hooks must be fast and must not build new errors.
type ErrorHook func(ee *EnhancedError)

var (
	hooksMu     sync.RWMutex
	errorHooks  []ErrorHook
	hooksActive atomic.Bool
)

// AddErrorHook registers a hook that observes every built error
func AddErrorHook(hook ErrorHook) {
	if hook == nil {
		return
	}
	hooksMu.Lock()
	defer hooksMu.Unlock()
	errorHooks = append(errorHooks, hook)
	hooksActive.Store(true)
}

// ClearErrorHooks removes all registered hooks
func ClearErrorHooks() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	errorHooks = nil
	hooksActive.Store(false)
}

// notifyHooks passes the error to registered hooks
func notifyHooks(ee *EnhancedError) {
	// Fast path when nothing is listening
	if !hooksActive.Load() {
		return
	}

	hooksMu.RLock()
	hooks := make([]ErrorHook, len(errorHooks))
	copy(hooks, errorHooks)
	hooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ee)
	}
}
