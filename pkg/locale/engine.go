package locale

import "sync"

// Engine abstracts the UI layer that renders in the active language. The
// session manager drives it; consumers read from it. Implementations must
// always report exactly one active locale.
type Engine interface {
	// Current returns the active locale.
	Current() Locale

	// Activate switches the active locale. Invalid locales are ignored so
	// the engine never ends up without a valid active language.
	Activate(l Locale)
}

// StaticEngine is a concurrency-safe in-memory Engine. It backs CLI
// consumers and tests; web front ends plug in their own implementation.
type StaticEngine struct {
	mu     sync.RWMutex
	active Locale
}

// NewStaticEngine creates an engine with the given initial locale, falling
// back to Default when the value is invalid.
func NewStaticEngine(initial Locale) *StaticEngine {
	if !initial.Valid() {
		initial = Default
	}
	return &StaticEngine{active: initial}
}

func (e *StaticEngine) Current() Locale {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

func (e *StaticEngine) Activate(l Locale) {
	if !l.Valid() {
		return
	}
	e.mu.Lock()
	e.active = l
	e.mu.Unlock()
}
