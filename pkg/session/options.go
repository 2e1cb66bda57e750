package session

import (
	"log/slog"

	"github.com/pastryjoy/clientkit/pkg/credstore"
	"github.com/pastryjoy/clientkit/pkg/locale"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithCredentialStore sets the store holding the bearer credential. Use a
// durable store (credstore.FileStore) when the session should survive a
// restart.
func WithCredentialStore(store credstore.Store) Option {
	return func(m *Manager) {
		if store != nil {
			m.creds = store
		}
	}
}

// WithLocaleEngine sets the engine rendering the active UI language.
func WithLocaleEngine(engine locale.Engine) Option {
	return func(m *Manager) {
		if engine != nil {
			m.engine = engine
		}
	}
}

// WithChoiceStore sets the store for the device-scoped locale choice.
func WithChoiceStore(store locale.ChoiceStore) Option {
	return func(m *Manager) {
		m.choices = store
	}
}

// WithSystemLocaleTag overrides the user agent's language tag consulted by
// the resolution policy. Defaults to the process environment's locale.
func WithSystemLocaleTag(tag string) Option {
	return func(m *Manager) {
		m.systemTag = tag
	}
}

// WithLogger sets a custom logger for the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}
