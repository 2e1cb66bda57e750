package session

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/pastryjoy/clientkit/pkg/credstore"
	"github.com/pastryjoy/clientkit/pkg/identity"
	"github.com/pastryjoy/clientkit/pkg/locale"
)

// Phase is the coarse lifecycle state of the session manager.
type Phase string

const (
	// PhaseInitializing means the startup sequence has not completed;
	// identity absence is meaningless until it has.
	PhaseInitializing Phase = "initializing"
	// PhaseReady means startup completed and identity presence is the
	// authoritative authentication signal.
	PhaseReady Phase = "ready"
)

// Manager owns the client-side session state. It is the single writer of
// the identity record and the phase; consumers read snapshots and invoke
// its operations.
type Manager struct {
	client    identity.Client
	creds     credstore.Store
	engine    locale.Engine
	choices   locale.ChoiceStore
	systemTag string
	logger    *slog.Logger

	mu      sync.RWMutex
	phase   Phase
	ident   *identity.Identity
	epoch   uint64
	started bool
}

// New creates a session manager talking to the given identity backend.
// Without options the manager keeps the credential and locale choice in
// memory and drives an in-memory locale engine.
func New(client identity.Client, opts ...Option) *Manager {
	m := &Manager{
		client:    client,
		creds:     credstore.NewMemoryStore(),
		engine:    locale.NewStaticEngine(locale.Default),
		choices:   locale.NewMemoryChoiceStore(),
		systemTag: locale.SystemTag(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		phase:     PhaseInitializing,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start runs the startup sequence and completes into PhaseReady. It is
// invoked once by whatever owns the manager's lifetime; repeat calls are
// no-ops. Failures are recovered silently: a credential the backend no
// longer accepts is cleared and the session ends up Ready and
// unauthenticated, indistinguishable from never having logged in.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	epoch := m.epoch
	m.mu.Unlock()

	if !credstore.HasCredential(m.creds) {
		m.completeStartup(epoch, nil)
		return
	}

	ident, err := m.client.FetchProfile(ctx)
	if err != nil {
		m.logger.Debug("startup profile fetch failed, clearing credential",
			slog.Any("error", err))
		if err := m.creds.Clear(); err != nil {
			m.logger.Error("failed to clear credential", slog.Any("error", err))
		}
		m.completeStartup(epoch, nil)
		return
	}

	m.completeStartup(epoch, ident)
}

// completeStartup publishes the startup result. The phase flips to Ready
// exactly once regardless of epoch; the identity and locale are applied
// only when no newer mutation superseded this startup.
func (m *Manager) completeStartup(epoch uint64, ident *identity.Identity) {
	m.mu.Lock()
	m.phase = PhaseReady
	current := m.epoch == epoch
	if current {
		m.ident = ident
	}
	m.mu.Unlock()

	if current && ident != nil {
		m.syncLocale(ident.LocalePreference)
	}
}

// syncLocale runs the resolution policy with the given identity preference
// as the primary source and activates the result.
func (m *Manager) syncLocale(identityPref *locale.Locale) {
	var stored *locale.Locale
	if m.choices != nil {
		if l, ok := m.choices.Get(); ok {
			stored = &l
		}
	}
	active := locale.Resolve(identityPref, stored, m.systemTag)
	m.engine.Activate(active)
	m.logger.Debug("active locale resolved", slog.String("locale", active.String()))
}

// Login exchanges the credentials, persists the returned token and fetches
// the profile behind it. An identity.ErrAuthenticationFailed propagates to
// the caller with state untouched. A profile fetch failure rolls the saved
// credential back so the client never ends up half logged in.
func (m *Manager) Login(ctx context.Context, usernameOrEmail, password string) error {
	epoch := m.beginOp()

	handle, err := m.client.ExchangeCredentials(ctx, usernameOrEmail, password)
	if err != nil {
		return err
	}
	if m.superseded(epoch) {
		return ErrSuperseded
	}
	if err := m.creds.Save(handle.AccessToken); err != nil {
		return err
	}

	ident, err := m.client.FetchProfile(ctx)
	if err != nil {
		if clearErr := m.creds.Clear(); clearErr != nil {
			m.logger.Error("failed to roll back credential", slog.Any("error", clearErr))
		}
		return err
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return ErrSuperseded
	}
	m.ident = ident
	m.mu.Unlock()

	// Post-login the identity preference wins unconditionally; no other
	// source is consulted.
	if ident.LocalePreference != nil {
		m.engine.Activate(*ident.LocalePreference)
	}

	m.logger.Info("logged in",
		slog.String("username", ident.Username),
		slog.String("role", string(ident.Role)))
	return nil
}

// Register creates the account and immediately performs the full login
// sequence with the same credentials. Registration has no independent
// logged-in state; it is defined as create-then-login. A rejection or a
// failed chained login propagates to the caller.
func (m *Manager) Register(ctx context.Context, reg identity.Registration) error {
	if _, err := m.client.CreateAccount(ctx, reg); err != nil {
		return err
	}
	return m.Login(ctx, reg.Username, reg.Password)
}

// Logout clears the credential and drops the identity. It never fails, does
// not touch the phase and leaves the active locale alone. Any in-flight
// login or startup completion is superseded.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.epoch++
	m.ident = nil
	m.mu.Unlock()

	if err := m.creds.Clear(); err != nil {
		m.logger.Error("failed to clear credential on logout", slog.Any("error", err))
	}
	m.logger.Info("logged out")
}

// UpdateLocalePreference patches the in-memory identity's locale preference
// after an external settings flow already persisted it to the backend. It
// is local-only: no backend call is made and the active UI locale is not
// switched here. Called while logged out it is a silent no-op.
func (m *Manager) UpdateLocalePreference(l locale.Locale) {
	if !l.Valid() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ident == nil {
		return
	}
	pref := l
	m.ident.LocalePreference = &pref
}

// SaveLocalePreference is the full settings flow: it persists the preferred
// language on the backend when the client supports it, patches the local
// identity, remembers the choice on this device and switches the active
// locale. Requires an authenticated session.
func (m *Manager) SaveLocalePreference(ctx context.Context, l locale.Locale) error {
	if !l.Valid() {
		return locale.ErrUnsupportedLocale
	}

	m.mu.RLock()
	present := m.ident != nil
	m.mu.RUnlock()
	if !present {
		return ErrNotAuthenticated
	}

	if sc, ok := m.client.(identity.SettingsClient); ok {
		if err := sc.UpdateLocalePreference(ctx, l); err != nil {
			return err
		}
	}

	m.UpdateLocalePreference(l)
	if m.choices != nil {
		if err := m.choices.Set(l); err != nil {
			m.logger.Error("failed to persist locale choice", slog.Any("error", err))
		}
	}
	m.engine.Activate(l)
	return nil
}

// Phase returns the current lifecycle phase.
func (m *Manager) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// Identity returns a snapshot of the current identity, or nil while logged
// out or initializing. Mutating the snapshot does not affect the session.
func (m *Manager) Identity() *identity.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ident.Clone()
}

// IsAdmin reports whether an identity is present and carries the admin
// role. Callable in any phase; false whenever the identity is absent.
func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ident.IsAdmin()
}

// ActiveLocale returns the locale engine's current language.
func (m *Manager) ActiveLocale() locale.Locale {
	return m.engine.Current()
}

// beginOp stamps a new session-mutating operation. Completions compare
// their stamp against the current epoch and discard themselves when stale.
func (m *Manager) beginOp() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	return m.epoch
}

func (m *Manager) superseded(epoch uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch != epoch
}
