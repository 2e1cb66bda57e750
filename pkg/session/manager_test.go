package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pastryjoy/clientkit/pkg/credstore"
	"github.com/pastryjoy/clientkit/pkg/identity"
	"github.com/pastryjoy/clientkit/pkg/locale"
)

func testIdentity(role identity.Role, pref *locale.Locale) *identity.Identity {
	return &identity.Identity{
		ID:               uuid.New(),
		Email:            "baker@example.com",
		Username:         "baker",
		Role:             role,
		LocalePreference: pref,
		IsActive:         true,
	}
}

func TestManager_Start(t *testing.T) {
	t.Parallel()

	t.Run("no credential completes ready without a backend call", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		m := New(client)

		assert.Equal(t, PhaseInitializing, m.Phase())
		m.Start(context.Background())

		assert.Equal(t, PhaseReady, m.Phase())
		assert.Nil(t, m.Identity())
		client.AssertNotCalled(t, "FetchProfile", mock.Anything)
	})

	t.Run("valid credential resolves the profile and the locale", func(t *testing.T) {
		t.Parallel()

		pref := locale.ES
		client := &MockClient{}
		client.On("FetchProfile", mock.Anything).Return(testIdentity(identity.RoleUser, &pref), nil)

		creds := credstore.NewMemoryStore()
		require.NoError(t, creds.Save("stored-token"))
		engine := locale.NewStaticEngine(locale.EN)

		m := New(client,
			WithCredentialStore(creds),
			WithLocaleEngine(engine),
			WithSystemLocaleTag("en-US"),
		)
		m.Start(context.Background())

		assert.Equal(t, PhaseReady, m.Phase())
		require.NotNil(t, m.Identity())
		assert.Equal(t, "baker", m.Identity().Username)
		assert.Equal(t, locale.ES, engine.Current())
		client.AssertExpectations(t)
	})

	t.Run("failed profile fetch recovers silently and clears the credential", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		client.On("FetchProfile", mock.Anything).Return(nil, identity.ErrUnauthorized)

		creds := credstore.NewMemoryStore()
		require.NoError(t, creds.Save("expired-token"))

		m := New(client, WithCredentialStore(creds))
		m.Start(context.Background())

		assert.Equal(t, PhaseReady, m.Phase())
		assert.Nil(t, m.Identity())
		assert.False(t, credstore.HasCredential(creds))
	})

	t.Run("empty-string credential counts as absent", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		creds := credstore.NewMemoryStore()
		require.NoError(t, creds.Save(""))

		m := New(client, WithCredentialStore(creds))
		m.Start(context.Background())

		assert.Equal(t, PhaseReady, m.Phase())
		client.AssertNotCalled(t, "FetchProfile", mock.Anything)
	})

	t.Run("runs only once", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		client.On("FetchProfile", mock.Anything).Return(testIdentity(identity.RoleUser, nil), nil).Once()

		creds := credstore.NewMemoryStore()
		require.NoError(t, creds.Save("token"))

		m := New(client, WithCredentialStore(creds))
		m.Start(context.Background())
		m.Start(context.Background())

		client.AssertNumberOfCalls(t, "FetchProfile", 1)
	})

	t.Run("locale falls back to stored choice when the identity has no preference", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		client.On("FetchProfile", mock.Anything).Return(testIdentity(identity.RoleUser, nil), nil)

		creds := credstore.NewMemoryStore()
		require.NoError(t, creds.Save("token"))
		choices := locale.NewMemoryChoiceStore()
		require.NoError(t, choices.Set(locale.ES))
		engine := locale.NewStaticEngine(locale.EN)

		m := New(client,
			WithCredentialStore(creds),
			WithLocaleEngine(engine),
			WithChoiceStore(choices),
			WithSystemLocaleTag("en-US"),
		)
		m.Start(context.Background())

		assert.Equal(t, locale.ES, engine.Current())
	})
}

func TestManager_Login(t *testing.T) {
	t.Parallel()

	t.Run("persists the token and publishes the identity", func(t *testing.T) {
		t.Parallel()

		pref := locale.ES
		client := &MockClient{}
		client.On("ExchangeCredentials", mock.Anything, "baker", "secret123").
			Return(identity.TokenHandle{AccessToken: "tok-abc", TokenType: "bearer"}, nil)
		client.On("FetchProfile", mock.Anything).Return(testIdentity(identity.RoleAdmin, &pref), nil)

		creds := credstore.NewMemoryStore()
		engine := locale.NewStaticEngine(locale.EN)
		m := New(client, WithCredentialStore(creds), WithLocaleEngine(engine))

		require.NoError(t, m.Login(context.Background(), "baker", "secret123"))

		token, err := creds.Read()
		require.NoError(t, err)
		assert.Equal(t, "tok-abc", token)
		require.NotNil(t, m.Identity())
		assert.Equal(t, "baker", m.Identity().Username)
		assert.True(t, m.IsAdmin())
		assert.Equal(t, locale.ES, engine.Current())
		client.AssertExpectations(t)
	})

	t.Run("does not switch the locale without an identity preference", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		client.On("ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(identity.TokenHandle{AccessToken: "tok"}, nil)
		client.On("FetchProfile", mock.Anything).Return(testIdentity(identity.RoleUser, nil), nil)

		engine := locale.NewStaticEngine(locale.EN)
		m := New(client, WithLocaleEngine(engine))

		require.NoError(t, m.Login(context.Background(), "baker", "secret123"))
		assert.Equal(t, locale.EN, engine.Current())
	})

	t.Run("propagates authentication failure with state untouched", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		client.On("ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(identity.TokenHandle{}, identity.ErrAuthenticationFailed)

		creds := credstore.NewMemoryStore()
		m := New(client, WithCredentialStore(creds))

		err := m.Login(context.Background(), "baker", "wrong")

		assert.ErrorIs(t, err, identity.ErrAuthenticationFailed)
		assert.Nil(t, m.Identity())
		assert.False(t, credstore.HasCredential(creds))
		client.AssertNotCalled(t, "FetchProfile", mock.Anything)
	})

	t.Run("rolls back the credential when the profile fetch fails", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		client.On("ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(identity.TokenHandle{AccessToken: "tok"}, nil)
		client.On("FetchProfile", mock.Anything).Return(nil, errors.New("network down"))

		creds := credstore.NewMemoryStore()
		m := New(client, WithCredentialStore(creds))

		err := m.Login(context.Background(), "baker", "secret123")

		assert.Error(t, err)
		assert.Nil(t, m.Identity())
		assert.False(t, credstore.HasCredential(creds))
	})
}

func TestManager_Register(t *testing.T) {
	t.Parallel()

	reg := identity.Registration{
		Email:    "new@example.com",
		Username: "newbaker",
		Password: "longenough",
	}

	t.Run("chains into a full login after account creation", func(t *testing.T) {
		t.Parallel()

		ident := testIdentity(identity.RoleUser, nil)
		ident.Username = "newbaker"

		client := &MockClient{}
		client.On("CreateAccount", mock.Anything, reg).Return(ident, nil)
		client.On("ExchangeCredentials", mock.Anything, "newbaker", "longenough").
			Return(identity.TokenHandle{AccessToken: "tok"}, nil)
		client.On("FetchProfile", mock.Anything).Return(ident, nil)

		creds := credstore.NewMemoryStore()
		m := New(client, WithCredentialStore(creds))

		require.NoError(t, m.Register(context.Background(), reg))

		require.NotNil(t, m.Identity())
		assert.Equal(t, "newbaker", m.Identity().Username)
		assert.True(t, credstore.HasCredential(creds))
		client.AssertExpectations(t)
	})

	t.Run("propagates a rejection without attempting login", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		client.On("CreateAccount", mock.Anything, reg).
			Return(nil, &identity.RegistrationRejectedError{Reason: "username already exists"})

		m := New(client)
		err := m.Register(context.Background(), reg)

		assert.True(t, identity.IsRegistrationRejected(err))
		assert.Nil(t, m.Identity())
		client.AssertNotCalled(t, "ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("propagates a failed chained login", func(t *testing.T) {
		t.Parallel()

		ident := testIdentity(identity.RoleUser, nil)
		client := &MockClient{}
		client.On("CreateAccount", mock.Anything, reg).Return(ident, nil)
		client.On("ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(identity.TokenHandle{}, identity.ErrAuthenticationFailed)

		m := New(client)
		err := m.Register(context.Background(), reg)

		assert.ErrorIs(t, err, identity.ErrAuthenticationFailed)
		assert.Nil(t, m.Identity())
	})
}

func TestManager_Logout(t *testing.T) {
	t.Parallel()

	t.Run("drops the identity and empties the credential store", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		client.On("ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(identity.TokenHandle{AccessToken: "tok"}, nil)
		client.On("FetchProfile", mock.Anything).Return(testIdentity(identity.RoleAdmin, nil), nil)

		creds := credstore.NewMemoryStore()
		m := New(client, WithCredentialStore(creds))
		m.Start(context.Background())
		require.NoError(t, m.Login(context.Background(), "baker", "secret123"))

		m.Logout()

		assert.Nil(t, m.Identity())
		assert.False(t, m.IsAdmin())
		assert.False(t, credstore.HasCredential(creds))
		assert.Equal(t, PhaseReady, m.Phase())
	})

	t.Run("is a no-op on an already logged-out session", func(t *testing.T) {
		t.Parallel()

		m := New(&MockClient{})
		m.Logout()
		m.Logout()

		assert.Nil(t, m.Identity())
	})

	t.Run("leaves the active locale alone", func(t *testing.T) {
		t.Parallel()

		pref := locale.ES
		client := &MockClient{}
		client.On("ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(identity.TokenHandle{AccessToken: "tok"}, nil)
		client.On("FetchProfile", mock.Anything).Return(testIdentity(identity.RoleUser, &pref), nil)

		engine := locale.NewStaticEngine(locale.EN)
		m := New(client, WithLocaleEngine(engine))
		require.NoError(t, m.Login(context.Background(), "baker", "secret123"))
		require.Equal(t, locale.ES, engine.Current())

		m.Logout()
		assert.Equal(t, locale.ES, engine.Current())
	})

	t.Run("supersedes an in-flight login completion", func(t *testing.T) {
		t.Parallel()

		fetchStarted := make(chan struct{})
		release := make(chan struct{})

		client := &MockClient{}
		client.On("ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(identity.TokenHandle{AccessToken: "tok"}, nil)
		client.On("FetchProfile", mock.Anything).
			Run(func(mock.Arguments) {
				close(fetchStarted)
				<-release
			}).
			Return(testIdentity(identity.RoleAdmin, nil), nil)

		creds := credstore.NewMemoryStore()
		m := New(client, WithCredentialStore(creds))

		loginErr := make(chan error, 1)
		go func() {
			loginErr <- m.Login(context.Background(), "baker", "secret123")
		}()

		select {
		case <-fetchStarted:
		case <-time.After(time.Second):
			t.Fatal("login never reached the profile fetch")
		}

		m.Logout()
		close(release)

		select {
		case err := <-loginErr:
			assert.ErrorIs(t, err, ErrSuperseded)
		case <-time.After(time.Second):
			t.Fatal("login never completed")
		}

		assert.Nil(t, m.Identity())
		assert.False(t, m.IsAdmin())
		assert.False(t, credstore.HasCredential(creds))
	})
}

func TestManager_IsAdmin(t *testing.T) {
	t.Parallel()

	t.Run("false while initializing", func(t *testing.T) {
		t.Parallel()

		m := New(&MockClient{})
		assert.Equal(t, PhaseInitializing, m.Phase())
		assert.False(t, m.IsAdmin())
	})

	t.Run("false when ready and logged out", func(t *testing.T) {
		t.Parallel()

		m := New(&MockClient{})
		m.Start(context.Background())
		assert.False(t, m.IsAdmin())
	})

	t.Run("false for a regular user", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		client.On("ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(identity.TokenHandle{AccessToken: "tok"}, nil)
		client.On("FetchProfile", mock.Anything).Return(testIdentity(identity.RoleUser, nil), nil)

		m := New(client)
		require.NoError(t, m.Login(context.Background(), "baker", "secret123"))
		assert.False(t, m.IsAdmin())
	})
}

func TestManager_UpdateLocalePreference(t *testing.T) {
	t.Parallel()

	t.Run("silent no-op while logged out", func(t *testing.T) {
		t.Parallel()

		m := New(&MockClient{})
		m.Start(context.Background())

		assert.NotPanics(t, func() {
			m.UpdateLocalePreference(locale.ES)
		})
		assert.Nil(t, m.Identity())
	})

	t.Run("patches the in-memory preference only", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		client.On("ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(identity.TokenHandle{AccessToken: "tok"}, nil)
		client.On("FetchProfile", mock.Anything).Return(testIdentity(identity.RoleUser, nil), nil)

		engine := locale.NewStaticEngine(locale.EN)
		m := New(client, WithLocaleEngine(engine))
		require.NoError(t, m.Login(context.Background(), "baker", "secret123"))

		m.UpdateLocalePreference(locale.ES)

		require.NotNil(t, m.Identity().LocalePreference)
		assert.Equal(t, locale.ES, *m.Identity().LocalePreference)
		// The active locale is the caller's responsibility here.
		assert.Equal(t, locale.EN, engine.Current())
	})

	t.Run("snapshots do not leak the internal record", func(t *testing.T) {
		t.Parallel()

		client := &MockClient{}
		client.On("ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(identity.TokenHandle{AccessToken: "tok"}, nil)
		client.On("FetchProfile", mock.Anything).Return(testIdentity(identity.RoleUser, nil), nil)

		m := New(client)
		require.NoError(t, m.Login(context.Background(), "baker", "secret123"))

		snap := m.Identity()
		pref := locale.ES
		snap.LocalePreference = &pref
		snap.Role = identity.RoleAdmin

		assert.Nil(t, m.Identity().LocalePreference)
		assert.False(t, m.IsAdmin())
	})
}

func TestManager_SaveLocalePreference(t *testing.T) {
	t.Parallel()

	t.Run("requires an authenticated session", func(t *testing.T) {
		t.Parallel()

		m := New(&MockClient{})
		m.Start(context.Background())

		err := m.SaveLocalePreference(context.Background(), locale.ES)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("rejects an unsupported locale", func(t *testing.T) {
		t.Parallel()

		m := New(&MockClient{})
		err := m.SaveLocalePreference(context.Background(), locale.Locale("fr"))
		assert.ErrorIs(t, err, locale.ErrUnsupportedLocale)
	})

	t.Run("persists to backend, device and engine", func(t *testing.T) {
		t.Parallel()

		client := &MockSettingsClient{}
		client.On("ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(identity.TokenHandle{AccessToken: "tok"}, nil)
		client.On("FetchProfile", mock.Anything).Return(testIdentity(identity.RoleUser, nil), nil)
		client.On("UpdateLocalePreference", mock.Anything, locale.ES).Return(nil)

		engine := locale.NewStaticEngine(locale.EN)
		choices := locale.NewMemoryChoiceStore()
		m := New(client, WithLocaleEngine(engine), WithChoiceStore(choices))
		require.NoError(t, m.Login(context.Background(), "baker", "secret123"))

		require.NoError(t, m.SaveLocalePreference(context.Background(), locale.ES))

		assert.Equal(t, locale.ES, engine.Current())
		stored, ok := choices.Get()
		require.True(t, ok)
		assert.Equal(t, locale.ES, stored)
		require.NotNil(t, m.Identity().LocalePreference)
		assert.Equal(t, locale.ES, *m.Identity().LocalePreference)
		client.AssertExpectations(t)
	})

	t.Run("backend failure leaves local state untouched", func(t *testing.T) {
		t.Parallel()

		client := &MockSettingsClient{}
		client.On("ExchangeCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(identity.TokenHandle{AccessToken: "tok"}, nil)
		client.On("FetchProfile", mock.Anything).Return(testIdentity(identity.RoleUser, nil), nil)
		client.On("UpdateLocalePreference", mock.Anything, locale.ES).
			Return(identity.ErrUnauthorized)

		engine := locale.NewStaticEngine(locale.EN)
		m := New(client, WithLocaleEngine(engine))
		require.NoError(t, m.Login(context.Background(), "baker", "secret123"))

		err := m.SaveLocalePreference(context.Background(), locale.ES)

		assert.ErrorIs(t, err, identity.ErrUnauthorized)
		assert.Equal(t, locale.EN, engine.Current())
		assert.Nil(t, m.Identity().LocalePreference)
	})
}
