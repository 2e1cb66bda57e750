package identity

import (
	"context"

	"github.com/pastryjoy/clientkit/pkg/locale"
)

// Client is the contract with the remote identity backend. Every call is
// attempted exactly once; failures propagate to the caller unwrapped of any
// retry semantics.
type Client interface {
	// ExchangeCredentials trades a username (or email) and password for a
	// bearer credential. Fails with ErrAuthenticationFailed on rejection.
	ExchangeCredentials(ctx context.Context, usernameOrEmail, password string) (TokenHandle, error)

	// FetchProfile returns the profile behind the currently held
	// credential. Fails with ErrUnauthorized when the credential is not
	// accepted.
	FetchProfile(ctx context.Context) (*Identity, error)

	// CreateAccount registers a new account. Fails with
	// *RegistrationRejectedError when the backend refuses.
	CreateAccount(ctx context.Context, reg Registration) (*Identity, error)
}

// SettingsClient is an optional interface for clients that can persist the
// authenticated user's settings on the backend.
type SettingsClient interface {
	// UpdateLocalePreference persists the preferred language for the
	// identity behind the held credential.
	UpdateLocalePreference(ctx context.Context, l locale.Locale) error
}
