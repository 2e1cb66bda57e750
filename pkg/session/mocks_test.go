package session

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pastryjoy/clientkit/pkg/identity"
	"github.com/pastryjoy/clientkit/pkg/locale"
)

// MockClient is a mock implementation of identity.Client.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) ExchangeCredentials(ctx context.Context, usernameOrEmail, password string) (identity.TokenHandle, error) {
	args := m.Called(ctx, usernameOrEmail, password)
	return args.Get(0).(identity.TokenHandle), args.Error(1)
}

func (m *MockClient) FetchProfile(ctx context.Context) (*identity.Identity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockClient) CreateAccount(ctx context.Context, reg identity.Registration) (*identity.Identity, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

// MockSettingsClient additionally implements identity.SettingsClient.
type MockSettingsClient struct {
	MockClient
}

func (m *MockSettingsClient) UpdateLocalePreference(ctx context.Context, l locale.Locale) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}
