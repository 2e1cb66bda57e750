package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pastryjoy/clientkit/pkg/credstore"
	"github.com/pastryjoy/clientkit/pkg/locale"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPClient talks to the PastryJoy identity backend over its JSON API.
// Authenticated calls read the bearer credential from the supplied store on
// every request, so the client always presents whatever credential is
// currently held.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	creds      credstore.Store
	validate   *validator.Validate
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client, e.g. to adjust the
// timeout or install a test transport.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.httpClient = c
		}
	}
}

// NewHTTPClient creates a client for the backend at baseURL. Authenticated
// endpoints read the bearer credential from creds.
func NewHTTPClient(baseURL string, creds credstore.Store, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		creds:      creds,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Wire types mirror the backend's DTOs.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userSettingsPayload struct {
	PreferredLanguage string `json:"preferred_language"`
}

type userResponse struct {
	ID        string              `json:"id"`
	Email     string              `json:"email"`
	Username  string              `json:"username"`
	Role      string              `json:"role"`
	IsActive  bool                `json:"is_active"`
	FullName  *string             `json:"full_name"`
	Settings  userSettingsPayload `json:"settings"`
	CreatedAt time.Time           `json:"created_at"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// ExchangeCredentials implements Client.
func (h *HTTPClient) ExchangeCredentials(ctx context.Context, usernameOrEmail, password string) (TokenHandle, error) {
	var out tokenResponse
	status, err := h.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		Username: usernameOrEmail,
		Password: password,
	}, false, &out)
	if err != nil {
		if status == http.StatusUnauthorized {
			return TokenHandle{}, fmt.Errorf("%w: %s", ErrAuthenticationFailed, errDetail(err))
		}
		return TokenHandle{}, fmt.Errorf("exchange credentials: %w", err)
	}
	if out.AccessToken == "" {
		return TokenHandle{}, fmt.Errorf("exchange credentials: empty token in response")
	}
	return TokenHandle{AccessToken: out.AccessToken, TokenType: out.TokenType}, nil
}

// FetchProfile implements Client.
func (h *HTTPClient) FetchProfile(ctx context.Context) (*Identity, error) {
	var out userResponse
	status, err := h.do(ctx, http.MethodGet, "/api/auth/me", nil, true, &out)
	if err != nil {
		if status == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errDetail(err))
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return toIdentity(out)
}

// CreateAccount implements Client. Registration fields are validated
// locally first so obviously bad input never reaches the wire; local and
// remote rejections surface through the same error type.
func (h *HTTPClient) CreateAccount(ctx context.Context, reg Registration) (*Identity, error) {
	if err := h.validate.Struct(reg); err != nil {
		return nil, &RegistrationRejectedError{Reason: err.Error()}
	}

	var out userResponse
	status, err := h.do(ctx, http.MethodPost, "/api/auth/register", reg, false, &out)
	if err != nil {
		if status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity {
			return nil, &RegistrationRejectedError{Reason: errDetail(err)}
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return toIdentity(out)
}

// UpdateLocalePreference implements SettingsClient.
func (h *HTTPClient) UpdateLocalePreference(ctx context.Context, l locale.Locale) error {
	var out userSettingsPayload
	status, err := h.do(ctx, http.MethodPatch, "/api/users/me/settings", userSettingsPayload{
		PreferredLanguage: l.String(),
	}, true, &out)
	if err != nil {
		if status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, errDetail(err))
		}
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// do performs one request/response cycle. It returns the HTTP status code
// alongside the error so callers can map statuses to the error taxonomy;
// status is zero when the request never produced a response.
func (h *HTTPClient) do(ctx context.Context, method, path string, body any, authed bool, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if authed {
		token, err := h.creds.Read()
		if err != nil {
			return 0, fmt.Errorf("read credential: %w", err)
		}
		if token == "" {
			return http.StatusUnauthorized, &apiError{status: http.StatusUnauthorized, detail: "no credential held"}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&apiErr)
		detail := apiErr.Detail
		if detail == "" {
			detail = resp.Status
		}
		return resp.StatusCode, &apiError{status: resp.StatusCode, detail: detail}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// apiError carries the backend's error detail for status mapping.
type apiError struct {
	status int
	detail string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.status, e.detail)
}

func errDetail(err error) string {
	if e, ok := err.(*apiError); ok {
		return e.detail
	}
	return err.Error()
}

// toIdentity validates the backend's loosely shaped user payload into the
// closed Identity record. An unknown role is a hard error; an unsupported
// locale preference is dropped rather than propagated.
func toIdentity(u userResponse) (*Identity, error) {
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad id %q", ErrInvalidProfile, u.ID)
	}
	role, ok := ParseRole(u.Role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidProfile, u.Role)
	}
	if u.Email == "" || u.Username == "" {
		return nil, fmt.Errorf("%w: missing email or username", ErrInvalidProfile)
	}

	ident := &Identity{
		ID:        id,
		Email:     u.Email,
		Username:  u.Username,
		Role:      role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.FullName != nil && *u.FullName != "" {
		name := *u.FullName
		ident.DisplayName = &name
	}
	if pref, ok := locale.Parse(u.Settings.PreferredLanguage); ok {
		ident.LocalePreference = &pref
	}
	return ident, nil
}
