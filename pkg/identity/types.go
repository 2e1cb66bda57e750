package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/pastryjoy/clientkit/pkg/locale"
)

// Role is the authorization level of an identity. The set is closed; the
// backend enforces it and the client never elevates a role.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), true
	default:
		return "", false
	}
}

// Identity is the resolved profile of the authenticated principal.
type Identity struct {
	ID               uuid.UUID
	Email            string
	Username         string
	Role             Role
	DisplayName      *string
	LocalePreference *locale.Locale
	IsActive         bool
	CreatedAt        time.Time
}

// IsAdmin reports whether the identity carries the admin role. Safe on a
// nil receiver so callers can query an absent identity directly.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Clone returns a deep copy so callers can hand out snapshots without
// sharing the optional-field pointers.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	cp := *i
	if i.DisplayName != nil {
		name := *i.DisplayName
		cp.DisplayName = &name
	}
	if i.LocalePreference != nil {
		pref := *i.LocalePreference
		cp.LocalePreference = &pref
	}
	return &cp
}

// TokenHandle is the credential issued by a successful login exchange. The
// token is opaque to the client.
type TokenHandle struct {
	AccessToken string
	TokenType   string
}

// Registration carries the fields for creating an account. Field limits
// mirror the backend's own validation so obviously bad input never leaves
// the client.
type Registration struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"full_name,omitempty" validate:"omitempty,max=255"`
}
