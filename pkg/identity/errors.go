package identity

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed indicates the backend rejected the supplied
	// username/password pair.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUnauthorized indicates the held credential was not accepted for an
	// authenticated call.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidProfile indicates the backend returned a profile that does
	// not fit the closed Identity record.
	ErrInvalidProfile = errors.New("invalid profile payload")
)

// RegistrationRejectedError indicates the backend refused to create an
// account, e.g. because the username or email is already taken.
type RegistrationRejectedError struct {
	Reason string
}

func (e *RegistrationRejectedError) Error() string {
	if e.Reason == "" {
		return "registration rejected"
	}
	return fmt.Sprintf("registration rejected: %s", e.Reason)
}

// IsRegistrationRejected reports whether err is a registration rejection.
func IsRegistrationRejected(err error) bool {
	var e *RegistrationRejectedError
	return errors.As(err, &e)
}
