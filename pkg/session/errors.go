package session

import "errors"

var (
	// ErrNotAuthenticated indicates an operation that requires a present
	// identity was called while logged out.
	ErrNotAuthenticated = errors.New("session.not_authenticated")

	// ErrSuperseded indicates another session-mutating operation completed
	// while this one was in flight, so its result was discarded.
	ErrSuperseded = errors.New("session.superseded")
)
