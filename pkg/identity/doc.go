// Package identity is the PastryJoy client's contract with the remote
// identity backend: exchanging credentials for a bearer token, registering
// accounts and fetching the profile behind the currently held credential.
//
// The remote service returns loosely shaped JSON; this package validates it
// at the boundary into the closed Identity record (fixed role enum,
// supported-locale preference) so the rest of the client never handles an
// untyped blob.
//
// HTTPClient is the production implementation. It performs every call
// exactly once — retry and backoff, if wanted, belong to the caller.
//
// # Error Handling
//
// Failures map onto a small taxonomy the session layer branches on:
//
//   - ErrAuthenticationFailed    – rejected username/password
//   - ErrUnauthorized            – the held credential was not accepted
//   - RegistrationRejectedError  – account creation refused, with reason
//
// Anything else is a wrapped transport or decoding error.
package identity
