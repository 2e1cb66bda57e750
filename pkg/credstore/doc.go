// Package credstore holds the single opaque bearer credential the
// PastryJoy client presents to the backend. Presence of a credential is the
// client's sole authentication signal; no expiry or structure is inspected.
//
// The package is storage-agnostic: anything satisfying Store can be plugged
// into the session manager. A concurrency-safe in-memory store ships out of
// the box and FileStore adds a durable, device-scoped one for CLI and
// desktop consumers.
//
// # Usage
//
//	store := credstore.NewFileStore(filepath.Join(stateDir, "token"))
//	if credstore.HasCredential(store) {
//	    // attempt a profile fetch
//	}
//
// Absence of a credential is a normal value, not an error: Read returns an
// empty string with a nil error, and an empty-string token is treated as
// absent everywhere.
package credstore
