// Package session orchestrates the PastryJoy client's authentication
// lifecycle: it owns the in-memory identity record, the coarse
// Initializing/Ready phase, and the transitions triggered by startup,
// login, registration, logout and locale-preference updates. It is the
// single writer of session state; consumers read snapshots.
//
// # Architecture
//
// A Manager wires four collaborators: an identity.Client for the remote
// backend, a credstore.Store holding the opaque bearer credential, a
// locale.Engine rendering the active UI language and a locale.ChoiceStore
// with the device-scoped language choice. Every transition that can change
// the active language re-runs the locale resolution policy.
//
//	┌───────────┐  exchange / fetch  ┌──────────────────┐
//	│  Manager  │ ─────────────────► │  identity.Client │
//	└───────────┘                    └──────────────────┘
//	   │      │
//	   │      └── save / clear ────► credstore.Store
//	   └───────── activate ────────► locale.Engine
//
// # Lifecycle
//
// Start runs the startup sequence once: with no stored credential the
// session becomes Ready unauthenticated without touching the backend; with
// one, the profile is fetched and a failure is recovered silently — the
// credential is cleared and the session becomes Ready unauthenticated, so
// an expired token looks like a normal logged-out state rather than an
// error banner.
//
// Consumers must treat PhaseInitializing as "unknown, do not navigate yet"
// and branch on identity presence only once the phase is PhaseReady.
//
// # Concurrency
//
// Session-mutating operations are stamped with an operation epoch; a
// completion whose epoch has been superseded (say, a logout issued while a
// login's profile fetch was in flight) is discarded instead of clobbering
// newer state. All state access is mutex-guarded, so a late completion
// arriving after the interested caller is gone is safe.
package session
