// Package locale decides and tracks the active UI language for the
// PastryJoy client. The application ships with a fixed set of supported
// locales; everything in this package operates on that closed set.
//
// The central piece is Resolve, a pure function that picks the active
// locale from competing sources in strict priority order:
//
//  1. the authenticated identity's declared preference,
//  2. a previously chosen locale persisted on this device,
//  3. the user agent's locale, matched by primary subtag,
//  4. the hard default (English).
//
// An authenticated preference therefore always overrides whatever the
// device previously guessed or the user clicked while logged out.
//
// # Usage
//
//	pref := locale.ES
//	active := locale.Resolve(&pref, nil, locale.SystemTag())
//	// active == locale.ES
//
// ChoiceStore persists the device-scoped choice (source 2) and Engine
// abstracts the UI layer that renders in the active language. Both ship
// with in-memory implementations; FileChoiceStore adds a durable one.
package locale
