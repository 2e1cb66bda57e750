package credstore

// Store persists the client-held bearer credential. At most one credential
// exists at a time; Save overwrites it.
type Store interface {
	// Save persists the token, replacing any previous one.
	Save(token string) error

	// Read returns the stored token, or an empty string when none is
	// stored. Absence is a normal value, not an error.
	Read() (string, error)

	// Clear removes the stored token. Clearing an empty store is a no-op.
	Clear() error
}

// HasCredential reports whether s holds a non-empty credential. Read
// failures and empty-string tokens both count as absent.
func HasCredential(s Store) bool {
	token, err := s.Read()
	return err == nil && token != ""
}
