package locale

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ChoiceStore persists the locale the user last picked on this device. The
// stored choice only matters while logged out: an authenticated identity's
// preference outranks it in Resolve.
type ChoiceStore interface {
	// Get returns the stored choice. The second return value is false when
	// no valid choice is stored; corrupt or unreadable state is treated the
	// same as absence.
	Get() (Locale, bool)

	// Set persists the choice, overwriting any previous value.
	Set(l Locale) error
}

// ErrUnsupportedLocale is returned when a caller tries to persist a locale
// outside the supported set.
var ErrUnsupportedLocale = errors.New("locale: unsupported locale")

// MemoryChoiceStore is a concurrency-safe in-memory ChoiceStore.
type MemoryChoiceStore struct {
	mu     sync.RWMutex
	choice Locale
	set    bool
}

// NewMemoryChoiceStore creates an empty in-memory choice store.
func NewMemoryChoiceStore() *MemoryChoiceStore {
	return &MemoryChoiceStore{}
}

func (s *MemoryChoiceStore) Get() (Locale, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set || !s.choice.Valid() {
		return "", false
	}
	return s.choice, true
}

func (s *MemoryChoiceStore) Set(l Locale) error {
	if !l.Valid() {
		return ErrUnsupportedLocale
	}
	s.mu.Lock()
	s.choice = l
	s.set = true
	s.mu.Unlock()
	return nil
}

// FileChoiceStore is a durable ChoiceStore keeping the choice in a single
// small file, the device-scoped equivalent of the browser's local storage.
type FileChoiceStore struct {
	mu   sync.Mutex
	path string
}

// NewFileChoiceStore creates a store backed by the file at path. Parent
// directories are created on first Set, not here.
func NewFileChoiceStore(path string) *FileChoiceStore {
	return &FileChoiceStore{path: path}
}

func (s *FileChoiceStore) Get() (Locale, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	l := Locale(strings.TrimSpace(string(data)))
	if !l.Valid() {
		return "", false
	}
	return l, true
}

func (s *FileChoiceStore) Set(l Locale) error {
	if !l.Valid() {
		return ErrUnsupportedLocale
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(l.String()+"\n"), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
