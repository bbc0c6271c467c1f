package ops

import (
	"sync"

	"github.com/maaackz/folio/internal/storage"
)

// Store is the handle every operation runs against: a document backend
// plus the lock that serializes read-modify-write cycles on the structure
// index within this process.
type Store struct {
	backend storage.Backend

	structureMu sync.Mutex
}

// NewStore wraps b.
func NewStore(b storage.Backend) *Store {
	return &Store{backend: b}
}

// Backend returns the underlying backend.
func (s *Store) Backend() storage.Backend {
	return s.backend
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
