package vault

import (
	"fmt"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory implementation of Store for testing.
// It starts uninitialized, like a FileStore with no file.
type MemoryStore struct {
	mu  sync.RWMutex
	doc *document
}

// NewMemoryStore creates a new, uninitialized in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Upsert(website, identity, secret string) error {
	if err := Validate(website, identity, secret); err != nil {
		return err
	}
	return s.Merge([]Entry{{Website: website, Record: Record{Identity: identity, Secret: secret}}})
}

func (s *MemoryStore) Merge(entries []Entry) error {
	if err := validateEntries(entries); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		s.doc = newDocument()
	}
	for _, e := range entries {
		s.doc.Set(e.Website, e.Record)
	}
	return nil
}

func (s *MemoryStore) Lookup(website string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return Record{}, ErrNotInitialized
	}
	rec, ok := s.doc.Get(website)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, website)
	}
	return rec, nil
}

func (s *MemoryStore) List() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, ErrNotInitialized
	}
	return documentEntries(s.doc), nil
}

func (s *MemoryStore) Delete(website string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNotInitialized
	}
	if _, ok := s.doc.Delete(website); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, website)
	}
	return nil
}
