package configstore

import (
	"context"
	"sync"

	"github.com/goliatone/go-settingsform/pkg/document"
)

// MemoryStore holds the document in process memory. Get and Put copy, so
// callers never share maps with the store.
type MemoryStore struct {
	mu  sync.RWMutex
	doc document.Document
}

// NewMemoryStore seeds the store with a copy of initial.
func NewMemoryStore(initial document.Document) *MemoryStore {
	if initial == nil {
		initial = document.Document{}
	}
	return &MemoryStore{doc: document.Clone(initial)}
}

func (s *MemoryStore) Get(ctx context.Context) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return document.Clone(s.doc), nil
}

func (s *MemoryStore) Put(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc == nil {
		doc = document.Document{}
	}
	s.doc = document.Clone(doc)
	return nil
}
