package service

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// NotFound is returned by a Store that doesn't have the requested
// document.
var NotFound = errors.New("not found")

// Store is a persistence interface for named clause-set documents.
//
// Documents are stored as given (YAML or JSON).
type Store interface {
	Put(ctx context.Context, name string, src []byte) error

	// Get returns NotFound if there's no document with that name.
	Get(ctx context.Context, name string) ([]byte, error)

	Delete(ctx context.Context, name string) error

	// List returns the names of all documents in sorted order.
	List(ctx context.Context) ([]string, error)
}

// MemStore is a Store that doesn't persist anything.
type MemStore struct {
	sync.RWMutex
	docs map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{
		docs: make(map[string][]byte, 32),
	}
}

func (s *MemStore) Put(ctx context.Context, name string, src []byte) error {
	acc := make([]byte, len(src))
	copy(acc, src)
	s.Lock()
	s.docs[name] = acc
	s.Unlock()
	return nil
}

func (s *MemStore) Get(ctx context.Context, name string) ([]byte, error) {
	s.RLock()
	src, have := s.docs[name]
	s.RUnlock()
	if !have {
		return nil, NotFound
	}
	return src, nil
}

func (s *MemStore) Delete(ctx context.Context, name string) error {
	s.Lock()
	delete(s.docs, name)
	s.Unlock()
	return nil
}

func (s *MemStore) List(ctx context.Context) ([]string, error) {
	s.RLock()
	acc := make([]string, 0, len(s.docs))
	for name := range s.docs {
		acc = append(acc, name)
	}
	s.RUnlock()
	sort.Strings(acc)
	return acc, nil
}
