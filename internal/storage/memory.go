package storage

import (
	"context"
	"errors"
	"sync"

	"finanzas/internal/ledger"
)

var _ ledger.Storage = (*MemoryStore)(nil)

// ErrWritesDisabled is returned by a MemoryStore told to fail writes.
var ErrWritesDisabled = errors.New("memory store: writes disabled")

// MemoryStore is an in-process Storage, used for the memory backend and in
// tests that need to simulate a failing medium.
type MemoryStore struct {
	mu         sync.Mutex
	data       []byte
	failWrites bool
}

func NewMemoryStore(initial []byte) *MemoryStore {
	m := &MemoryStore{}
	if initial != nil {
		m.data = append([]byte(nil), initial...)
	}
	return m
}

// FailWrites makes subsequent Save and Erase calls fail (or succeed again).
func (m *MemoryStore) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

func (m *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStore) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return ErrWritesDisabled
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Erase(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return ErrWritesDisabled
	}
	m.data = nil
	return nil
}
