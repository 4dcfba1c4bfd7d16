package otp

import (
	"context"
	"sync"
	"time"

	"kycgate/pkg/platform/sentinel"
)

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

// InMemoryStore is an in-memory Store for development and tests.
type InMemoryStore struct {
	mu    sync.Mutex
	codes map[string]memoryEntry
	clock func() time.Time
}

// NewInMemoryStore creates an empty in-memory code store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		codes: make(map[string]memoryEntry),
		clock: time.Now,
	}
}

// WithClock overrides the time source. Used by tests to exercise expiry.
func (s *InMemoryStore) WithClock(clock func() time.Time) *InMemoryStore {
	s.clock = clock
	return s
}

func (s *InMemoryStore) SaveCode(_ context.Context, caseID, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[caseID] = memoryEntry{code: code, expiresAt: s.clock().Add(ttl)}
	return nil
}

func (s *InMemoryStore) ConsumeCode(_ context.Context, caseID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[caseID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	delete(s.codes, caseID)
	if s.clock().After(entry.expiresAt) {
		return "", sentinel.ErrNotFound
	}
	return entry.code, nil
}
