package kyc

import (
	"context"
	"sync"
	"time"

	"kycgate/pkg/platform/sentinel"
)

// InMemoryStore keeps the initial implementation lightweight and testable.
// It intentionally favors clarity over performance.
type InMemoryStore struct {
	mu    sync.RWMutex
	cases map[string]*Case
	byRef map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		cases: make(map[string]*Case),
		byRef: make(map[string]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, c Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[c.CaseID]; ok {
		return sentinel.ErrConflict
	}
	if c.ClientRef != "" {
		if _, ok := s.byRef[c.ClientRef]; ok {
			return sentinel.ErrConflict
		}
		s.byRef[c.ClientRef] = c.CaseID
	}
	stored := c
	stored.Documents = append([]Document(nil), c.Documents...)
	s.cases[c.CaseID] = &stored
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, caseID string) (Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[caseID]
	if !ok {
		return Case{}, sentinel.ErrNotFound
	}
	return copyCase(c), nil
}

func (s *InMemoryStore) FindByClientRef(_ context.Context, clientRef string) (Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	caseID, ok := s.byRef[clientRef]
	if !ok {
		return Case{}, sentinel.ErrNotFound
	}
	return copyCase(s.cases[caseID]), nil
}

func (s *InMemoryStore) AppendDocuments(_ context.Context, caseID string, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Documents = append(c.Documents, docs...)
	return nil
}

func (s *InMemoryStore) SetSelfie(_ context.Context, caseID string, selfie Selfie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Selfie = &selfie
	return nil
}

func (s *InMemoryStore) SetConsent(_ context.Context, caseID string, consentGiven bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.ConsentGiven = consentGiven
	return nil
}

func (s *InMemoryStore) SetOTPVerified(_ context.Context, caseID string, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Verified.OTPVerified = verified
	return nil
}

func (s *InMemoryStore) SetFaceMatched(_ context.Context, caseID string, matched bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Verified.FaceMatched = matched
	return nil
}

func (s *InMemoryStore) ListStale(_ context.Context, cutoff time.Time) ([]Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stale []Case
	for _, c := range s.cases {
		if c.SubmittedAt.Before(cutoff) && len(c.Documents) == 0 && c.Selfie == nil && !c.ConsentGiven {
			stale = append(stale, copyCase(c))
		}
	}
	return stale, nil
}

// copyCase returns a snapshot so callers cannot mutate stored state through
// shared slices.
func copyCase(c *Case) Case {
	out := *c
	out.Documents = append([]Document(nil), c.Documents...)
	if c.Selfie != nil {
		selfie := *c.Selfie
		out.Selfie = &selfie
	}
	return out
}
