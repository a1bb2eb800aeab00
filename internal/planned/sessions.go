package planned

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Sessions hands out one loaded Service per user. It serves callers that act
// for many users, such as the HTTP API.
type Sessions struct {
	store Store
	opts  []Option

	mu       sync.Mutex
	sessions map[uuid.UUID]*Service
}

func NewSessions(store Store, opts ...Option) *Sessions {
	return &Sessions{
		store:    store,
		opts:     opts,
		sessions: make(map[uuid.UUID]*Service),
	}
}

// For returns the user's session, loading it on first use. A failed load is
// not cached. The store is read without holding the cache lock, so a slow load
// only delays its own user.
func (s *Sessions) For(ctx context.Context, userID uuid.UUID) (*Service, error) {
	s.mu.Lock()
	svc, ok := s.sessions[userID]
	s.mu.Unlock()

	if ok {
		return svc, nil
	}

	loaded := NewService(s.store, s.opts...)
	if err := loaded.Load(ctx, userID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if svc, ok := s.sessions[userID]; ok {
		return svc, nil
	}

	s.sessions[userID] = loaded

	return loaded, nil
}

// Forget drops the user's session so the next call to For reloads from the store.
func (s *Sessions) Forget(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
}
