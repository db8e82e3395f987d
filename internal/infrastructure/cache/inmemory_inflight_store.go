package cache

import (
	"context"
	"sync"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type inFlightClaim struct {
	token     string
	expiresAt time.Time
}

// InMemoryInFlightStore implements InFlightStore using an in-memory map.
// Suitable for a single process, which is the default deployment.
type InMemoryInFlightStore struct {
	mu        sync.Mutex
	entries   map[string]inFlightClaim
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryInFlightStore creates a new in-memory in-flight store.
// It starts a background goroutine that drops expired claims.
func NewInMemoryInFlightStore() *InMemoryInFlightStore {
	store := &InMemoryInFlightStore{
		entries:  make(map[string]inFlightClaim),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Acquire claims key for ttl. An expired claim is taken over.
func (s *InMemoryInFlightStore) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if claim, held := s.entries[key]; held && now.Before(claim.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	s.entries[key] = inFlightClaim{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release frees key if token still owns it
func (s *InMemoryInFlightStore) Release(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if claim, held := s.entries[key]; held && claim.token == token {
		delete(s.entries, key)
	}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryInFlightStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryInFlightStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryInFlightStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, claim := range s.entries {
		if !now.Before(claim.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of claims held (for testing/monitoring)
func (s *InMemoryInFlightStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ shared.InFlightStore = (*InMemoryInFlightStore)(nil)
