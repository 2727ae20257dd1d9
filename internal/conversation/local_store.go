package conversation

import (
	"context"
	"sync"
	"time"

	"consumo_wpp_backend/internal/consumption"
)

type localEntry struct {
	history   []consumption.Turn
	expiresAt time.Time
}

// LocalStore is an in-process Store for tests and local development.
// It honors the sliding TTL but emits no expiry notifications.
type LocalStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]localEntry
	now     func() time.Time
}

func NewLocalStore(ttl time.Duration) *LocalStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LocalStore{
		ttl:     ttl,
		entries: make(map[string]localEntry),
		now:     time.Now,
	}
}

func (s *LocalStore) Load(_ context.Context, phone string) ([]consumption.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[phone]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.entries, phone)
		return nil, nil
	}

	entry.expiresAt = s.now().Add(s.ttl)
	s.entries[phone] = entry
	return append([]consumption.Turn(nil), entry.history...), nil
}

func (s *LocalStore) Save(_ context.Context, phone string, history []consumption.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[phone] = localEntry{
		history:   append([]consumption.Turn(nil), history...),
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *LocalStore) Clear(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, phone)
	return nil
}
