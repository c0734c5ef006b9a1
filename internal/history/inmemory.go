package history

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps the QA log in process memory. This is the default
// backend; the log is lost on restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, question, answer, askedBy string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := Entry{
		ID:       len(s.entries) + 1,
		Question: question,
		Answer:   answer,
		AskedBy:  askedBy,
		AskedAt:  time.Now().UTC(),
	}
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *InMemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}
