package notification

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory inbox for tests and
// single-process deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[uuid.UUID]Event)}
}

func (s *MemoryStore) Append(ctx context.Context, ev *Event) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *ev
	s.items[stored.ID] = stored
	return &stored, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.items[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	return &ev, nil
}

func (s *MemoryStore) ListByRole(ctx context.Context, role Role, unreadOnly bool) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Event
	for _, ev := range s.items {
		if unreadOnly && ev.Read {
			continue
		}
		for _, r := range ev.Recipients {
			if r == role {
				result = append(result, ev)
				break
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, id uuid.UUID) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.items[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	ev.Read = true
	s.items[id] = ev
	return &ev, nil
}
