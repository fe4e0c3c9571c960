package session

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is a mutex-guarded in-memory Repository. The mutex makes
// the check-for-active plus insert in Create one atomic step, which is what
// the at-most-one-active invariant needs from a single-process store.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]Session)}
}

func (r *MemoryRepository) Create(ctx context.Context, s *Session) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.AppointmentID == s.AppointmentID && existing.Status == StatusEnCurso {
			return nil, ErrSessionAlreadyActive
		}
	}

	stored := *s
	r.items[stored.ID] = stored
	return &stored, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) Finish(ctx context.Context, id uuid.UUID, to Status, completedAt time.Time, durationMinutes int, notes string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Status.Terminal() {
		return nil, ErrSessionTerminal
	}

	s.Status = to
	s.CompletedAt = &completedAt
	s.DurationMinutes = durationMinutes
	s.Notes = notes
	r.items[id] = s
	return &s, nil
}

func (r *MemoryRepository) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]Session, error) {
	return r.list(func(s Session) bool { return s.ProfessionalID == professionalID })
}

func (r *MemoryRepository) ListByDate(ctx context.Context, date string) ([]Session, error) {
	return r.list(func(s Session) bool { return s.Date == date })
}

func (r *MemoryRepository) ListInProgress(ctx context.Context) ([]Session, error) {
	return r.list(func(s Session) bool { return s.Status == StatusEnCurso })
}

func (r *MemoryRepository) ListCompletedInMonth(ctx context.Context, month string) ([]Session, error) {
	return r.list(func(s Session) bool {
		return s.Status == StatusCompletada && strings.HasPrefix(s.Date, month+"-")
	})
}

func (r *MemoryRepository) list(keep func(Session) bool) ([]Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Session
	for _, s := range r.items {
		if keep(s) {
			result = append(result, s)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].AttendedAt.Before(result[j].AttendedAt)
	})

	return result, nil
}
