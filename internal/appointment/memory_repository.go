package appointment

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is a mutex-guarded in-memory Repository for tests and
// single-process deployments.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Appointment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]Appointment)}
}

func (r *MemoryRepository) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *appt
	r.items[stored.ID] = stored
	return &stored, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.Status = status
	r.items[id] = a
	return &a, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) ListByDate(ctx context.Context, date string) ([]Appointment, error) {
	return r.list(func(a Appointment) bool { return a.Date == date })
}

func (r *MemoryRepository) ListFromDate(ctx context.Context, date string) ([]Appointment, error) {
	return r.list(func(a Appointment) bool { return a.Date >= date })
}

func (r *MemoryRepository) ListByStatus(ctx context.Context, status Status) ([]Appointment, error) {
	return r.list(func(a Appointment) bool { return a.Status == status })
}

func (r *MemoryRepository) list(keep func(Appointment) bool) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Appointment
	for _, a := range r.items {
		if keep(a) {
			result = append(result, a)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].Time < result[j].Time
	})

	return result, nil
}
