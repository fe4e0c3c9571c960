package directory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryDirectory is a mutex-guarded in-memory Directory for tests and
// single-process deployments.
type MemoryDirectory struct {
	mu            sync.RWMutex
	professionals map[uuid.UUID]Professional
	patients      map[uuid.UUID]Patient
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		professionals: make(map[uuid.UUID]Professional),
		patients:      make(map[uuid.UUID]Patient),
	}
}

func (d *MemoryDirectory) PutProfessional(p Professional) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	d.professionals[p.ID] = p
}

func (d *MemoryDirectory) PutPatient(p Patient) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	d.patients[p.ID] = p
}

func (d *MemoryDirectory) GetProfessional(ctx context.Context, id uuid.UUID) (*Professional, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.professionals[id]
	if !ok {
		return nil, ErrProfessionalNotFound
	}
	return &p, nil
}

func (d *MemoryDirectory) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}
