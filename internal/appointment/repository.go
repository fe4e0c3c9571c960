package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains the appointment persistence operations needed by the
// registry service.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// UpdateStatus overwrites the status unconditionally. Transition
	// discipline for confirmation workflows lives above this layer.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListByDate(ctx context.Context, date string) ([]Appointment, error)
	// ListFromDate returns appointments with date >= the given day,
	// sorted by date then time.
	ListFromDate(ctx context.Context, date string) ([]Appointment, error)
	ListByStatus(ctx context.Context, status Status) ([]Appointment, error)
}
