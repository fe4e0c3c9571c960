package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrPatientNotFound      = errors.New("patient not found")
)

// FeeRate is a professional's custom per-modality rate in cents. A nil field
// means the system default applies for that modality.
type FeeRate struct {
	PresencialCents   *int64
	VideollamadaCents *int64
}

type Professional struct {
	ID        uuid.UUID
	Name      string
	Specialty string
	FeeRate   FeeRate
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Directory is the professional/patient lookup consumed by the engine. It is
// owned by the staff and membership modules; the engine only reads from it.
type Directory interface {
	GetProfessional(ctx context.Context, id uuid.UUID) (*Professional, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error)
}
