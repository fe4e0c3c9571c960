package appointment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Modality is how a visit is delivered. "Videollamada" is accepted as an
// input alias for Telemedicina; records always store the canonical value.
type Modality string

const (
	ModalityPresencial   Modality = "Presencial"
	ModalityTelemedicina Modality = "Telemedicina"
)

var ErrUnknownModality = errors.New("unknown modality")

func ParseModality(raw string) (Modality, error) {
	switch raw {
	case string(ModalityPresencial):
		return ModalityPresencial, nil
	case string(ModalityTelemedicina), "Videollamada":
		return ModalityTelemedicina, nil
	default:
		return "", ErrUnknownModality
	}
}

type Status string

const (
	StatusProgramada            Status = "Programada"
	StatusConfirmada            Status = "Confirmada"
	StatusPendienteConfirmacion Status = "PendienteConfirmacion"
	StatusCancelada             Status = "Cancelada"
)

var ErrUnknownStatus = errors.New("unknown appointment status")

func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusProgramada, StatusConfirmada, StatusPendienteConfirmacion, StatusCancelada:
		return Status(raw), nil
	default:
		return "", ErrUnknownStatus
	}
}

// SpecialtyGeneralMedicine is the specialty the intake classifier treats as
// general medicine. Every other specialty counts as specialist care.
const SpecialtyGeneralMedicine = "Medicina General"

// Dates are calendar days and times are slot labels; both are kept as
// strings so that month and day membership reduce to prefix and equality
// checks, with no timezone drift between writer and reader.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Appointment struct {
	ID               uuid.UUID
	AffiliateID      uuid.UUID
	AffiliateName    string
	ProfessionalID   uuid.UUID
	ProfessionalName string
	Date             string // YYYY-MM-DD
	Time             string // HH:MM
	Modality         Modality
	Specialty        string
	Status           Status
	Facility         string
	Notes            string
	CreatedBy        string
	CreatedAt        time.Time
}
