package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
)

type Status string

const (
	StatusEnCurso    Status = "EnCurso"
	StatusCompletada Status = "Completada"
	StatusCancelada  Status = "Cancelada"
)

// Terminal reports whether no further lifecycle transition may apply.
func (s Status) Terminal() bool {
	return s == StatusCompletada || s == StatusCancelada
}

// Session is the record of a professional attending one appointment. It is an
// append-only clinical record: rows are created by Start and transition at
// most once into a terminal status, never deleted.
type Session struct {
	ID               uuid.UUID
	AppointmentID    uuid.UUID // weak reference, the appointment row stays owned by the registry
	PatientID        uuid.UUID
	PatientName      string
	ProfessionalID   uuid.UUID
	ProfessionalName string
	Specialty        string
	Date             string // YYYY-MM-DD
	Time             string // HH:MM
	Modality         appointment.Modality
	DurationMinutes  int
	FeeCents         int64 // fixed at start from the fee schedule then in effect
	Status           Status
	Notes            string
	AttendedAt       time.Time
	CompletedAt      *time.Time
	CreatedBy        string
	Facility         string
}

// MinutesInProgress is derived on every read; nothing stores a ticking value.
func (s *Session) MinutesInProgress(now time.Time) int {
	if s.Status != StatusEnCurso {
		return s.DurationMinutes
	}
	return roundMinutes(now.Sub(s.AttendedAt))
}

func roundMinutes(d time.Duration) int {
	return int((d + 30*time.Second) / time.Minute)
}
