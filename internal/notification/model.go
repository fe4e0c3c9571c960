package notification

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType is the closed set of lifecycle signals the engine emits. Message
// templates and recipient roles are keyed purely by this value.
type EventType string

const (
	EventAppointmentCreated           EventType = "cita_creada"
	EventSessionStartedPresencial     EventType = "consulta_iniciada_presencial"
	EventSessionStartedTelemedicina   EventType = "consulta_iniciada_telemedicina"
	EventSessionCompletedPresencial   EventType = "consulta_completada_presencial"
	EventSessionCompletedTelemedicina EventType = "consulta_completada_telemedicina"
	EventSessionCancelled             EventType = "consulta_cancelada"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleFrontDesk Role = "recepcion"
	RoleFinance   Role = "finanzas"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUnknownEventType     = errors.New("unknown notification event type")
	ErrUnknownRole          = errors.New("unknown recipient role")
)

func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleFrontDesk, RoleFinance:
		return Role(raw), nil
	default:
		return "", ErrUnknownRole
	}
}

// Metadata keeps the originating event type and its structured payload for
// audit and debugging.
type Metadata struct {
	EventType EventType       `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Event is one rendered notification in the shared inbox.
type Event struct {
	ID         uuid.UUID
	Type       EventType
	Recipients []Role
	Title      string
	Message    string
	ActionRef  *uuid.UUID // session or appointment the notification points at
	Read       bool
	Metadata   Metadata
	CreatedAt  time.Time
}

// Payload variants, one per event type.

type AppointmentCreatedPayload struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	AffiliateName    string    `json:"affiliate_name"`
	ProfessionalName string    `json:"professional_name"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Modality         string    `json:"modality"`
	Specialty        string    `json:"specialty"`
	Status           string    `json:"status"`
}

type SessionStartedPayload struct {
	SessionID        uuid.UUID `json:"session_id"`
	AppointmentID    uuid.UUID `json:"appointment_id"`
	PatientName      string    `json:"patient_name"`
	ProfessionalName string    `json:"professional_name"`
	Modality         string    `json:"modality"`
	Facility         string    `json:"facility,omitempty"`
	FeeCents         int64     `json:"fee_cents"`
}

type SessionCompletedPayload struct {
	SessionID        uuid.UUID `json:"session_id"`
	AppointmentID    uuid.UUID `json:"appointment_id"`
	PatientName      string    `json:"patient_name"`
	ProfessionalName string    `json:"professional_name"`
	Modality         string    `json:"modality"`
	DurationMinutes  int       `json:"duration_minutes"`
	FeeCents         int64     `json:"fee_cents"`
}

type SessionCancelledPayload struct {
	SessionID        uuid.UUID `json:"session_id"`
	AppointmentID    uuid.UUID `json:"appointment_id"`
	PatientName      string    `json:"patient_name"`
	ProfessionalName string    `json:"professional_name"`
	Modality         string    `json:"modality"`
	Reason           string    `json:"reason"`
}
