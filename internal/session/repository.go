package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyActive means an EnCurso session already exists for
	// the appointment.
	ErrSessionAlreadyActive = errors.New("appointment already has a session in progress")
	// ErrSessionTerminal means the session already reached Completada or
	// Cancelada and the requested transition cannot apply.
	ErrSessionTerminal = errors.New("session is already in a terminal status")
)

// Repository persists sessions. Create must reject a second EnCurso session
// for the same appointment with ErrSessionAlreadyActive, atomically with the
// insert; Finish must be a compare-and-swap from EnCurso so a transition
// applies exactly once.
type Repository interface {
	Create(ctx context.Context, s *Session) (*Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// Finish moves an EnCurso session to a terminal status, setting
	// completion fields in the same conditional write. It returns
	// ErrSessionTerminal when the row exists but is no longer EnCurso and
	// ErrSessionNotFound when it does not exist.
	Finish(ctx context.Context, id uuid.UUID, to Status, completedAt time.Time, durationMinutes int, notes string) (*Session, error)

	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]Session, error)
	ListByDate(ctx context.Context, date string) ([]Session, error)
	ListInProgress(ctx context.Context) ([]Session, error)
	// ListCompletedInMonth returns Completada sessions whose date falls in
	// the given YYYY-MM calendar month.
	ListCompletedInMonth(ctx context.Context, month string) ([]Session, error)
}
