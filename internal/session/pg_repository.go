package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const sessionColumns = `id, appointment_id, patient_id, patient_name, professional_id, professional_name,
	specialty, visit_date, visit_time, modality, duration_minutes, fee_cents, status, notes,
	attended_at, completed_at, created_by, facility`

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	var completedAt *time.Time

	err := row.Scan(
		&s.ID,
		&s.AppointmentID,
		&s.PatientID,
		&s.PatientName,
		&s.ProfessionalID,
		&s.ProfessionalName,
		&s.Specialty,
		&s.Date,
		&s.Time,
		&s.Modality,
		&s.DurationMinutes,
		&s.FeeCents,
		&s.Status,
		&s.Notes,
		&s.AttendedAt,
		&completedAt,
		&s.CreatedBy,
		&s.Facility,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	s.CompletedAt = completedAt
	return &s, nil
}

func scanSessions(rows pgx.Rows) ([]Session, error) {
	defer rows.Close()

	var result []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Create relies on the partial unique index on (appointment_id) WHERE status
// = 'EnCurso' to reject a concurrent second active session.
func (r *PgRepository) Create(ctx context.Context, s *Session) (*Session, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO consultation_sessions (id, appointment_id, patient_id, patient_name,
			professional_id, professional_name, specialty, visit_date, visit_time, modality,
			duration_minutes, fee_cents, status, notes, attended_at, completed_at, created_by, facility)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING `+sessionColumns+`
	`, s.ID, s.AppointmentID, s.PatientID, s.PatientName, s.ProfessionalID, s.ProfessionalName,
		s.Specialty, s.Date, s.Time, s.Modality, s.DurationMinutes, s.FeeCents, s.Status,
		s.Notes, s.AttendedAt, s.CompletedAt, s.CreatedBy, s.Facility)

	created, err := scanSession(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrSessionAlreadyActive
		}
		return nil, err
	}

	return created, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM consultation_sessions
		WHERE id = $1
	`, id)
	return scanSession(row)
}

func (r *PgRepository) Finish(ctx context.Context, id uuid.UUID, to Status, completedAt time.Time, durationMinutes int, notes string) (*Session, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE consultation_sessions
		SET status = $2,
		    completed_at = $3,
		    duration_minutes = $4,
		    notes = $5
		WHERE id = $1
		  AND status = 'EnCurso'
		RETURNING `+sessionColumns+`
	`, id, to, completedAt, durationMinutes, notes)

	updated, err := scanSession(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	// The conditional update matched nothing: distinguish a missing row
	// from a terminal one.
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if existing.Status.Terminal() {
		return nil, ErrSessionTerminal
	}
	return nil, err
}

func (r *PgRepository) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM consultation_sessions
		WHERE professional_id = $1
		ORDER BY attended_at DESC
	`, professionalID)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

func (r *PgRepository) ListByDate(ctx context.Context, date string) ([]Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM consultation_sessions
		WHERE visit_date = $1
		ORDER BY attended_at DESC
	`, date)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

func (r *PgRepository) ListInProgress(ctx context.Context) ([]Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM consultation_sessions
		WHERE status = 'EnCurso'
		ORDER BY attended_at
	`)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

func (r *PgRepository) ListCompletedInMonth(ctx context.Context, month string) ([]Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM consultation_sessions
		WHERE status = 'Completada'
		  AND visit_date LIKE $1 || '-%'
		ORDER BY visit_date, visit_time
	`, month)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}
