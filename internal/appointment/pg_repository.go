package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `id, affiliate_id, affiliate_name, professional_id, professional_name,
	visit_date, visit_time, modality, specialty, status, facility, notes, created_by, created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.AffiliateID,
		&a.AffiliateName,
		&a.ProfessionalID,
		&a.ProfessionalName,
		&a.Date,
		&a.Time,
		&a.Modality,
		&a.Specialty,
		&a.Status,
		&a.Facility,
		&a.Notes,
		&a.CreatedBy,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, affiliate_id, affiliate_name, professional_id, professional_name,
			visit_date, visit_time, modality, specialty, status, facility, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+appointmentColumns+`
	`, appt.ID, appt.AffiliateID, appt.AffiliateName, appt.ProfessionalID, appt.ProfessionalName,
		appt.Date, appt.Time, appt.Modality, appt.Specialty, appt.Status, appt.Facility,
		appt.Notes, appt.CreatedBy, appt.CreatedAt)

	return scanAppointment(row)
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, status)
	return scanAppointment(row)
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) ListByDate(ctx context.Context, date string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE visit_date = $1
		ORDER BY visit_time
	`, date)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (r *PgRepository) ListFromDate(ctx context.Context, date string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE visit_date >= $1
		ORDER BY visit_date, visit_time
	`, date)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (r *PgRepository) ListByStatus(ctx context.Context, status Status) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = $1
		ORDER BY visit_date, visit_time
	`, status)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}
