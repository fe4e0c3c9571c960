package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgDirectory struct {
	pool *pgxpool.Pool
}

func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

func scanProfessional(row pgx.Row) (*Professional, error) {
	var p Professional
	var presencial, videollamada *int64

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Specialty,
		&presencial,
		&videollamada,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, err
	}

	p.FeeRate = FeeRate{PresencialCents: presencial, VideollamadaCents: videollamada}
	return &p, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	return &p, nil
}

func (d *PgDirectory) GetProfessional(ctx context.Context, id uuid.UUID) (*Professional, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, name, specialty, presencial_fee_cents, videollamada_fee_cents, created_at, updated_at
		FROM professionals
		WHERE id = $1
	`, id)
	return scanProfessional(row)
}

func (d *PgDirectory) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}
