package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The partial unique index on consultation_sessions is what enforces the
// at-most-one-active-session-per-appointment invariant when several API
// instances share one database.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS professionals (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		specialty TEXT NOT NULL,
		presencial_fee_cents BIGINT,
		videollamada_fee_cents BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id UUID PRIMARY KEY,
		affiliate_id UUID NOT NULL,
		affiliate_name TEXT NOT NULL,
		professional_id UUID NOT NULL,
		professional_name TEXT NOT NULL,
		visit_date TEXT NOT NULL,
		visit_time TEXT NOT NULL,
		modality TEXT NOT NULL,
		specialty TEXT NOT NULL,
		status TEXT NOT NULL,
		facility TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments (visit_date, visit_time)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments (status)`,
	`CREATE TABLE IF NOT EXISTS consultation_sessions (
		id UUID PRIMARY KEY,
		appointment_id UUID NOT NULL,
		patient_id UUID NOT NULL,
		patient_name TEXT NOT NULL,
		professional_id UUID NOT NULL,
		professional_name TEXT NOT NULL,
		specialty TEXT NOT NULL,
		visit_date TEXT NOT NULL,
		visit_time TEXT NOT NULL,
		modality TEXT NOT NULL,
		duration_minutes INT NOT NULL DEFAULT 0,
		fee_cents BIGINT NOT NULL,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		attended_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		created_by TEXT NOT NULL DEFAULT '',
		facility TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active
		ON consultation_sessions (appointment_id)
		WHERE status = 'EnCurso'`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_professional ON consultation_sessions (professional_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_date ON consultation_sessions (visit_date)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		event_type TEXT NOT NULL,
		recipients TEXT[] NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		action_ref UUID,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_recipients ON notifications USING GIN (recipients)`,
}

// EnsureSchema creates all engine tables and indexes if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
