package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const notificationColumns = `id, event_type, recipients, title, message, action_ref, read, metadata, created_at`

func scanEvent(row pgx.Row) (*Event, error) {
	var ev Event
	var recipients []string
	var metadata []byte

	err := row.Scan(
		&ev.ID,
		&ev.Type,
		&recipients,
		&ev.Title,
		&ev.Message,
		&ev.ActionRef,
		&ev.Read,
		&metadata,
		&ev.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	ev.Recipients = make([]Role, 0, len(recipients))
	for _, r := range recipients {
		ev.Recipients = append(ev.Recipients, Role(r))
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &ev.Metadata); err != nil {
			return nil, fmt.Errorf("decode notification metadata: %w", err)
		}
	}

	return &ev, nil
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	defer rows.Close()

	var result []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PgStore) Append(ctx context.Context, ev *Event) (*Event, error) {
	recipients := make([]string, 0, len(ev.Recipients))
	for _, r := range ev.Recipients {
		recipients = append(recipients, string(r))
	}

	metadata, err := json.Marshal(ev.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode notification metadata: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, event_type, recipients, title, message, action_ref, read, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+notificationColumns+`
	`, ev.ID, ev.Type, recipients, ev.Title, ev.Message, ev.ActionRef, ev.Read, metadata, ev.CreatedAt)

	return scanEvent(row)
}

func (s *PgStore) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE id = $1
	`, id)
	return scanEvent(row)
}

func (s *PgStore) ListByRole(ctx context.Context, role Role, unreadOnly bool) ([]Event, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE $1 = ANY(recipients)
	`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, string(role))
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (s *PgStore) MarkRead(ctx context.Context, id uuid.UUID) (*Event, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1
		RETURNING `+notificationColumns+`
	`, id)
	return scanEvent(row)
}
