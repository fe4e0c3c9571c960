package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
	"github.com/waiogamez/mirafloresplus-core/internal/session"
)

func TestRecipientsFixedByEventType(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      []Role
	}{
		{EventAppointmentCreated, []Role{RoleAdmin, RoleFrontDesk}},
		{EventSessionStartedPresencial, []Role{RoleAdmin, RoleFrontDesk}},
		{EventSessionStartedTelemedicina, []Role{RoleAdmin, RoleFrontDesk}},
		{EventSessionCompletedPresencial, []Role{RoleAdmin, RoleFrontDesk, RoleFinance}},
		{EventSessionCompletedTelemedicina, []Role{RoleAdmin, RoleFrontDesk, RoleFinance}},
		{EventSessionCancelled, []Role{RoleAdmin, RoleFrontDesk, RoleFinance}},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			got, err := Recipients(tt.eventType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Recipients(EventType("cita_perdida"))
	assert.ErrorIs(t, err, ErrUnknownEventType)
}

func TestPublishSessionStartedSelectsTypeByModality(t *testing.T) {
	store := NewMemoryStore()
	d := NewDispatcher(store, nil, nil)

	presencial, err := d.PublishSessionStarted(context.Background(), SessionStartedPayload{
		SessionID:        uuid.New(),
		PatientName:      "Luis Rivas",
		ProfessionalName: "Dra. Campos",
		Modality:         string(appointment.ModalityPresencial),
		Facility:         "Sede Surco",
	})
	require.NoError(t, err)
	assert.Equal(t, EventSessionStartedPresencial, presencial.Type)
	assert.Equal(t, "Consulta presencial iniciada", presencial.Title)
	assert.Contains(t, presencial.Message, "Sede Surco")

	video, err := d.PublishSessionStarted(context.Background(), SessionStartedPayload{
		SessionID:        uuid.New(),
		PatientName:      "Luis Rivas",
		ProfessionalName: "Dra. Campos",
		Modality:         string(appointment.ModalityTelemedicina),
	})
	require.NoError(t, err)
	assert.Equal(t, EventSessionStartedTelemedicina, video.Type)
	assert.Equal(t, "Videoconsulta iniciada", video.Title)
	assert.NotContains(t, video.Message, "Sede")
}

func TestPublishSessionCompletedMessageAndMetadata(t *testing.T) {
	store := NewMemoryStore()
	d := NewDispatcher(store, nil, nil)

	sessionID := uuid.New()
	ev, err := d.PublishSessionCompleted(context.Background(), SessionCompletedPayload{
		SessionID:        sessionID,
		PatientName:      "Elena Vega",
		ProfessionalName: "Dr. Ortiz",
		Modality:         string(appointment.ModalityPresencial),
		DurationMinutes:  37,
		FeeCents:         15050,
	})
	require.NoError(t, err)

	assert.Equal(t, EventSessionCompletedPresencial, ev.Type)
	assert.Contains(t, ev.Message, "37 minutos")
	assert.Contains(t, ev.Message, "S/ 150.50")
	require.NotNil(t, ev.ActionRef)
	assert.Equal(t, sessionID, *ev.ActionRef)

	var payload SessionCompletedPayload
	require.NoError(t, json.Unmarshal(ev.Metadata.Payload, &payload))
	assert.Equal(t, sessionID, payload.SessionID)
	assert.Equal(t, int64(15050), payload.FeeCents)
}

func TestNotifierAdapters(t *testing.T) {
	store := NewMemoryStore()
	d := NewDispatcher(store, nil, nil)
	base := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	d.now = func() time.Time {
		base = base.Add(time.Second)
		return base
	}

	appt := appointment.Appointment{
		ID:               uuid.New(),
		AffiliateName:    "Jorge Luna",
		ProfessionalName: "Dra. Campos",
		Date:             "2026-09-10",
		Time:             "10:00",
		Modality:         appointment.ModalityTelemedicina,
		Specialty:        "Medicina General",
		Status:           appointment.StatusProgramada,
	}
	require.NoError(t, d.AppointmentCreated(context.Background(), appt))

	sess := session.Session{
		ID:               uuid.New(),
		AppointmentID:    appt.ID,
		PatientName:      "Jorge Luna",
		ProfessionalName: "Dra. Campos",
		Modality:         appointment.ModalityTelemedicina,
		FeeCents:         10000,
		DurationMinutes:  20,
	}
	require.NoError(t, d.SessionStarted(context.Background(), sess))
	require.NoError(t, d.SessionCompleted(context.Background(), sess))
	require.NoError(t, d.SessionCancelled(context.Background(), sess, "corte de red"))

	// Admin hears everything; newest first.
	admin, err := store.ListByRole(context.Background(), RoleAdmin, false)
	require.NoError(t, err)
	require.Len(t, admin, 4)
	assert.Equal(t, EventSessionCancelled, admin[0].Type)
	assert.Equal(t, EventSessionCompletedTelemedicina, admin[1].Type)
	assert.Equal(t, EventSessionStartedTelemedicina, admin[2].Type)
	assert.Equal(t, EventAppointmentCreated, admin[3].Type)

	// Finance hears only the billing-relevant signals.
	finance, err := store.ListByRole(context.Background(), RoleFinance, false)
	require.NoError(t, err)
	require.Len(t, finance, 2)
	assert.Equal(t, EventSessionCancelled, finance[0].Type)
	assert.Equal(t, EventSessionCompletedTelemedicina, finance[1].Type)
}

func TestMarkReadAndUnreadFilter(t *testing.T) {
	store := NewMemoryStore()
	d := NewDispatcher(store, nil, nil)

	ev, err := d.PublishSessionCancelled(context.Background(), SessionCancelledPayload{
		SessionID:        uuid.New(),
		PatientName:      "Elena Vega",
		ProfessionalName: "Dr. Ortiz",
		Reason:           "emergencia",
	})
	require.NoError(t, err)

	unread, err := store.ListByRole(context.Background(), RoleFinance, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	marked, err := store.MarkRead(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.True(t, marked.Read)

	unread, err = store.ListByRole(context.Background(), RoleFinance, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := store.ListByRole(context.Background(), RoleFinance, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = store.MarkRead(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"admin", "recepcion", "finanzas"} {
		role, err := ParseRole(raw)
		require.NoError(t, err)
		assert.Equal(t, Role(raw), role)
	}

	_, err := ParseRole("gerencia")
	assert.ErrorIs(t, err, ErrUnknownRole)
}
