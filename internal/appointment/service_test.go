package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	created []Appointment
	err     error
}

func (n *recordingNotifier) AppointmentCreated(ctx context.Context, appt Appointment) error {
	if n.err != nil {
		return n.err
	}
	n.created = append(n.created, appt)
	return nil
}

func validCreateInput() CreateInput {
	return CreateInput{
		AffiliateID:      uuid.New(),
		AffiliateName:    "María Torres",
		ProfessionalID:   uuid.New(),
		ProfessionalName: "Dr. Huamán",
		Date:             "2026-09-10",
		Time:             "10:30",
		Modality:         ModalityTelemedicina,
		Specialty:        SpecialtyGeneralMedicine,
		Status:           StatusProgramada,
		CreatedBy:        "recepcion-1",
	}
}

func TestServiceCreate(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(NewMemoryRepository(), notifier, nil)

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, StatusProgramada, created.Status)

	require.Len(t, notifier.created, 1)
	assert.Equal(t, created.ID, notifier.created[0].ID)
}

func TestServiceCreateNotifierFailureDoesNotFailCreate(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("inbox down")}
	svc := NewService(NewMemoryRepository(), notifier, nil)

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	assert.NotNil(t, created)
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, nil)

	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		wantErr error
	}{
		{"missing affiliate", func(in *CreateInput) { in.AffiliateID = uuid.Nil }, ErrMissingAffiliate},
		{"missing professional", func(in *CreateInput) { in.ProfessionalID = uuid.Nil }, ErrMissingProfessional},
		{"bad date", func(in *CreateInput) { in.Date = "10/09/2026" }, ErrInvalidDate},
		{"bad time", func(in *CreateInput) { in.Time = "10.30am" }, ErrInvalidTime},
		{"bad modality", func(in *CreateInput) { in.Modality = "Carta" }, ErrUnknownModality},
		{"bad status", func(in *CreateInput) { in.Status = "Perdida" }, ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestServiceUpdateStatus(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, nil)

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), created.ID, StatusConfirmada)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmada, updated.Status)

	// The registry applies no transition table: any known status is an
	// unconditional overwrite.
	updated, err = svc.UpdateStatus(context.Background(), created.ID, StatusProgramada)
	require.NoError(t, err)
	assert.Equal(t, StatusProgramada, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), uuid.New(), StatusConfirmada)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestServiceDelete(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, nil)

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrAppointmentNotFound)
}

func TestServiceQueries(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC) }

	mk := func(date, slot string, status Status) *Appointment {
		in := validCreateInput()
		in.Date = date
		in.Time = slot
		in.Status = status
		created, err := svc.Create(context.Background(), in)
		require.NoError(t, err)
		return created
	}

	past := mk("2026-09-01", "09:00", StatusConfirmada)
	today := mk("2026-09-10", "11:00", StatusProgramada)
	todayEarlier := mk("2026-09-10", "09:00", StatusPendienteConfirmacion)
	future := mk("2026-09-20", "10:00", StatusPendienteConfirmacion)

	forDate, err := svc.ListForDate(context.Background(), "2026-09-10")
	require.NoError(t, err)
	require.Len(t, forDate, 2)
	assert.Equal(t, todayEarlier.ID, forDate[0].ID)
	assert.Equal(t, today.ID, forDate[1].ID)

	_, err = svc.ListForDate(context.Background(), "not-a-date")
	assert.ErrorIs(t, err, ErrInvalidDate)

	upcoming, err := svc.ListUpcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	assert.Equal(t, todayEarlier.ID, upcoming[0].ID)
	assert.Equal(t, today.ID, upcoming[1].ID)
	assert.Equal(t, future.ID, upcoming[2].ID)

	pending, err := svc.ListPendingConfirmation(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, a := range pending {
		assert.Equal(t, StatusPendienteConfirmacion, a.Status)
	}

	_ = past
}
