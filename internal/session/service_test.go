package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
	"github.com/waiogamez/mirafloresplus-core/internal/directory"
	"github.com/waiogamez/mirafloresplus-core/internal/fees"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, name)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) SessionStarted(ctx context.Context, s Session) error {
	l.record("started")
	return nil
}

func (l *eventLog) SessionCompleted(ctx context.Context, s Session) error {
	l.record("completed")
	return nil
}

func (l *eventLog) SessionCancelled(ctx context.Context, s Session, reason string) error {
	l.record("cancelled")
	return nil
}

type fixture struct {
	svc          *Service
	appointments *appointment.MemoryRepository
	dir          *directory.MemoryDirectory
	events       *eventLog
	professional uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := directory.NewMemoryDirectory()
	professional := uuid.New()
	dir.PutProfessional(directory.Professional{ID: professional, Name: "Dra. Castañeda", Specialty: "Medicina General"})

	appointments := appointment.NewMemoryRepository()
	events := &eventLog{}
	schedule := fees.NewSchedule(dir, fees.Defaults{PresencialCents: 15000, VideollamadaCents: 10000})

	svc := NewService(NewMemoryRepository(), appointments, schedule, nil, events, nil, nil)

	return &fixture{
		svc:          svc,
		appointments: appointments,
		dir:          dir,
		events:       events,
		professional: professional,
	}
}

func (f *fixture) addAppointment(t *testing.T, modality appointment.Modality) *appointment.Appointment {
	t.Helper()

	appt := &appointment.Appointment{
		ID:               uuid.New(),
		AffiliateID:      uuid.New(),
		AffiliateName:    "Rosa Delgado",
		ProfessionalID:   f.professional,
		ProfessionalName: "Dra. Castañeda",
		Date:             "2026-09-10",
		Time:             "10:00",
		Modality:         modality,
		Specialty:        "Medicina General",
		Status:           appointment.StatusConfirmada,
		Facility:         "Sede Miraflores",
		CreatedAt:        time.Now(),
	}
	created, err := f.appointments.Create(context.Background(), appt)
	require.NoError(t, err)
	return created
}

func TestStartSnapshotsFeeAndAppointmentData(t *testing.T) {
	f := newFixture(t)
	appt := f.addAppointment(t, appointment.ModalityPresencial)

	started, err := f.svc.Start(context.Background(), StartInput{AppointmentID: appt.ID, CreatedBy: "recepcion-1"})
	require.NoError(t, err)

	assert.Equal(t, StatusEnCurso, started.Status)
	assert.Equal(t, int64(15000), started.FeeCents)
	assert.Equal(t, appt.AffiliateID, started.PatientID)
	assert.Equal(t, "Sede Miraflores", started.Facility)
	assert.Nil(t, started.CompletedAt)
	assert.Equal(t, []string{"started"}, f.events.snapshot())
}

func TestStartTelemedicinaHasNoFacility(t *testing.T) {
	f := newFixture(t)
	appt := f.addAppointment(t, appointment.ModalityTelemedicina)

	started, err := f.svc.Start(context.Background(), StartInput{AppointmentID: appt.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(10000), started.FeeCents)
	assert.Empty(t, started.Facility)
}

func TestStartUnknownAppointment(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Start(context.Background(), StartInput{AppointmentID: uuid.New()})
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
}

func TestStartUnknownProfessional(t *testing.T) {
	f := newFixture(t)
	appt := f.addAppointment(t, appointment.ModalityPresencial)
	appt.ProfessionalID = uuid.New()
	_, err := f.appointments.Create(context.Background(), appt)
	require.NoError(t, err)

	_, err = f.svc.Start(context.Background(), StartInput{AppointmentID: appt.ID})
	assert.ErrorIs(t, err, directory.ErrProfessionalNotFound)
}

func TestConcurrentStartHasOneWinner(t *testing.T) {
	f := newFixture(t)
	appt := f.addAppointment(t, appointment.ModalityPresencial)

	const callers = 16

	var wg sync.WaitGroup
	var mu sync.Mutex
	var winners, conflicts int

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Start(context.Background(), StartInput{AppointmentID: appt.ID})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case err == ErrSessionAlreadyActive || err == ErrSessionBeingStarted:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, callers-1, conflicts)

	active, err := f.svc.ListInProgress(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestStartAgainAfterCompletion(t *testing.T) {
	f := newFixture(t)
	appt := f.addAppointment(t, appointment.ModalityPresencial)

	first, err := f.svc.Start(context.Background(), StartInput{AppointmentID: appt.ID})
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), first.ID, "")
	require.NoError(t, err)

	// The constraint is on active sessions only; a follow-up visit for the
	// same appointment is allowed once the first is terminal.
	second, err := f.svc.Start(context.Background(), StartInput{AppointmentID: appt.ID})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestFeeImmutableAfterRateChange(t *testing.T) {
	f := newFixture(t)
	appt := f.addAppointment(t, appointment.ModalityPresencial)

	started, err := f.svc.Start(context.Background(), StartInput{AppointmentID: appt.ID})
	require.NoError(t, err)
	require.Equal(t, int64(15000), started.FeeCents)

	raised := int64(30000)
	f.dir.PutProfessional(directory.Professional{
		ID:      f.professional,
		Name:    "Dra. Castañeda",
		FeeRate: directory.FeeRate{PresencialCents: &raised},
	})

	completed, err := f.svc.Complete(context.Background(), started.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), completed.FeeCents)
}

func TestCompleteComputesRoundedDuration(t *testing.T) {
	f := newFixture(t)
	appt := f.addAppointment(t, appointment.ModalityPresencial)

	startAt := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return startAt }

	started, err := f.svc.Start(context.Background(), StartInput{AppointmentID: appt.ID, Notes: "control"})
	require.NoError(t, err)

	f.svc.now = func() time.Time { return startAt.Add(37*time.Minute + 10*time.Second) }

	completed, err := f.svc.Complete(context.Background(), started.ID, "sin novedad")
	require.NoError(t, err)

	assert.Equal(t, StatusCompletada, completed.Status)
	assert.Equal(t, 37, completed.DurationMinutes)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, startAt.Add(37*time.Minute+10*time.Second), *completed.CompletedAt)
	assert.Equal(t, "control\nsin novedad", completed.Notes)
	assert.Equal(t, []string{"started", "completed"}, f.events.snapshot())
}

func TestCompleteRoundsHalfMinuteUp(t *testing.T) {
	f := newFixture(t)
	appt := f.addAppointment(t, appointment.ModalityPresencial)

	startAt := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return startAt }

	started, err := f.svc.Start(context.Background(), StartInput{AppointmentID: appt.ID})
	require.NoError(t, err)

	f.svc.now = func() time.Time { return startAt.Add(12*time.Minute + 30*time.Second) }

	completed, err := f.svc.Complete(context.Background(), started.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 13, completed.DurationMinutes)
}

func TestCompleteTwiceConflictsWithoutMutation(t *testing.T) {
	f := newFixture(t)
	appt := f.addAppointment(t, appointment.ModalityPresencial)

	started, err := f.svc.Start(context.Background(), StartInput{AppointmentID: appt.ID})
	require.NoError(t, err)

	first, err := f.svc.Complete(context.Background(), started.ID, "primera")
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), started.ID, "segunda")
	assert.ErrorIs(t, err, ErrSessionTerminal)

	reread, err := f.svc.Get(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Notes, reread.Notes)
	assert.Equal(t, first.DurationMinutes, reread.DurationMinutes)
	assert.Equal(t, *first.CompletedAt, *reread.CompletedAt)
	assert.Equal(t, []string{"started", "completed"}, f.events.snapshot())
}

func TestCancelRequiresReason(t *testing.T) {
	f := newFixture(t)
	appt := f.addAppointment(t, appointment.ModalityPresencial)

	started, err := f.svc.Start(context.Background(), StartInput{AppointmentID: appt.ID})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), started.ID, "   ")
	assert.ErrorIs(t, err, ErrCancelReasonRequired)

	reread, err := f.svc.Get(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusEnCurso, reread.Status)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	appt := f.addAppointment(t, appointment.ModalityTelemedicina)

	started, err := f.svc.Start(context.Background(), StartInput{AppointmentID: appt.ID})
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), started.ID, "paciente no se presentó")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelada, cancelled.Status)
	assert.Equal(t, "paciente no se presentó", cancelled.Notes)
	assert.Equal(t, int64(10000), cancelled.FeeCents)
	assert.Equal(t, []string{"started", "cancelled"}, f.events.snapshot())

	_, err = f.svc.Complete(context.Background(), started.ID, "")
	assert.ErrorIs(t, err, ErrSessionTerminal)
}

func TestMinutesInProgress(t *testing.T) {
	attended := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	s := &Session{Status: StatusEnCurso, AttendedAt: attended}

	assert.Equal(t, 25, s.MinutesInProgress(attended.Add(25*time.Minute+20*time.Second)))

	s.Status = StatusCompletada
	s.DurationMinutes = 40
	assert.Equal(t, 40, s.MinutesInProgress(attended.Add(3*time.Hour)))
}

func TestListByDateValidatesFormat(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListByDate(context.Background(), "10-09-2026")
	assert.ErrorIs(t, err, appointment.ErrInvalidDate)
}

func TestMergeNotes(t *testing.T) {
	assert.Equal(t, "a", mergeNotes("a", ""))
	assert.Equal(t, "b", mergeNotes("", "b"))
	assert.Equal(t, "a\nb", mergeNotes("a", "b"))
	assert.Equal(t, "a", mergeNotes("a", "   "))
}
