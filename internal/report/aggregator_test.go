package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
	"github.com/waiogamez/mirafloresplus-core/internal/directory"
	"github.com/waiogamez/mirafloresplus-core/internal/session"
)

func seedSession(t *testing.T, repo *session.MemoryRepository, professionalID uuid.UUID, name, date string, modality appointment.Modality, status session.Status, minutes int, feeCents int64) {
	t.Helper()

	attended := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	created, err := repo.Create(context.Background(), &session.Session{
		ID:               uuid.New(),
		AppointmentID:    uuid.New(),
		PatientID:        uuid.New(),
		ProfessionalID:   professionalID,
		ProfessionalName: name,
		Date:             date,
		Time:             "09:00",
		Modality:         modality,
		FeeCents:         feeCents,
		Status:           session.StatusEnCurso,
		AttendedAt:       attended,
	})
	require.NoError(t, err)

	if status == session.StatusEnCurso {
		return
	}
	_, err = repo.Finish(context.Background(), created.ID, status, attended.Add(time.Duration(minutes)*time.Minute), minutes, "")
	require.NoError(t, err)
}

func TestReportForAccruesCompletedSessions(t *testing.T) {
	repo := session.NewMemoryRepository()
	prof := uuid.New()

	seedSession(t, repo, prof, "Dr. Vargas", "2026-09-03", appointment.ModalityPresencial, session.StatusCompletada, 30, 15000)
	seedSession(t, repo, prof, "Dr. Vargas", "2026-09-10", appointment.ModalityPresencial, session.StatusCompletada, 45, 15000)
	seedSession(t, repo, prof, "Dr. Vargas", "2026-09-17", appointment.ModalityPresencial, session.StatusCompletada, 25, 15000)
	seedSession(t, repo, prof, "Dr. Vargas", "2026-09-20", appointment.ModalityTelemedicina, session.StatusCompletada, 20, 10000)
	seedSession(t, repo, prof, "Dr. Vargas", "2026-09-24", appointment.ModalityTelemedicina, session.StatusCompletada, 15, 10000)

	// Excluded: wrong month, still in progress, cancelled.
	seedSession(t, repo, prof, "Dr. Vargas", "2026-10-01", appointment.ModalityPresencial, session.StatusCompletada, 60, 15000)
	seedSession(t, repo, prof, "Dr. Vargas", "2026-09-28", appointment.ModalityPresencial, session.StatusEnCurso, 0, 15000)
	seedSession(t, repo, prof, "Dr. Vargas", "2026-09-29", appointment.ModalityPresencial, session.StatusCancelada, 0, 15000)

	agg := NewAggregator(repo, nil)

	rep, err := agg.ReportFor(context.Background(), prof, "2026-09")
	require.NoError(t, err)

	assert.Equal(t, "Dr. Vargas", rep.ProfessionalName)
	assert.Equal(t, 5, rep.TotalAppointments)
	assert.Equal(t, 3, rep.PresencialCount)
	assert.Equal(t, 2, rep.VideollamadaCount)
	assert.Equal(t, 135, rep.TotalMinutes)
	assert.InDelta(t, 2.25, rep.TotalHours, 1e-9)
	assert.Equal(t, int64(65000), rep.TotalFeeCents)
	assert.Len(t, rep.Sessions, 5)
}

func TestReportForZeroActivity(t *testing.T) {
	repo := session.NewMemoryRepository()
	dir := directory.NewMemoryDirectory()

	prof := uuid.New()
	dir.PutProfessional(directory.Professional{ID: prof, Name: "Dra. Mendoza"})

	agg := NewAggregator(repo, dir)

	rep, err := agg.ReportFor(context.Background(), prof, "2026-09")
	require.NoError(t, err)

	assert.Equal(t, "Dra. Mendoza", rep.ProfessionalName)
	assert.Zero(t, rep.TotalAppointments)
	assert.Zero(t, rep.TotalMinutes)
	assert.Zero(t, rep.TotalFeeCents)
	assert.Empty(t, rep.Sessions)
}

func TestReportsForAllOmitsIdleProfessionals(t *testing.T) {
	repo := session.NewMemoryRepository()

	ana := uuid.New()
	bruno := uuid.New()
	seedSession(t, repo, ana, "Ana Ríos", "2026-09-05", appointment.ModalityTelemedicina, session.StatusCompletada, 20, 10000)
	seedSession(t, repo, bruno, "Bruno Soto", "2026-09-06", appointment.ModalityPresencial, session.StatusCompletada, 40, 15000)
	seedSession(t, repo, uuid.New(), "Carla Ponce", "2026-09-07", appointment.ModalityPresencial, session.StatusCancelada, 0, 15000)

	agg := NewAggregator(repo, nil)

	reports, err := agg.ReportsForAll(context.Background(), "2026-09")
	require.NoError(t, err)

	require.Len(t, reports, 2)
	assert.Equal(t, "Ana Ríos", reports[0].ProfessionalName)
	assert.Equal(t, "Bruno Soto", reports[1].ProfessionalName)
	assert.Equal(t, int64(10000), reports[0].TotalFeeCents)
	assert.Equal(t, int64(15000), reports[1].TotalFeeCents)
}

func TestInvalidMonth(t *testing.T) {
	agg := NewAggregator(session.NewMemoryRepository(), nil)

	for _, month := range []string{"", "2026", "2026-13", "septiembre", "2026-09-01"} {
		_, err := agg.ReportFor(context.Background(), uuid.New(), month)
		assert.ErrorIs(t, err, ErrInvalidMonth, "month %q", month)

		_, err = agg.ReportsForAll(context.Background(), month)
		assert.ErrorIs(t, err, ErrInvalidMonth, "month %q", month)
	}
}
