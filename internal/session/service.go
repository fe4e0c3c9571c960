package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
	"github.com/waiogamez/mirafloresplus-core/internal/metrics"
	redisclient "github.com/waiogamez/mirafloresplus-core/internal/redis"
)

var (
	// ErrSessionBeingStarted means another caller holds the appointment
	// lock right now. Callers should retry.
	ErrSessionBeingStarted  = errors.New("a session for this appointment is being started, please retry")
	ErrCancelReasonRequired = errors.New("cancellation reason is required")
)

// AppointmentSource reads the appointment being attended.
type AppointmentSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
}

// FeeResolver prices one visit at start time.
type FeeResolver interface {
	Resolve(ctx context.Context, professionalID uuid.UUID, modality appointment.Modality) (int64, error)
}

// Notifier receives lifecycle signals. Within one session the started signal
// is always published before the terminal one, because both happen inside
// the synchronous transition. Publish failures are logged, never fatal.
type Notifier interface {
	SessionStarted(ctx context.Context, s Session) error
	SessionCompleted(ctx context.Context, s Session) error
	SessionCancelled(ctx context.Context, s Session, reason string) error
}

// Service owns the consultation lifecycle: EnCurso on start, then exactly one
// of Completada or Cancelada.
type Service struct {
	repo         Repository
	appointments AppointmentSource
	feeSchedule  FeeResolver
	locker       redisclient.Locker
	notifier     Notifier
	logger       *zap.Logger
	engineStats  *metrics.EngineMetrics
	now          func() time.Time
}

func NewService(repo Repository, appointments AppointmentSource, feeSchedule FeeResolver, locker redisclient.Locker, notifier Notifier, logger *zap.Logger, engineStats *metrics.EngineMetrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = redisclient.NewLocalLocker()
	}
	return &Service{
		repo:         repo,
		appointments: appointments,
		feeSchedule:  feeSchedule,
		locker:       locker,
		notifier:     notifier,
		logger:       logger,
		engineStats:  engineStats,
		now:          time.Now,
	}
}

type StartInput struct {
	AppointmentID uuid.UUID
	CreatedBy     string
	Notes         string
}

// Start attends an appointment. It snapshots the fee from the schedule in
// effect right now and enforces at most one EnCurso session per appointment:
// under concurrent calls exactly one caller wins, the rest get
// ErrSessionAlreadyActive or ErrSessionBeingStarted.
func (s *Service) Start(ctx context.Context, in StartInput) (*Session, error) {
	appt, err := s.appointments.GetByID(ctx, in.AppointmentID)
	if err != nil {
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	fee, err := s.feeSchedule.Resolve(ctx, appt.ProfessionalID, appt.Modality)
	if err != nil {
		return nil, err
	}

	facility := ""
	if appt.Modality == appointment.ModalityPresencial {
		facility = appt.Facility
	}

	var created *Session

	err = s.locker.WithAppointmentLock(ctx, in.AppointmentID, func(lockCtx context.Context) error {
		sess := &Session{
			ID:               uuid.New(),
			AppointmentID:    appt.ID,
			PatientID:        appt.AffiliateID,
			PatientName:      appt.AffiliateName,
			ProfessionalID:   appt.ProfessionalID,
			ProfessionalName: appt.ProfessionalName,
			Specialty:        appt.Specialty,
			Date:             appt.Date,
			Time:             appt.Time,
			Modality:         appt.Modality,
			FeeCents:         fee,
			Status:           StatusEnCurso,
			Notes:            in.Notes,
			AttendedAt:       s.now(),
			CreatedBy:        in.CreatedBy,
			Facility:         facility,
		}

		stored, err := s.repo.Create(lockCtx, sess)
		if err != nil {
			return err
		}

		created = stored
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSessionBeingStarted
		}
		return nil, err
	}

	s.publishStarted(ctx, *created)
	s.engineStats.ObserveTransition("started")

	s.logger.Info("session started",
		zap.String("session_id", created.ID.String()),
		zap.String("appointment_id", created.AppointmentID.String()),
		zap.String("modality", string(created.Modality)),
		zap.Int64("fee_cents", created.FeeCents))

	return created, nil
}

// Complete closes an EnCurso session. Duration is the rounded wall-clock
// elapsed time since AttendedAt. A second Complete on the same session fails
// with ErrSessionTerminal; re-completion is not idempotent on purpose.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, notes string) (*Session, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status.Terminal() {
		return nil, ErrSessionTerminal
	}

	completedAt := s.now()
	duration := roundMinutes(completedAt.Sub(existing.AttendedAt))
	merged := mergeNotes(existing.Notes, notes)

	updated, err := s.repo.Finish(ctx, id, StatusCompletada, completedAt, duration, merged)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.SessionCompleted(ctx, *updated); err != nil {
			s.logger.Warn("session completed notification failed",
				zap.String("session_id", id.String()), zap.Error(err))
		}
	}
	s.engineStats.ObserveTransition("completed")

	s.logger.Info("session completed",
		zap.String("session_id", updated.ID.String()),
		zap.Int("duration_minutes", updated.DurationMinutes),
		zap.Int64("fee_cents", updated.FeeCents))

	return updated, nil
}

// Cancel aborts a non-terminal session. The reason is mandatory and becomes
// the session notes.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Session, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrCancelReasonRequired
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status.Terminal() {
		return nil, ErrSessionTerminal
	}

	updated, err := s.repo.Finish(ctx, id, StatusCancelada, s.now(), existing.DurationMinutes, reason)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.SessionCancelled(ctx, *updated, reason); err != nil {
			s.logger.Warn("session cancelled notification failed",
				zap.String("session_id", id.String()), zap.Error(err))
		}
	}
	s.engineStats.ObserveTransition("cancelled")

	s.logger.Info("session cancelled",
		zap.String("session_id", updated.ID.String()),
		zap.String("reason", reason))

	return updated, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]Session, error) {
	return s.repo.ListByProfessional(ctx, professionalID)
}

func (s *Service) ListByDate(ctx context.Context, date string) ([]Session, error) {
	if _, err := time.Parse(appointment.DateLayout, date); err != nil {
		return nil, appointment.ErrInvalidDate
	}
	return s.repo.ListByDate(ctx, date)
}

func (s *Service) ListToday(ctx context.Context) ([]Session, error) {
	return s.repo.ListByDate(ctx, s.now().Format(appointment.DateLayout))
}

func (s *Service) ListInProgress(ctx context.Context) ([]Session, error) {
	return s.repo.ListInProgress(ctx)
}

func (s *Service) publishStarted(ctx context.Context, sess Session) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SessionStarted(ctx, sess); err != nil {
		s.logger.Warn("session started notification failed",
			zap.String("session_id", sess.ID.String()), zap.Error(err))
	}
}

func mergeNotes(existing, added string) string {
	added = strings.TrimSpace(added)
	if added == "" {
		return existing
	}
	if existing == "" {
		return added
	}
	return existing + "\n" + added
}
