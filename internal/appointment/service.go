package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrMissingAffiliate    = errors.New("affiliate is required")
	ErrMissingProfessional = errors.New("professional is required")
	ErrInvalidDate         = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTime         = errors.New("time must be HH:MM")
)

// Notifier receives registry lifecycle signals. Publish failures are logged
// and never fail the registry operation.
type Notifier interface {
	AppointmentCreated(ctx context.Context, appt Appointment) error
}

// Service is the appointment registry: it owns creation, status overwrites
// and the temporal queries the scheduling screens run.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

type CreateInput struct {
	AffiliateID      uuid.UUID
	AffiliateName    string
	ProfessionalID   uuid.UUID
	ProfessionalName string
	Date             string
	Time             string
	Modality         Modality
	Specialty        string
	// Status comes from the caller, normally the intake classifier. The
	// registry does not re-derive it.
	Status    Status
	Facility  string
	Notes     string
	CreatedBy string
}

func (in CreateInput) validate() error {
	if in.AffiliateID == uuid.Nil {
		return ErrMissingAffiliate
	}
	if in.ProfessionalID == uuid.Nil {
		return ErrMissingProfessional
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return ErrInvalidDate
	}
	if _, err := time.Parse(TimeLayout, in.Time); err != nil {
		return ErrInvalidTime
	}
	if _, err := ParseModality(string(in.Modality)); err != nil {
		return err
	}
	if _, err := ParseStatus(string(in.Status)); err != nil {
		return err
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	appt := &Appointment{
		ID:               uuid.New(),
		AffiliateID:      in.AffiliateID,
		AffiliateName:    in.AffiliateName,
		ProfessionalID:   in.ProfessionalID,
		ProfessionalName: in.ProfessionalName,
		Date:             in.Date,
		Time:             in.Time,
		Modality:         in.Modality,
		Specialty:        in.Specialty,
		Status:           in.Status,
		Facility:         in.Facility,
		Notes:            in.Notes,
		CreatedBy:        in.CreatedBy,
		CreatedAt:        s.now(),
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.AppointmentCreated(ctx, *created); err != nil {
			s.logger.Warn("appointment created notification failed",
				zap.String("appointment_id", created.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("appointment created",
		zap.String("appointment_id", created.ID.String()),
		zap.String("status", string(created.Status)),
		zap.String("modality", string(created.Modality)))

	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus overwrites an appointment's status. There is deliberately no
// transition table here; confirmation workflows apply their own rules before
// calling in.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment status updated",
		zap.String("appointment_id", id.String()),
		zap.String("status", string(status)))

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("appointment deleted", zap.String("appointment_id", id.String()))
	return nil
}

func (s *Service) ListForDate(ctx context.Context, date string) ([]Appointment, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	return s.repo.ListByDate(ctx, date)
}

func (s *Service) ListToday(ctx context.Context) ([]Appointment, error) {
	return s.repo.ListByDate(ctx, s.now().Format(DateLayout))
}

func (s *Service) ListUpcoming(ctx context.Context) ([]Appointment, error) {
	return s.repo.ListFromDate(ctx, s.now().Format(DateLayout))
}

func (s *Service) ListPendingConfirmation(ctx context.Context) ([]Appointment, error) {
	return s.repo.ListByStatus(ctx, StatusPendienteConfirmacion)
}
