package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
	"github.com/waiogamez/mirafloresplus-core/internal/metrics"
	"github.com/waiogamez/mirafloresplus-core/internal/session"
)

// routing is fixed by policy: who hears about what is decided by event type
// alone, never by payload content.
var routing = map[EventType][]Role{
	EventAppointmentCreated:           {RoleAdmin, RoleFrontDesk},
	EventSessionStartedPresencial:     {RoleAdmin, RoleFrontDesk},
	EventSessionStartedTelemedicina:   {RoleAdmin, RoleFrontDesk},
	EventSessionCompletedPresencial:   {RoleAdmin, RoleFrontDesk, RoleFinance},
	EventSessionCompletedTelemedicina: {RoleAdmin, RoleFrontDesk, RoleFinance},
	EventSessionCancelled:             {RoleAdmin, RoleFrontDesk, RoleFinance},
}

// Recipients returns the fixed recipient roles for an event type.
func Recipients(t EventType) ([]Role, error) {
	roles, ok := routing[t]
	if !ok {
		return nil, ErrUnknownEventType
	}
	out := make([]Role, len(roles))
	copy(out, roles)
	return out, nil
}

// Dispatcher renders lifecycle events and appends them to the shared inbox.
// It broadcasts fire-and-forget: appending is the whole delivery.
type Dispatcher struct {
	store       Store
	logger      *zap.Logger
	engineStats *metrics.EngineMetrics
	now         func() time.Time
}

func NewDispatcher(store Store, logger *zap.Logger, engineStats *metrics.EngineMetrics) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		store:       store,
		logger:      logger,
		engineStats: engineStats,
		now:         time.Now,
	}
}

func (d *Dispatcher) publish(ctx context.Context, t EventType, actionRef uuid.UUID, title, message string, payload any) (*Event, error) {
	recipients, err := Recipients(t)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode notification payload: %w", err)
	}

	ref := actionRef
	ev := &Event{
		ID:         uuid.New(),
		Type:       t,
		Recipients: recipients,
		Title:      title,
		Message:    message,
		ActionRef:  &ref,
		Metadata:   Metadata{EventType: t, Payload: raw},
		CreatedAt:  d.now(),
	}

	stored, err := d.store.Append(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("append notification: %w", err)
	}

	d.engineStats.ObserveNotification(string(t))
	d.logger.Info("notification published",
		zap.String("event_type", string(t)),
		zap.String("notification_id", stored.ID.String()))

	return stored, nil
}

func (d *Dispatcher) PublishAppointmentCreated(ctx context.Context, p AppointmentCreatedPayload) (*Event, error) {
	title := "Nueva cita registrada"
	message := fmt.Sprintf("%s reservó una cita de %s (%s) con %s el %s a las %s.",
		p.AffiliateName, p.Specialty, p.Modality, p.ProfessionalName, p.Date, p.Time)
	return d.publish(ctx, EventAppointmentCreated, p.AppointmentID, title, message, p)
}

func (d *Dispatcher) PublishSessionStarted(ctx context.Context, p SessionStartedPayload) (*Event, error) {
	t := EventSessionStartedPresencial
	title := "Consulta presencial iniciada"
	message := fmt.Sprintf("%s inició la atención presencial de %s en %s.",
		p.ProfessionalName, p.PatientName, p.Facility)
	if p.Modality == string(appointment.ModalityTelemedicina) {
		t = EventSessionStartedTelemedicina
		title = "Videoconsulta iniciada"
		message = fmt.Sprintf("%s inició la videoconsulta con %s.",
			p.ProfessionalName, p.PatientName)
	}
	return d.publish(ctx, t, p.SessionID, title, message, p)
}

func (d *Dispatcher) PublishSessionCompleted(ctx context.Context, p SessionCompletedPayload) (*Event, error) {
	t := EventSessionCompletedPresencial
	if p.Modality == string(appointment.ModalityTelemedicina) {
		t = EventSessionCompletedTelemedicina
	}
	title := "Consulta completada"
	message := fmt.Sprintf("%s completó la consulta de %s en %d minutos. Honorario: %s.",
		p.ProfessionalName, p.PatientName, p.DurationMinutes, formatCents(p.FeeCents))
	return d.publish(ctx, t, p.SessionID, title, message, p)
}

func (d *Dispatcher) PublishSessionCancelled(ctx context.Context, p SessionCancelledPayload) (*Event, error) {
	title := "Consulta cancelada"
	message := fmt.Sprintf("La consulta de %s con %s fue cancelada: %s",
		p.PatientName, p.ProfessionalName, p.Reason)
	return d.publish(ctx, EventSessionCancelled, p.SessionID, title, message, p)
}

// Notifier adapters for the registry and session services.

func (d *Dispatcher) AppointmentCreated(ctx context.Context, appt appointment.Appointment) error {
	_, err := d.PublishAppointmentCreated(ctx, AppointmentCreatedPayload{
		AppointmentID:    appt.ID,
		AffiliateName:    appt.AffiliateName,
		ProfessionalName: appt.ProfessionalName,
		Date:             appt.Date,
		Time:             appt.Time,
		Modality:         string(appt.Modality),
		Specialty:        appt.Specialty,
		Status:           string(appt.Status),
	})
	return err
}

func (d *Dispatcher) SessionStarted(ctx context.Context, s session.Session) error {
	_, err := d.PublishSessionStarted(ctx, SessionStartedPayload{
		SessionID:        s.ID,
		AppointmentID:    s.AppointmentID,
		PatientName:      s.PatientName,
		ProfessionalName: s.ProfessionalName,
		Modality:         string(s.Modality),
		Facility:         s.Facility,
		FeeCents:         s.FeeCents,
	})
	return err
}

func (d *Dispatcher) SessionCompleted(ctx context.Context, s session.Session) error {
	_, err := d.PublishSessionCompleted(ctx, SessionCompletedPayload{
		SessionID:        s.ID,
		AppointmentID:    s.AppointmentID,
		PatientName:      s.PatientName,
		ProfessionalName: s.ProfessionalName,
		Modality:         string(s.Modality),
		DurationMinutes:  s.DurationMinutes,
		FeeCents:         s.FeeCents,
	})
	return err
}

func (d *Dispatcher) SessionCancelled(ctx context.Context, s session.Session, reason string) error {
	_, err := d.PublishSessionCancelled(ctx, SessionCancelledPayload{
		SessionID:        s.ID,
		AppointmentID:    s.AppointmentID,
		PatientName:      s.PatientName,
		ProfessionalName: s.ProfessionalName,
		Modality:         string(s.Modality),
		Reason:           reason,
	})
	return err
}

func formatCents(cents int64) string {
	return fmt.Sprintf("S/ %d.%02d", cents/100, cents%100)
}
