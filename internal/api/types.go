package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
	"github.com/waiogamez/mirafloresplus-core/internal/notification"
	"github.com/waiogamez/mirafloresplus-core/internal/report"
	"github.com/waiogamez/mirafloresplus-core/internal/session"
)

type CreateAppointmentRequest struct {
	AffiliateID      string `json:"affiliate_id" validate:"required,uuid"`
	AffiliateName    string `json:"affiliate_name" validate:"required"`
	ProfessionalID   string `json:"professional_id" validate:"required,uuid"`
	ProfessionalName string `json:"professional_name" validate:"required"`
	Date             string `json:"date" validate:"required"`
	Time             string `json:"time" validate:"required"`
	Modality         string `json:"modality" validate:"required"`
	Specialty        string `json:"specialty" validate:"required"`
	Facility         string `json:"facility"`
	Notes            string `json:"notes"`
	CreatedBy        string `json:"created_by"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type StartSessionRequest struct {
	AppointmentID string `json:"appointment_id" validate:"required,uuid"`
	Notes         string `json:"notes"`
	CreatedBy     string `json:"created_by"`
}

type CompleteSessionRequest struct {
	Notes string `json:"notes"`
}

type CancelSessionRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type AppointmentResponse struct {
	ID               uuid.UUID `json:"id"`
	AffiliateID      uuid.UUID `json:"affiliate_id"`
	AffiliateName    string    `json:"affiliate_name"`
	ProfessionalID   uuid.UUID `json:"professional_id"`
	ProfessionalName string    `json:"professional_name"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Modality         string    `json:"modality"`
	Specialty        string    `json:"specialty"`
	Status           string    `json:"status"`
	VisitCategory    string    `json:"visit_category,omitempty"`
	Facility         string    `json:"facility,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedBy        string    `json:"created_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toAppointmentResponse(a *appointment.Appointment, category appointment.VisitCategory) AppointmentResponse {
	return AppointmentResponse{
		ID:               a.ID,
		AffiliateID:      a.AffiliateID,
		AffiliateName:    a.AffiliateName,
		ProfessionalID:   a.ProfessionalID,
		ProfessionalName: a.ProfessionalName,
		Date:             a.Date,
		Time:             a.Time,
		Modality:         string(a.Modality),
		Specialty:        a.Specialty,
		Status:           string(a.Status),
		VisitCategory:    string(category),
		Facility:         a.Facility,
		Notes:            a.Notes,
		CreatedBy:        a.CreatedBy,
		CreatedAt:        a.CreatedAt,
	}
}

type SessionResponse struct {
	ID                uuid.UUID  `json:"id"`
	AppointmentID     uuid.UUID  `json:"appointment_id"`
	PatientID         uuid.UUID  `json:"patient_id"`
	PatientName       string     `json:"patient_name"`
	ProfessionalID    uuid.UUID  `json:"professional_id"`
	ProfessionalName  string     `json:"professional_name"`
	Specialty         string     `json:"specialty"`
	Date              string     `json:"date"`
	Time              string     `json:"time"`
	Modality          string     `json:"modality"`
	DurationMinutes   int        `json:"duration_minutes"`
	MinutesInProgress int        `json:"minutes_in_progress"`
	FeeCents          int64      `json:"fee_cents"`
	Status            string     `json:"status"`
	Notes             string     `json:"notes,omitempty"`
	AttendedAt        time.Time  `json:"attended_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	Facility          string     `json:"facility,omitempty"`
}

func toSessionResponse(s *session.Session, now time.Time) SessionResponse {
	return SessionResponse{
		ID:                s.ID,
		AppointmentID:     s.AppointmentID,
		PatientID:         s.PatientID,
		PatientName:       s.PatientName,
		ProfessionalID:    s.ProfessionalID,
		ProfessionalName:  s.ProfessionalName,
		Specialty:         s.Specialty,
		Date:              s.Date,
		Time:              s.Time,
		Modality:          string(s.Modality),
		DurationMinutes:   s.DurationMinutes,
		MinutesInProgress: s.MinutesInProgress(now),
		FeeCents:          s.FeeCents,
		Status:            string(s.Status),
		Notes:             s.Notes,
		AttendedAt:        s.AttendedAt,
		CompletedAt:       s.CompletedAt,
		Facility:          s.Facility,
	}
}

type MonthlyReportResponse struct {
	ProfessionalID    uuid.UUID         `json:"professional_id"`
	ProfessionalName  string            `json:"professional_name"`
	Month             string            `json:"month"`
	TotalAppointments int               `json:"total_appointments"`
	PresencialCount   int               `json:"presencial_count"`
	VideollamadaCount int               `json:"videollamada_count"`
	TotalMinutes      int               `json:"total_minutes"`
	TotalHours        float64           `json:"total_hours"`
	TotalFeeCents     int64             `json:"total_fee_cents"`
	Sessions          []SessionResponse `json:"sessions"`
}

func toReportResponse(r *report.MonthlyReport, now time.Time) MonthlyReportResponse {
	sessions := make([]SessionResponse, 0, len(r.Sessions))
	for i := range r.Sessions {
		sessions = append(sessions, toSessionResponse(&r.Sessions[i], now))
	}
	return MonthlyReportResponse{
		ProfessionalID:    r.ProfessionalID,
		ProfessionalName:  r.ProfessionalName,
		Month:             r.Month,
		TotalAppointments: r.TotalAppointments,
		PresencialCount:   r.PresencialCount,
		VideollamadaCount: r.VideollamadaCount,
		TotalMinutes:      r.TotalMinutes,
		TotalHours:        r.TotalHours,
		TotalFeeCents:     r.TotalFeeCents,
		Sessions:          sessions,
	}
}

type NotificationResponse struct {
	ID         uuid.UUID             `json:"id"`
	Type       string                `json:"type"`
	Recipients []string              `json:"recipients"`
	Title      string                `json:"title"`
	Message    string                `json:"message"`
	ActionRef  *uuid.UUID            `json:"action_ref,omitempty"`
	Read       bool                  `json:"read"`
	Metadata   notification.Metadata `json:"metadata"`
	CreatedAt  time.Time             `json:"created_at"`
}

func toNotificationResponse(ev *notification.Event) NotificationResponse {
	recipients := make([]string, 0, len(ev.Recipients))
	for _, r := range ev.Recipients {
		recipients = append(recipients, string(r))
	}
	return NotificationResponse{
		ID:         ev.ID,
		Type:       string(ev.Type),
		Recipients: recipients,
		Title:      ev.Title,
		Message:    ev.Message,
		ActionRef:  ev.ActionRef,
		Read:       ev.Read,
		Metadata:   ev.Metadata,
		CreatedAt:  ev.CreatedAt,
	}
}
