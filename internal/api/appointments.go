package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
)

var validate = validator.New()

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		affiliateID, err := uuid.Parse(req.AffiliateID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_affiliate_id", "affiliate_id must be a valid UUID")
			return
		}
		professionalID, err := uuid.Parse(req.ProfessionalID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "professional_id must be a valid UUID")
			return
		}

		modality, err := appointment.ParseModality(req.Modality)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_modality", err.Error())
			return
		}

		intake := appointment.Classify(modality, req.Specialty)

		appt, err := svc.Create(r.Context(), appointment.CreateInput{
			AffiliateID:      affiliateID,
			AffiliateName:    req.AffiliateName,
			ProfessionalID:   professionalID,
			ProfessionalName: req.ProfessionalName,
			Date:             req.Date,
			Time:             req.Time,
			Modality:         modality,
			Specialty:        req.Specialty,
			Status:           intake.InitialStatus,
			Facility:         req.Facility,
			Notes:            req.Notes,
			CreatedBy:        req.CreatedBy,
		})
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt, intake.Category))
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt, ""))
	}
}

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			appts []appointment.Appointment
			err   error
		)

		q := r.URL.Query()
		switch {
		case q.Get("date") != "":
			appts, err = svc.ListForDate(r.Context(), q.Get("date"))
		case q.Get("view") == "upcoming":
			appts, err = svc.ListUpcoming(r.Context())
		case q.Get("view") == "pending":
			appts, err = svc.ListPendingConfirmation(r.Context())
		case q.Get("view") == "today":
			appts, err = svc.ListToday(r.Context())
		default:
			appts, err = svc.ListUpcoming(r.Context())
		}
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		result := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			result = append(result, toAppointmentResponse(&appts[i], ""))
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func updateAppointmentStatusHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateAppointmentStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		status, err := appointment.ParseStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}

		appt, err := svc.UpdateStatus(r.Context(), id, status)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt, ""))
	}
}

func deleteAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			handleAppointmentError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrMissingAffiliate),
		errors.Is(err, appointment.ErrMissingProfessional),
		errors.Is(err, appointment.ErrInvalidDate),
		errors.Is(err, appointment.ErrInvalidTime),
		errors.Is(err, appointment.ErrUnknownModality),
		errors.Is(err, appointment.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusServiceUnavailable, "dependency_unavailable", err.Error())
	}
}
