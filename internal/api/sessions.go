package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
	"github.com/waiogamez/mirafloresplus-core/internal/directory"
	redisclient "github.com/waiogamez/mirafloresplus-core/internal/redis"
	"github.com/waiogamez/mirafloresplus-core/internal/session"
)

func startSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		appointmentID, err := uuid.Parse(req.AppointmentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "appointment_id must be a valid UUID")
			return
		}

		sess, err := svc.Start(r.Context(), session.StartInput{
			AppointmentID: appointmentID,
			CreatedBy:     req.CreatedBy,
			Notes:         req.Notes,
		})
		if err != nil {
			handleSessionError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toSessionResponse(sess, time.Now()))
	}
}

func completeSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_session_id", "id must be a valid UUID")
			return
		}

		var req CompleteSessionRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
				return
			}
		}

		sess, err := svc.Complete(r.Context(), id, req.Notes)
		if err != nil {
			handleSessionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toSessionResponse(sess, time.Now()))
	}
}

func cancelSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_session_id", "id must be a valid UUID")
			return
		}

		var req CancelSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		sess, err := svc.Cancel(r.Context(), id, req.Reason)
		if err != nil {
			handleSessionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toSessionResponse(sess, time.Now()))
	}
}

func getSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_session_id", "id must be a valid UUID")
			return
		}

		sess, err := svc.Get(r.Context(), id)
		if err != nil {
			handleSessionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toSessionResponse(sess, time.Now()))
	}
}

func listSessionsHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			sessions []session.Session
			err      error
		)

		q := r.URL.Query()
		switch {
		case q.Get("professional_id") != "":
			var professionalID uuid.UUID
			professionalID, err = uuid.Parse(q.Get("professional_id"))
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_professional_id", "professional_id must be a valid UUID")
				return
			}
			sessions, err = svc.ListByProfessional(r.Context(), professionalID)
		case q.Get("date") != "":
			sessions, err = svc.ListByDate(r.Context(), q.Get("date"))
		case q.Get("view") == "in_progress":
			sessions, err = svc.ListInProgress(r.Context())
		default:
			sessions, err = svc.ListToday(r.Context())
		}
		if err != nil {
			handleSessionError(w, err)
			return
		}

		now := time.Now()
		result := make([]SessionResponse, 0, len(sessions))
		for i := range sessions {
			result = append(result, toSessionResponse(&sessions[i], now))
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handleSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, directory.ErrProfessionalNotFound):
		writeError(w, http.StatusNotFound, "professional_not_found", err.Error())
	case errors.Is(err, session.ErrSessionAlreadyActive):
		writeError(w, http.StatusConflict, "session_already_active", err.Error())
	case errors.Is(err, session.ErrSessionTerminal):
		writeError(w, http.StatusConflict, "session_terminal", err.Error())
	case errors.Is(err, session.ErrSessionBeingStarted),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "session_being_started", "a session for this appointment is being started, please retry shortly")
	case errors.Is(err, session.ErrCancelReasonRequired),
		errors.Is(err, appointment.ErrInvalidDate),
		errors.Is(err, appointment.ErrUnknownModality):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusServiceUnavailable, "dependency_unavailable", err.Error())
	}
}
