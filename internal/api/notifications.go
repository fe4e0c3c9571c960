package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/waiogamez/mirafloresplus-core/internal/notification"
)

func listNotificationsHandler(store notification.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		role, err := notification.ParseRole(q.Get("role"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_role", "role must be one of admin, recepcion, finanzas")
			return
		}

		unreadOnly := q.Get("unread") == "true"

		events, err := store.ListByRole(r.Context(), role, unreadOnly)
		if err != nil {
			handleNotificationError(w, err)
			return
		}

		result := make([]NotificationResponse, 0, len(events))
		for i := range events {
			result = append(result, toNotificationResponse(&events[i]))
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func markNotificationReadHandler(store notification.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_notification_id", "id must be a valid UUID")
			return
		}

		ev, err := store.MarkRead(r.Context(), id)
		if err != nil {
			handleNotificationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toNotificationResponse(ev))
	}
}

func handleNotificationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notification.ErrNotificationNotFound):
		writeError(w, http.StatusNotFound, "notification_not_found", err.Error())
	default:
		writeError(w, http.StatusServiceUnavailable, "dependency_unavailable", err.Error())
	}
}
