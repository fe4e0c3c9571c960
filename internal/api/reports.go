package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/waiogamez/mirafloresplus-core/internal/report"
)

func monthlyReportsHandler(agg *report.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		month := q.Get("month")
		if month == "" {
			writeError(w, http.StatusBadRequest, "missing_month", "month query parameter is required (YYYY-MM)")
			return
		}

		now := time.Now()

		if raw := q.Get("professional_id"); raw != "" {
			professionalID, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_professional_id", "professional_id must be a valid UUID")
				return
			}

			rep, err := agg.ReportFor(r.Context(), professionalID, month)
			if err != nil {
				handleReportError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toReportResponse(rep, now))
			return
		}

		reports, err := agg.ReportsForAll(r.Context(), month)
		if err != nil {
			handleReportError(w, err)
			return
		}

		result := make([]MonthlyReportResponse, 0, len(reports))
		for i := range reports {
			result = append(result, toReportResponse(&reports[i], now))
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handleReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, report.ErrInvalidMonth):
		writeError(w, http.StatusBadRequest, "invalid_month", err.Error())
	default:
		writeError(w, http.StatusServiceUnavailable, "dependency_unavailable", err.Error())
	}
}
