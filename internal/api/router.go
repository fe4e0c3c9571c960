package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
	"github.com/waiogamez/mirafloresplus-core/internal/notification"
	"github.com/waiogamez/mirafloresplus-core/internal/report"
	"github.com/waiogamez/mirafloresplus-core/internal/session"
)

type RouterConfig struct {
	Appointments  *appointment.Service
	Sessions      *session.Service
	Reports       *report.Aggregator
	Notifications notification.Store
	PgPool        *pgxpool.Pool
	Redis         *redis.Client
	Logger        *zap.Logger
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/appointments", createAppointmentHandler(cfg.Appointments))
	r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments))
	r.Post("/appointments/{id}/status", updateAppointmentStatusHandler(cfg.Appointments))
	r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Appointments))

	r.Post("/sessions", startSessionHandler(cfg.Sessions))
	r.Get("/sessions", listSessionsHandler(cfg.Sessions))
	r.Get("/sessions/{id}", getSessionHandler(cfg.Sessions))
	r.Post("/sessions/{id}/complete", completeSessionHandler(cfg.Sessions))
	r.Post("/sessions/{id}/cancel", cancelSessionHandler(cfg.Sessions))

	r.Get("/reports/monthly", monthlyReportsHandler(cfg.Reports))

	r.Get("/notifications", listNotificationsHandler(cfg.Notifications))
	r.Post("/notifications/{id}/read", markNotificationReadHandler(cfg.Notifications))

	return r
}
