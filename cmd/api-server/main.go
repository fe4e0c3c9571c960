package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/waiogamez/mirafloresplus-core/internal/api"
	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
	"github.com/waiogamez/mirafloresplus-core/internal/config"
	"github.com/waiogamez/mirafloresplus-core/internal/db"
	"github.com/waiogamez/mirafloresplus-core/internal/directory"
	"github.com/waiogamez/mirafloresplus-core/internal/fees"
	"github.com/waiogamez/mirafloresplus-core/internal/metrics"
	"github.com/waiogamez/mirafloresplus-core/internal/notification"
	redisclient "github.com/waiogamez/mirafloresplus-core/internal/redis"
	"github.com/waiogamez/mirafloresplus-core/internal/report"
	"github.com/waiogamez/mirafloresplus-core/internal/session"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	schemaCtx, cancelSchema := context.WithTimeout(rootCtx, 30*time.Second)
	err = db.EnsureSchema(schemaCtx, pgPool)
	cancelSchema()
	if err != nil {
		logger.Fatal("schema bootstrap error", zap.Error(err))
	}

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("error closing redis", zap.Error(err))
		}
	}()
	logger.Info("connected to Redis")

	engineStats := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)

	dir := directory.NewPgDirectory(pgPool)
	feeSchedule := fees.NewSchedule(dir, fees.Defaults{
		PresencialCents:   cfg.DefaultPresencialFeeCents,
		VideollamadaCents: cfg.DefaultVideollamadaFeeCents,
	})

	inbox := notification.NewPgStore(pgPool)
	dispatcher := notification.NewDispatcher(inbox, logger, engineStats)

	appointmentRepo := appointment.NewPgRepository(pgPool)
	appointments := appointment.NewService(appointmentRepo, dispatcher, logger)

	sessionRepo := session.NewPgRepository(pgPool)
	locker := redisclient.NewRedisAppointmentLocker(rdb, cfg.LockTTL)
	sessions := session.NewService(sessionRepo, appointmentRepo, feeSchedule, locker, dispatcher, logger, engineStats)

	reports := report.NewAggregator(sessionRepo, dir)

	router := api.NewRouter(api.RouterConfig{
		Appointments:  appointments,
		Sessions:      sessions,
		Reports:       reports,
		Notifications: inbox,
		PgPool:        pgPool,
		Redis:         rdb,
		Logger:        logger,
		Env:           cfg.Env,
		Version:       version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	logger.Info("api-server stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
