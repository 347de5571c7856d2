package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"timekeeper/internal/domain/attendance"
	"timekeeper/internal/domain/audit"
	"timekeeper/internal/domain/auth"
	"timekeeper/internal/domain/holidays"
	"timekeeper/internal/platform/config"
	"timekeeper/internal/platform/db"
	"timekeeper/internal/platform/jobs"
	"timekeeper/internal/platform/metrics"
	"timekeeper/internal/requestctx"
	"timekeeper/internal/transport/http/api"
	attendancehandler "timekeeper/internal/transport/http/handlers/attendance"
	audithandler "timekeeper/internal/transport/http/handlers/audit"
	"timekeeper/internal/transport/http/middleware"
)

// schedulerActor is the identity recorded on audit events written by
// scheduled correction runs.
const schedulerActor = "scheduler"

type App struct {
	Config  config.Config
	DB      *db.Pool
	Router  http.Handler
	Metrics *metrics.Collector

	cancel context.CancelFunc
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()
	store := attendance.NewStore(pool)
	holidayStore := holidays.NewStore(pool)
	auditSvc := audit.New(pool)
	jobsSvc := jobs.New(pool)
	idem := middleware.NewIdempotencyStore(pool)
	perms := auth.StaticPermissions{}

	svc := attendance.NewService(store, holidayStore, auditSvc, collector)
	svc.Flatten = cfg.FlattenStandard

	bgCtx, cancel := context.WithCancel(context.Background())
	jobsSvc.Start(bgCtx)
	jobsSvc.Schedule(bgCtx, jobs.JobScheduledCorrection, cfg.CorrectionInterval, store.Tenants, func(tenantID string) jobs.RunFunc {
		return scheduledCorrection(svc, tenantID, cfg.CorrectionLookback)
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.HeavyOperationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, map[string]string{"status": "ok"}, middleware.GetRequestID(r.Context()))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "not_ready", "database unavailable", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, map[string]string{"status": "ready"}, middleware.GetRequestID(r.Context()))
	})
	if cfg.MetricsEnabled {
		router.With(middleware.RequirePermission(auth.PermMetricsRead, perms)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		attendancehandler.NewHandler(svc, perms, jobsSvc, idem).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, perms).RegisterRoutes(r)
	})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Metrics: collector,
		cancel:  cancel,
	}, nil
}

// scheduledCorrection recalculates the trailing lookback window ending today.
func scheduledCorrection(svc *attendance.Service, tenantID string, lookbackDays int) jobs.RunFunc {
	return func(ctx context.Context) (any, error) {
		today := time.Now()
		req := attendance.CorrectionRequest{
			From: today.AddDate(0, 0, -(lookbackDays - 1)).Format(time.DateOnly),
			To:   today.Format(time.DateOnly),
		}
		ctx = requestctx.WithActor(ctx, requestctx.Actor{UserID: schedulerActor, TenantID: tenantID, Role: auth.RoleAdmin})
		report, err := svc.RunCorrection(ctx, tenantID, req)
		if errors.Is(err, attendance.ErrNoPunches) {
			return map[string]string{"skipped": "no punches in window"}, nil
		}
		return report, err
	}
}

func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	slog.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}
