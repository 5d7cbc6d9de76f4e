package main

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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"lendingapi/internal/auth"
	"lendingapi/internal/fine"
	"lendingapi/internal/httpx"
	"lendingapi/internal/inventory"
	"lendingapi/internal/loan"
	"lendingapi/internal/notification"
	"lendingapi/internal/platform/crypto"
	"lendingapi/internal/policy"
	"lendingapi/internal/reminder"
	"lendingapi/internal/user"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := openDB(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	logger.Info("database connection OK")

	userService := user.NewService(user.NewPostgresRepo(dbPool, cfg.DBTimeout))
	policyService := policy.NewService(policy.NewPostgresRepo(dbPool, cfg.DBTimeout))
	inventoryService := inventory.NewService(inventory.NewPostgresRepo(dbPool, cfg.DBTimeout))
	fineService := fine.NewService(fine.NewPostgresRepo(dbPool, cfg.DBTimeout), userService)
	notificationService := notification.NewService(notification.NewPostgresRepo(dbPool, cfg.DBTimeout))
	loanRepo := loan.NewPostgresRepo(dbPool, cfg.DBTimeout)
	loanService := loan.NewService(loanRepo, userService, inventoryService, policyService, fineService, notificationService,
		loan.WithLogger(logger.With("component", "loan")))

	if cfg.AdminUsername != "" {
		if err := bootstrapAdmin(ctx, userService, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return err
		}
		logger.Info("administrator account ready", "username", cfg.AdminUsername)
	}

	job := reminder.NewJob(loanRepo, policyService, inventoryService, notificationService,
		reminder.WithLogger(logger.With("component", "reminder")))
	scheduler, err := reminder.Schedule(cfg.ReminderSchedule, job, cfg.ReminderTimeout)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	router := newRouter(services{
		Users:         userService,
		Auth:          auth.NewService(cfg.JWTSecret, cfg.TokenTTL, userService),
		Policies:      policyService,
		Inventory:     inventoryService,
		Fines:         fineService,
		Notifications: notificationService,
		Loans:         loanService,
	}, cfg.JWTSecret, dbPool.Ping)

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler := httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware(logger),
		httpx.AccessLogMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSOrigins),
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
		rateLimiter.Middleware,
	)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr, "reminder_schedule", cfg.ReminderSchedule)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", redactDSN(dsn), err)
	}
	return pool, nil
}

func bootstrapAdmin(ctx context.Context, users *user.Service, username, password string) error {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := users.EnsureAdmin(ctx, username, hash); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	return nil
}
