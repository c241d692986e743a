package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/arekbor/helpdesk/internal/auth"
	"github.com/arekbor/helpdesk/internal/config"
	"github.com/arekbor/helpdesk/internal/database"
	"github.com/arekbor/helpdesk/internal/email"
	"github.com/arekbor/helpdesk/internal/handler"
	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/oauth"
	"github.com/arekbor/helpdesk/internal/payment"
	"github.com/arekbor/helpdesk/internal/queue"
	"github.com/arekbor/helpdesk/internal/repository"
	"github.com/arekbor/helpdesk/internal/router"
	"github.com/arekbor/helpdesk/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Env),
	})))

	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := database.Migrate(migrateCtx, db); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	users := repository.NewUserRepo(db)
	credentials := repository.NewCredentialRepo(db)
	sessions := repository.NewSessionRepo(db)
	roles := repository.NewRoleRepo(db)
	tickets := repository.NewTicketRepo(db)
	attachments := repository.NewAttachmentRepo(db)
	jobs := repository.NewJobRepo(db)

	storeCtx, cancelStore := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStore()
	objectStore, err := storage.NewS3Store(storeCtx, cfg.S3)
	if err != nil {
		slog.Error("object store init failed", "error", err)
		os.Exit(1)
	}

	redisCfg := config.LoadRedisConfig()
	rdb := config.NewRedisClient(redisCfg)
	taskQueue := queue.NewClient(redisCfg, cfg.JobRetryAttempts)
	defer taskQueue.Close()

	authSvc := &auth.Service{
		Users:         users,
		Credentials:   credentials,
		Sessions:      sessions,
		Roles:         roles,
		Welcome:       email.NewPublisher(cfg.AMQPURL),
		BcryptCost:    cfg.BcryptCost,
		SessionTTLMin: cfg.SessionTTLMin,
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpx.ErrorHandler

	router.Register(e, router.Deps{
		Auth: &handler.AuthHandler{
			Auth:        authSvc,
			Google:      oauth.NewGoogleClient(cfg.Google),
			StateSecret: cfg.StateSecret,
		},
		Users:        &handler.UserHandler{Users: users, Queue: taskQueue},
		Tickets:      &handler.TicketHandler{Tickets: tickets},
		Attachments:  &handler.AttachmentHandler{Attachments: attachments, Tickets: tickets, Store: objectStore},
		Subscription: &handler.SubscriptionHandler{Payments: payment.NewService(cfg.Stripe)},
		Jobs:         handler.NewJobHandler(jobs, roles),

		Sessions:      sessions,
		Roles:         roles,
		SessionTTLMin: cfg.SessionTTLMin,
		RateLimit:     config.LoadRateLimitConfig(),
		Redis:         rdb,
	})

	slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func logLevel(env string) slog.Level {
	if env == "prod" {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
