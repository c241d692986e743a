package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/arekbor/helpdesk/internal/config"
	"github.com/arekbor/helpdesk/internal/database"
	"github.com/arekbor/helpdesk/internal/email"
	"github.com/arekbor/helpdesk/internal/queue"
	"github.com/arekbor/helpdesk/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// outbound email consumer; reconnects on broker hiccups
	go func() {
		if err := email.StartConsumer(ctx, cfg.AMQPURL, email.NewSender(cfg.SMTP)); err != nil {
			slog.Error("email consumer stopped", "error", err)
		}
	}()

	redisCfg := config.LoadRedisConfig()
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisCfg.Addr, Password: redisCfg.Password, DB: redisCfg.DB},
		asynq.Config{
			Concurrency: 5,
			Logger:      asynqLogger{},
		},
	)

	processor := &queue.CSVImportProcessor{
		Jobs:  repository.NewJobRepo(db),
		Users: repository.NewUserRepo(db),
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeCSVImport, processor.ProcessTask)

	go func() {
		<-ctx.Done()
		slog.Info("shutting down worker")
		srv.Shutdown()
	}()

	slog.Info("worker starting")
	if err := srv.Run(mux); err != nil {
		slog.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}

// asynqLogger routes the queue server's own logs through slog.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...any) { slog.Debug("asynq", "msg", args) }
func (asynqLogger) Info(args ...any)  { slog.Info("asynq", "msg", args) }
func (asynqLogger) Warn(args ...any)  { slog.Warn("asynq", "msg", args) }
func (asynqLogger) Error(args ...any) { slog.Error("asynq", "msg", args) }
func (asynqLogger) Fatal(args ...any) {
	slog.Error("asynq fatal", "msg", args)
	os.Exit(1)
}
