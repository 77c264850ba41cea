package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/agendazap/agendazap/internal/api/router"
	"github.com/agendazap/agendazap/internal/appointments"
	"github.com/agendazap/agendazap/internal/audit"
	"github.com/agendazap/agendazap/internal/chat"
	"github.com/agendazap/agendazap/internal/config"
	"github.com/agendazap/agendazap/internal/http/handlers"
	"github.com/agendazap/agendazap/internal/messaging"
	"github.com/agendazap/agendazap/internal/observability/metrics"
	"github.com/agendazap/agendazap/internal/reminder"
	"github.com/agendazap/agendazap/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		repo  chat.Repository
		store chat.StateStore
	)
	if cfg.UseMemoryStore || cfg.DatabaseURL == "" {
		repo = appointments.NewMemoryRepository()
		store = chat.NewMemoryStore()
		logger.Warn("running with in-memory repository and state store")
	} else {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = appointments.NewPostgresRepository(pool)

		redisOpts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		store = chat.NewRedisStore(rdb, nil)
	}

	sender := messaging.NewGatewaySender(cfg.GatewayURL, cfg.GatewayToken, logger.Named("messaging"))
	reports := audit.NewService(os.Stdout, logger.Named("audit"))
	chatMetrics := metrics.NewChatMetrics(prometheus.DefaultRegisterer)

	machine := chat.NewMachine(store, repo, sender, reports, chatMetrics, logger.Named("chat"), chat.Options{
		AdminID:      cfg.AdminID,
		SalonName:    cfg.SalonName,
		SalonAddress: cfg.SalonAddress,
	})

	sweeper := chat.NewSweeper(store, sender, chatMetrics, logger.Named("sweeper"))
	go sweeper.Run(ctx, cfg.SweepInterval)

	driver := reminder.NewDriver(repo, store, sender, chatMetrics, logger.Named("reminder"), cfg.SalonName)
	go reminder.NewWorker(driver, logger.Named("reminder")).Run(ctx)

	handler := router.New(&router.Config{
		Logger:         logger,
		MessageWebhook: handlers.NewMessageWebhookHandler(machine, logger.Named("webhook")),
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("api listening", "port", cfg.Port, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("api stopped")
}
