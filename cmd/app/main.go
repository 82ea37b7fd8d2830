package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"appointment-service/internal/config"
	"appointment-service/internal/http-server/router"
	"appointment-service/internal/lock"
	"appointment-service/internal/notify"
	"appointment-service/internal/seed"
	svc "appointment-service/internal/service"
	"appointment-service/internal/storage/memory"
	"appointment-service/internal/storage/postgres"
	slogpretty "appointment-service/pkg/handlers/slogPretty"
	"appointment-service/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type storage interface {
	svc.Store
	seed.Store
	notify.NotificationSaver
	Close() error
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	store, err := setupStorage(cfg)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if cfg.SeedPath != "" {
		if err := seedStorage(log, store, cfg); err != nil {
			log.Error("Failed to seed storage", slog.String("path", cfg.SeedPath), sl.Err(err))
			os.Exit(1)
		}
	}

	var locker lock.Locker = lock.Noop{}
	var redisLock *lock.RedisLock
	if cfg.Redis.Addr != "" {
		redisLock, err = lock.NewRedisLock(cfg.Redis.Addr)
		if err != nil {
			log.Error("Failed to init redis lock", sl.Err(err))
			os.Exit(1)
		}
		locker = redisLock
	} else {
		log.Warn("Redis address is empty, slot lock disabled")
	}

	sinks := []notify.Sink{notify.NewStoreSink(store)}
	var kafkaSink *notify.KafkaSink
	if brokers := notify.SplitBrokers(cfg.Kafka.Brokers); len(brokers) > 0 {
		kafkaSink = notify.NewKafkaSink(brokers, cfg.Kafka.Topic)
		sinks = append(sinks, kafkaSink)
		log.Info("Publishing appointment events", slog.String("topic", cfg.Kafka.Topic))
	}

	dispatcher := notify.NewDispatcher(log, cfg.Notify.QueueSize, sinks...)

	service := svc.NewService(store, locker, dispatcher, log, svc.Options{
		StoreTimeout:    cfg.Store.Timeout,
		LockTTL:         cfg.Redis.LockTTL,
		RejectPastDates: cfg.Booking.RejectPastDates,
	})

	handler := router.New(log, service, router.Options{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := dispatcher.Close(ctx); err != nil {
		log.Error("Notifications not fully delivered", sl.Err(err))
	} else {
		log.Info("Notification queue drained")
	}

	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			log.Error("Failed to close kafka writer", sl.Err(err))
		}
	}

	if err := store.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if redisLock != nil {
		if err := redisLock.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		} else {
			log.Info("Locker closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupStorage(cfg *config.Config) (storage, error) {
	if cfg.StoragePath == config.StorageMemory {
		return memory.New(), nil
	}

	pg, err := postgres.New(cfg.StoragePath)
	if err != nil {
		return nil, err
	}

	if !cfg.Store.SkipMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout*10)
		defer cancel()

		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
	}

	return pg, nil
}

func seedStorage(log *slog.Logger, store storage, cfg *config.Config) error {
	file, err := seed.Load(cfg.SeedPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout*10)
	defer cancel()

	n, err := seed.Apply(ctx, log, store, file)
	if err != nil {
		return err
	}

	log.Info("Storage seeded", slog.String("path", cfg.SeedPath), slog.Int("providers", n))
	return nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
