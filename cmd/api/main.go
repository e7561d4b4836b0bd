package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-ticket-booking/internal/api/handler"
	"github.com/sanosuguru/go-event-ticket-booking/internal/api/router"
	"github.com/sanosuguru/go-event-ticket-booking/internal/application"
	"github.com/sanosuguru/go-event-ticket-booking/internal/config"
	redisinfra "github.com/sanosuguru/go-event-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-event-ticket-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-event-ticket-booking/internal/worker"
)

func main() {
	configPath := pflag.String("config", os.Getenv("CONFIG_FILE"), "YAML設定ファイルのパス（環境変数が優先）")
	skipMigrations := pflag.Bool("skip-migrations", false, "起動時のマイグレーションを行わない")
	pflag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定読み込みエラー: %v\n", err)
		os.Exit(1)
	}
	if *skipMigrations {
		cfg.Database.AutoMigrate = false
	}

	logger.Set(logger.NewLogger(cfg.Env))
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Fatal("サーバー起動に失敗しました", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load(), nil
	}
	return config.LoadFile(path)
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.close()

	pingers := map[string]handler.Pinger{"database": store.pinger}

	// Redis（キャッシュと分散ロック）は任意
	var (
		cache  application.StatusCache
		locker worker.Locker
	)
	if cfg.Redis.Enabled {
		client := redisinfra.NewClient(&cfg.Redis)
		defer client.Close()

		redisPinger := redisinfra.NewPinger(client)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := redisPinger.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("Redis接続エラー: %w", err)
		}
		pingers["redis"] = redisPinger
		cache = redisinfra.NewEventStatusCache(client, cfg.Redis.CacheTTL)
		locker = redisinfra.NewLockManager(client)
		logger.Info("Redisに接続しました", zap.String("addr", cfg.Redis.Addr()))
	}

	m := metrics.Init()

	bookingService := application.NewBookingService(store.tm, store.events, store.bookings, store.waiting,
		application.WithStatusCache(cache),
		application.WithMetrics(m),
		application.WithMaxAttempts(cfg.Booking.MaxAttempts),
	)
	eventService := application.NewEventService(store.events, store.waiting, cache)
	userService := application.NewUserService(store.users)

	e := router.New(cfg, router.Handlers{
		Booking: handler.NewBookingHandler(bookingService),
		Event:   handler.NewEventHandler(eventService),
		User:    handler.NewUserHandler(userService),
		Health:  handler.NewHealthHandler(pingers),
	}, m, prometheus.DefaultGatherer)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	var reconciler *worker.WaitlistReconciler
	if cfg.Booking.ReconcileInterval > 0 {
		reconciler = worker.NewWaitlistReconciler(bookingService, locker, m, cfg.Booking.ReconcileInterval)
		go reconciler.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("サーバーを起動します",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.Env),
			zap.String("storage", cfg.Database.Driver),
		)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("サーバー起動エラー: %w", err)
	case <-ctx.Done():
	}

	logger.Info("サーバーをシャットダウンしています...")
	if reconciler != nil {
		reconciler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーシャットダウンエラー: %w", err)
	}

	logger.Info("サーバーが正常にシャットダウンしました")
	return nil
}
