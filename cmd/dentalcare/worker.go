package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/dentalcare/booking-api/internal/handler/health"
	prometheush "github.com/dentalcare/booking-api/internal/handler/prometheus"
	"github.com/dentalcare/booking-api/internal/middleware"
	"github.com/dentalcare/booking-api/internal/notification"
	cleanup "github.com/dentalcare/booking-api/internal/worker"
	"github.com/dentalcare/booking-api/pkg/worker"
)

func workerCmd(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Publish outbox events to Redis and send patient notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(*configPath, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8081", "Listen address for health and metrics")
	return cmd
}

func runWorker(configPath, addr string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	cfg := a.cfg
	log := a.log.ZL
	if cfg.Store.Driver != "postgres" {
		return fmt.Errorf("worker needs store.driver=postgres, got %q", cfg.Store.Driver)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := a.openStores(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	broker, err := a.openRedis(ctx)
	if err != nil {
		return err
	}
	defer broker.Close()

	processor := worker.NewOutboxProcessor(st.outbox, broker, worker.OutboxProcessorConfig{
		Channel:       cfg.Redis.Channel,
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, a.log, a.metrics)
	cleaner := cleanup.NewOutboxCleanupWorker(st.outbox, cfg.Outbox.Retention, cfg.Outbox.CleanupInterval, a.metrics, log)
	notifier := notification.NewNotifier(broker, cfg.Redis.Channel, notification.NewSender(cfg.SMTP, log), a.metrics, log)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleaner.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := notifier.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("notifier stopped")
			stop()
		}
	}()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.New()
	engine.Use(middleware.Recovery())
	health.NewHandler(map[string]health.Pinger{
		"store": st.documents,
		"redis": broker,
	}).RegisterRoutes(engine.Group(""))
	engine.GET("/metrics", prometheush.New(a.registry).Handler())

	srv := &http.Server{Addr: addr, Handler: engine}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server failed")
		}
	}()

	log.Info().Str("addr", addr).Str("channel", cfg.Redis.Channel).Msg("worker started")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	wg.Wait()

	log.Info().Msg("worker exited properly")
	return nil
}
