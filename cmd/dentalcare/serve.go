package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	appointmenth "github.com/dentalcare/booking-api/internal/handler/appointment"
	authh "github.com/dentalcare/booking-api/internal/handler/auth"
	"github.com/dentalcare/booking-api/internal/handler/health"
	patienth "github.com/dentalcare/booking-api/internal/handler/patient"
	prometheush "github.com/dentalcare/booking-api/internal/handler/prometheus"
	rosterh "github.com/dentalcare/booking-api/internal/handler/roster"
	"github.com/dentalcare/booking-api/internal/middleware"
	"github.com/dentalcare/booking-api/internal/notification"
	"github.com/dentalcare/booking-api/internal/router"
	"github.com/dentalcare/booking-api/internal/service/appointment"
	"github.com/dentalcare/booking-api/internal/service/auth"
	"github.com/dentalcare/booking-api/internal/service/event"
	"github.com/dentalcare/booking-api/internal/service/patient"
	"github.com/dentalcare/booking-api/internal/service/roster"
	"github.com/dentalcare/booking-api/internal/validation"
	jwtauth "github.com/dentalcare/booking-api/pkg/auth"
	"github.com/dentalcare/booking-api/pkg/messaging"
	"github.com/dentalcare/booking-api/pkg/security"
	"github.com/dentalcare/booking-api/pkg/tracer"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(*configPath)
		},
	}
}

func runServer(configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := a.log.ZL

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer tp.Shutdown(context.Background())

	st, err := a.openStores(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	// Postgres writes events to the outbox for the worker. The memory store
	// has no outbox, so events go straight to an in-process broker and the
	// notifier runs here.
	var emitter event.Emitter
	if st.outbox != nil {
		emitter = event.NewOutboxEmitter(st.outbox)
	} else {
		broker := messaging.NewInMemoryBroker()
		defer broker.Close()
		emitter = event.NewBrokerEmitter(broker, cfg.Redis.Channel)

		sender := notification.NewSender(cfg.SMTP, log)
		notifier := notification.NewNotifier(broker, cfg.Redis.Channel, sender, a.metrics, log)
		go func() {
			if err := notifier.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("notifier stopped")
			}
		}()
	}

	doctors := roster.New(cfg.Roster.Doctors)
	v := validation.New(validation.WithRoster(doctors))

	summaryCache := cache.New(cfg.Cache.SummaryTTL, cfg.Cache.CleanupInterval)
	appointmentSvc := appointment.NewService(st.documents, v, emitter, summaryCache, a.metrics)
	patientSvc := patient.NewService(st.documents, v, emitter)
	authSvc := auth.NewService(
		security.NewBcryptHasher(0),
		cfg.Admin.PasskeyHash,
		jwtauth.NewJWTManager(cfg.JWT),
	)

	routerCfg := router.RouterConfig{
		Mode:           cfg.Server.Mode,
		ServiceName:    cfg.Tracing.ServiceName,
		Tracing:        cfg.Tracing.Enabled,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     middleware.CORSFromConfig(cfg.CORS),
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerCfg.RateBurst = cfg.RateLimit.Burst
	}

	r := router.NewRouter(middleware.NewAuthMiddleware(authSvc), router.Handlers{
		Health:      health.NewHandler(map[string]health.Pinger{"store": st.documents}),
		Roster:      rosterh.NewHandler(doctors),
		Patient:     patienth.NewHandler(patientSvc),
		Auth:        authh.NewHandler(authSvc),
		Appointment: appointmenth.NewHandler(appointmentSvc),
		Metrics:     prometheush.New(a.registry),
	}, a.metrics, routerCfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
