package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fleetgate/fleet-tracking-system/config"
	"github.com/fleetgate/fleet-tracking-system/internal/adapter/fcm"
	"github.com/fleetgate/fleet-tracking-system/internal/adapter/http/server"
	"github.com/fleetgate/fleet-tracking-system/internal/adapter/locationiq"
	repo "github.com/fleetgate/fleet-tracking-system/internal/adapter/postgres"
	rabbitAdapter "github.com/fleetgate/fleet-tracking-system/internal/adapter/rabbit"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/fleetgate/fleet-tracking-system/internal/service/auth"
	"github.com/fleetgate/fleet-tracking-system/internal/service/autogate"
	"github.com/fleetgate/fleet-tracking-system/internal/service/eta"
	"github.com/fleetgate/fleet-tracking-system/internal/service/proximity"
	"github.com/fleetgate/fleet-tracking-system/internal/service/tracking"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	"github.com/fleetgate/fleet-tracking-system/pkg/postgres"
	"github.com/fleetgate/fleet-tracking-system/pkg/rabbit"
	"github.com/fleetgate/fleet-tracking-system/pkg/trm"
)

const serviceName = "tracking-engine"

type App struct {
	postgresDB *postgres.PostgreDB
	rabbitMQ   *rabbit.RabbitMQ
	registry   *realtime.Registry
	httpServer *server.API

	cfg config.Config
	log logger.Logger
}

func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	rabbitMQ, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "Failed to setup rabbitmq", err)
		return nil, err
	}

	producer, err := rabbitAdapter.NewNotificationProducer(rabbitMQ)
	if err != nil {
		log.Error(ctx, "Failed to setup notification producer", err)
		return nil, err
	}

	notifier, err := buildNotifier(ctx, cfg, producer, log)
	if err != nil {
		log.Error(ctx, "Failed to setup notifier", err)
		return nil, err
	}

	// Repositories
	pool := postgresDB.Pool
	trackingRepo := repo.NewTrackingRepo(pool)
	sampleRepo := repo.NewSampleRepo(pool)
	jobRepo := repo.NewJobRepo(pool)
	driverRepo := repo.NewDriverRepo(pool)
	waypointRepo := repo.NewWaypointRepo(pool)
	geofenceRepo := repo.NewGeofenceRepo(pool)
	etaRepo := repo.NewETARepo(pool, jobRepo)

	txManager := trm.New(pool)

	registry := realtime.NewRegistry(serviceName, log)
	registry.SetAuthorizer(newTopicAuthorizer(jobRepo))

	// Domain services
	autogateEngine := autogate.New(jobRepo, notifier, registry, txManager, log)
	proximityEngine := proximity.New(waypointRepo, geofenceRepo, autogateEngine, registry, log)

	var provider eta.Provider
	if cfg.ETA.LocationIQAPIKey != "" {
		provider = locationiq.New(cfg.ETA.LocationIQAPIKey)
	}
	estimator := eta.New(etaRepo, provider, eta.RushWindows{
		MorningStart: cfg.ETA.RushMorningStart,
		MorningEnd:   cfg.ETA.RushMorningEnd,
		EveningStart: cfg.ETA.RushEveningStart,
		EveningEnd:   cfg.ETA.RushEveningEnd,
	}, log)

	trackingService := tracking.New(
		trackingRepo,
		sampleRepo,
		jobRepo,
		driverRepo,
		proximityEngine,
		estimator,
		registry,
		txManager,
		log,
	)
	registry.SetDisconnectHandler(trackingService.HandleDriverDisconnect)

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	httpServer, err := server.New(cfg, trackingService, registry, verifier, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		return nil, err
	}

	return &App{
		postgresDB: postgresDB,
		rabbitMQ:   rabbitMQ,
		registry:   registry,
		httpServer: httpServer,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.httpServer.Run(ctx, errCh)
	defer func() {
		a.close(ctx)
		a.log.Info(ctx, "tracking engine closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	a.log.Info(ctx, "tracking engine started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (a *App) close(ctx context.Context) {
	if a.registry != nil {
		a.registry.Close(ctx)
	}

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close rabbitmq", "error", err.Error())
		}
	}

	if a.postgresDB != nil && a.postgresDB.Pool != nil {
		a.postgresDB.Pool.Close()
	}
}

// buildNotifier always publishes to the broker and additionally pushes
// through FCM when credentials are configured.
func buildNotifier(ctx context.Context, cfg config.Config, producer autogate.Notifier, log logger.Logger) (autogate.Notifier, error) {
	switch {
	case cfg.FCM.CredentialsFile != "":
		pusher, err := fcm.New(ctx, cfg.FCM.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return multiNotifier{producer, pusher}, nil

	case cfg.FCM.CredentialsBase64 != "":
		pusher, err := fcm.NewFromBase64(ctx, cfg.FCM.CredentialsBase64)
		if err != nil {
			return nil, err
		}
		return multiNotifier{producer, pusher}, nil

	default:
		log.Info(ctx, "FCM credentials not configured, push notifications disabled")
		return producer, nil
	}
}
