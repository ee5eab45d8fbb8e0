package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fleetgate/fleet-tracking-system/config"
	"github.com/fleetgate/fleet-tracking-system/internal/adapter/http/handler"
	"github.com/fleetgate/fleet-tracking-system/internal/adapter/http/middleware"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
)

const serviceName = "tracking-engine"

const serverIPAddress = "%s:%s"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health   *handler.Health
	tracking *handler.Tracking
	ws       *handler.WS
}

func New(
	cfg config.Config,
	trackingService handler.TrackingService,
	registry *realtime.Registry,
	verifier middleware.TokenVerifier,
	logger logger.Logger,
) (*API, error) {
	if verifier == nil {
		return nil, errors.New("token verifier is required")
	}

	routes := &handlers{
		health:   handler.NewHealth(serviceName, logger),
		tracking: handler.NewTracking(trackingService, logger),
		ws:       handler.NewWS(registry, trackingService, logger),
	}

	mid := middleware.NewMiddleware(verifier, logger)

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      mid,
		addr:   fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.HTTP.Port),
		cfg:    cfg,
		log:    logger,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	return api, nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Logging(a.m.Metrics(serviceName)(a.m.Auth(a.mux)))))
}
