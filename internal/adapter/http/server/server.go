package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Temutjin2k/auth-service/config"
	"github.com/Temutjin2k/auth-service/internal/adapter/http/handler"
	"github.com/Temutjin2k/auth-service/internal/adapter/http/middleware"
	"github.com/Temutjin2k/auth-service/pkg/logger"
	wrap "github.com/Temutjin2k/auth-service/pkg/logger/wrapper"
)

// AuthService is everything the HTTP boundary needs from the auth service.
type AuthService interface {
	handler.AuthService
	middleware.AuthService
}

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
	auth   *handler.Auth
	health *handler.Health
}

func New(cfg config.Config, authService AuthService, logger logger.Logger) (*API, error) {
	if authService == nil {
		return nil, errors.New("auth service is required")
	}

	routes := &handlers{
		auth:   handler.NewAuth(authService, logger),
		health: handler.NewHealth(cfg.ServiceName, cfg.Store.Driver.String(), logger),
	}

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      middleware.NewMiddleware(authService, cfg.ServiceName, logger),
		addr:   cfg.HTTP.Addr(),
		cfg:    cfg,
		log:    logger,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	return api, nil
}

// Handler returns the routed mux wrapped in the middleware chain.
func (a *API) Handler() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Logging(a.m.Metrics(a.mux))))
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
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
