package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/auth-service/config"
	httpserver "github.com/Temutjin2k/auth-service/internal/adapter/http/server"
	"github.com/Temutjin2k/auth-service/internal/adapter/memory"
	"github.com/Temutjin2k/auth-service/internal/adapter/postgres"
	rabbitadapter "github.com/Temutjin2k/auth-service/internal/adapter/rabbit"
	"github.com/Temutjin2k/auth-service/internal/adapter/sqlite"
	"github.com/Temutjin2k/auth-service/internal/domain/types"
	"github.com/Temutjin2k/auth-service/internal/service/auth"
	"github.com/Temutjin2k/auth-service/pkg/logger"
	wrap "github.com/Temutjin2k/auth-service/pkg/logger/wrapper"
	"github.com/Temutjin2k/auth-service/pkg/metrics"
	"github.com/Temutjin2k/auth-service/pkg/passhash"
	postgresclient "github.com/Temutjin2k/auth-service/pkg/postgres"
	"github.com/Temutjin2k/auth-service/pkg/rabbit"
)

var ErrUnknownStore = errors.New("unknown store driver")

const closeTimeout = 10 * time.Second

type App struct {
	httpServer *httpserver.API
	rabbit     *rabbit.RabbitMQ
	closeStore func() error

	cfg config.Config
	log logger.Logger
}

// NewApplication opens the credential store and builds the auth service and
// its HTTP server.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	app := &App{
		cfg: cfg,
		log: log,
	}

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	app.closeStore = closeStore

	hasher := passhash.New(cfg.Auth.BcryptCost,
		passhash.WithLogger(log),
		passhash.WithObserver(metrics.ObservePasswordHash),
	)

	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret:     cfg.Auth.JWTSecret,
		Issuer:     cfg.Auth.Issuer,
		DefaultTTL: cfg.Auth.AccessTokenTTL,
		Leeway:     cfg.Auth.TokenLeeway,
	}, log)

	if cfg.Auth.UsesDefaultSecret() {
		log.Warn(wrap.WithAction(ctx, types.ActionDefaultSecretInUse), "tokens are signed with the default secret, set AUTH_JWT_SECRET")
	}

	var opts []auth.Option
	if cfg.RabbitMQ.Enabled {
		client, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
		if err != nil {
			app.close(ctx)
			return nil, err
		}
		app.rabbit = client

		publisher, err := rabbitadapter.NewAuditPublisher(client, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			app.close(ctx)
			return nil, err
		}
		opts = append(opts, auth.WithAuditPublisher(publisher))
	}

	authSvc := auth.NewAuthService(store, hasher, tokens, log, opts...)

	server, err := httpserver.New(cfg, authSvc, log)
	if err != nil {
		app.close(ctx)
		return nil, err
	}
	app.httpServer = server

	return app, nil
}

func openStore(ctx context.Context, cfg config.Config, log logger.Logger) (auth.CredentialStore, func() error, error) {
	ctx = wrap.WithAction(ctx, types.ActionStoreOpened)

	switch cfg.Store.Driver {
	case types.SQLiteStore:
		db, err := sqlite.NewDB(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "credential store opened", "driver", cfg.Store.Driver.String(), "path", cfg.Store.SQLitePath)
		return sqlite.NewUserRepo(db), db.Close, nil

	case types.PostgresStore:
		if err := postgres.RunMigrations(cfg.Database.GetDSN()); err != nil {
			return nil, nil, err
		}
		db, err := postgresclient.New(ctx, cfg.Database, postgresclient.WithPoolLimits(
			cfg.Database.MaxConns,
			cfg.Database.MinConns,
			cfg.Database.MaxConnLifetime,
			cfg.Database.MaxConnIdleTime,
		))
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "credential store opened", "driver", cfg.Store.Driver.String(), "host", cfg.Database.Host)
		return postgres.NewUserRepo(db.Pool), func() error { db.Close(); return nil }, nil

	case types.MemoryStore:
		repo := memory.NewUserRepo()
		log.Warn(ctx, "credential store is in memory, accounts are lost on restart", "driver", cfg.Store.Driver.String())
		return repo, repo.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Store.Driver)
	}
}

// Run serves HTTP until the server fails or SIGINT/SIGTERM arrives, then
// shuts everything down.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		a.close(ctx)
		a.log.Info(ctx, "auth service closed")
	}()

	errCh := make(chan error, 1)
	a.httpServer.Run(ctx, errCh)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	a.log.Info(ctx, "service started")
	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (a *App) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Error(ctx, "failed to shutdown HTTP server", err)
		}
	}

	if a.rabbit != nil {
		if err := a.rabbit.Close(ctx); err != nil {
			a.log.Error(ctx, "failed to close rabbitMQ", err)
		}
	}

	if a.closeStore != nil {
		if err := a.closeStore(); err != nil {
			a.log.Error(ctx, "failed to close credential store", err)
			return
		}
		a.log.Info(wrap.WithAction(ctx, types.ActionStoreClosed), "credential store closed")
	}
}
