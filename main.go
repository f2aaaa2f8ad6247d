// @title User Service API
// @version 1.0.0
// @description User accounts with bearer-token authentication.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/usersvc/backend/internal/config"
	"github.com/usersvc/backend/internal/db"
	"github.com/usersvc/backend/internal/handler"
	"github.com/usersvc/backend/internal/logging"
	"github.com/usersvc/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New(config.LogConfig{Level: "info", Format: logging.FormatJSON}, handler.ServiceName)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logging.New(cfg.Log, handler.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens, err := service.NewTokenService(cfg.Auth)
	if err != nil {
		return err
	}
	hasher := service.NewPasswordHasher(cfg.Hash)

	router := handler.NewRouter(handler.RouterDeps{
		Accounts:       service.NewAccountService(store, hasher, tokens, log),
		Auth:           service.NewAuthService(tokens, store),
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("shutdown complete")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (service.UserStore, func(), error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("using in-memory user store; data is lost on restart")
		return db.NewMemory(), func() {}, nil
	}

	log.Info().Msg("initializing database")
	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}

	pg := db.NewPostgres(pool)
	if err := pg.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pg, pool.Close, nil
}
