package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/clientes-service/internal/config"
	"gitlab.com/dirk.krummacker/clientes-service/internal/logger"
	"gitlab.com/dirk.krummacker/clientes-service/internal/service"
	"gitlab.com/dirk.krummacker/clientes-service/internal/store"
)

// shutdownTimeout is how long in-flight requests may take to finish after a termination signal.
const shutdownTimeout = 10 * time.Second

// repository is what the process needs from a store: the service operations plus a way to
// release it on shutdown.
type repository interface {
	service.Repository
	io.Closer
}

// Usage example on the command line:
// > PORT=3000 DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 GIN_MODE=release GIN_LOGGING=OFF go run main.go
// > STORE=memory go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("could not load configuration")
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("could not open the customer store")
	}
	defer repo.Close()

	router := service.New(repo, log).SetupHttpRouter(cfg.RequestLogging())
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()
	log.Info().Str("addr", server.Addr).Str("store", cfg.Store).Msg("server running")

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			repo.Close()
			log.Fatal().Err(err).Str("addr", server.Addr).Msg("server stopped")
		}
		return
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openRepository connects the store selected by the configuration.
func openRepository(ctx context.Context, cfg *config.Config) (repository, error) {
	if cfg.Store == config.StoreMemory {
		return store.NewMemory(), nil
	}
	dsn := store.DSN(cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	sqlDB, err := store.CreateDatabase(ctx, dsn)
	if err != nil {
		return nil, err
	}
	s, err := store.New(sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return s, nil
}
