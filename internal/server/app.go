// Package server wires the passvault components together and runs the HTTP
// server until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/passvault/internal/buildinfo"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/config"
	"github.com/dmitrijs2005/passvault/internal/server/housekeeping"
	"github.com/dmitrijs2005/passvault/internal/server/keystore"
	"github.com/dmitrijs2005/passvault/internal/server/metrics"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/passvault/internal/server/services"

	vaulthttp "github.com/dmitrijs2005/passvault/internal/server/http"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config      *config.Config
	base        logging.Logger
	logger      logging.Logger
	db          *sql.DB
	revocations *services.RevocationService
	server      *http.Server
}

// NewApp builds every component from c. On error nothing is left open.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logOutput io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	base, err := logging.New(c.Logger, logOutput)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	key, err := keystore.Load(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("encryption key error: %w", err)
	}
	cipher, err := cryptox.NewCipher(key)
	common.WipeByteArray(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	db, m, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	vault := services.NewVaultService(db, m, cipher)
	revocations := services.NewRevocationService(db, m)

	router := vaulthttp.NewRouter(vaulthttp.Dependencies{
		Vault:       vault,
		Revocations: revocations,
		Users:       m.Users(db),
		SecretKey:   []byte(c.SecretKey),
		Metrics:     metrics.Handler(metrics.NewRegistry()),
		Logger:      base,
	})

	srv := &http.Server{
		Addr:              c.EndpointAddrHTTP,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{
		config:      c,
		base:        base,
		logger:      base.With("module", "app"),
		db:          db,
		revocations: revocations,
		server:      srv,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)

	if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) stopHTTPServer(ctx context.Context) {
	<-ctx.Done()
	app.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// drains in-flight requests and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "version", buildinfo.Version(), "build_date", buildinfo.Date())

	app.initSignalHandler(cancelFunc)

	prunerDone := housekeeping.StartRevocationPruner(ctx, app.revocations, app.config.RevocationPruneInterval, app.base)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.stopHTTPServer(ctx)
	}()

	wg.Wait()
	<-prunerDone

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")

	if s, ok := app.base.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
