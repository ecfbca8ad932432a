// Package server wires the CMS API together and runs it until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/auth"
	"github.com/upeosoft/cms/internal/server/config"
	"github.com/upeosoft/cms/internal/server/repositories/repomanager"
	"github.com/upeosoft/cms/internal/server/rest"
	"github.com/upeosoft/cms/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *rest.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	hasher, err := auth.NewHasher(c.BcryptCost)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenAuthority(c.SecretKey, c.TokenValidityDuration)
	if err != nil {
		return nil, err
	}

	us, err := services.NewUserService(db, rm, hasher, tokens, logger)
	if err != nil {
		return nil, fmt.Errorf("user service init error: %w", err)
	}

	router := rest.NewRouter(rest.RouterOptions{
		Users:       us,
		Content:     services.NewContentService(db, rm, logger),
		Contacts:    services.NewContactService(db, rm, logger),
		Comments:    services.NewCommentService(db, rm, logger),
		Guard:       rest.NewGuard(tokens, logger),
		DB:          db,
		Logger:      logger,
		CORSOrigins: c.CORSAllowedOrigins,
	})

	return &App{
		config: c,
		logger: logger,
		db:     db,
		server: rest.NewHTTPServer(c.EndpointAddrHTTP, router, logger, c.ShutdownTimeout),
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
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
