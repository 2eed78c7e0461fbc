package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/peachsweeper/internal/config"
	"github.com/vancomm/peachsweeper/internal/database"
	"github.com/vancomm/peachsweeper/internal/game"
	"github.com/vancomm/peachsweeper/internal/hint"
	"github.com/vancomm/peachsweeper/internal/middleware"
	"github.com/vancomm/peachsweeper/internal/repository"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	logger       *logrus.Logger
	router       *http.ServeMux
	migrations   fs.FS
	store        repository.Store
	sessions     *config.Sessions
	difficulties *config.Difficulties
	ws           *config.WebSocket
	hints        *hint.Service
	closers      []func()
}

func New(logger *logrus.Logger, migrations fs.FS) *App {
	game.Log = logger

	app := &App{
		logger:     logger,
		router:     http.NewServeMux(),
		migrations: migrations,
	}

	return app
}

// openStore connects to postgres when it is configured and falls back to
// process memory otherwise.
func (a *App) openStore(ctx context.Context) (repository.Store, error) {
	if _, err := config.DbURL(); errors.Is(err, config.ErrNoDatabase) {
		a.logger.Warn("no database configured, game sessions live in memory")
		return repository.NewMemory(), nil
	}

	pool, migrator, err := database.ConnectAndMigrate(ctx, a.migrations)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to db: %w", err)
	}
	a.closers = append(a.closers, pool.Close, func() { migrator.Close() })

	if version, dirty, err := migrator.Version(); err == nil {
		a.logger.WithFields(logrus.Fields{
			"version": version,
			"dirty":   dirty,
		}).Info("database migrated")
	}

	return repository.New(pool), nil
}

func (a *App) newHintService(ctx context.Context) (*hint.Service, error) {
	cfg, err := config.NewHint()
	if err != nil {
		return nil, err
	}

	var advisor hint.Advisor
	if cfg.Enabled() {
		gemini, err := hint.NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("unable to create hint advisor: %w", err)
		}
		advisor = gemini
		a.logger.WithField("model", cfg.Model).Info("hint advisor enabled")
	} else {
		a.logger.Warn("no API key configured, hints are disabled")
	}

	return hint.NewService(a.logger, advisor, cfg.Timeout, cfg.MaxInflight), nil
}

// setup builds every dependency and registers the routes.
func (a *App) setup(ctx context.Context) error {
	var err error

	if a.store, err = a.openStore(ctx); err != nil {
		return err
	}
	if a.sessions, err = config.NewSessions(); err != nil {
		return err
	}
	if a.difficulties, err = config.NewDifficulties(); err != nil {
		return err
	}
	if a.ws, err = config.NewWebSocket(); err != nil {
		return err
	}
	if a.hints, err = a.newHintService(ctx); err != nil {
		return err
	}

	a.loadRoutes()
	return nil
}

func (a *App) handler() http.Handler {
	var h http.Handler = a.router
	if base := config.BasePath(); base != "" {
		h = http.StripPrefix(base, h)
	}
	return middleware.Wrap(
		h,
		middleware.Auth(a.logger, a.sessions),
		middleware.Cors(config.AllowedOrigins()),
		middleware.Logging(a.logger),
	)
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Start serves until ctx is done, then shuts the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.setup(ctx); err != nil {
		a.close()
		return err
	}
	defer a.close()

	addr := config.Addr()
	server := &http.Server{
		Addr:              addr,
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.WithField("addr", addr).Info("server listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
