package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	logger  *slog.Logger
	cfg     *config.App
	router  *mux.Router
	games   *repository.Games
	cookies *config.Cookies
	ws      *config.WebSocket
	newRand func() *rand.Rand
}

type Option func(*App)

// WithRand replaces the per-round random source, mostly for tests.
func WithRand(newRand func() *rand.Rand) Option {
	return func(a *App) {
		a.newRand = newRand
	}
}

func New(logger *slog.Logger, cfg *config.App, jwt *config.JWT, opts ...Option) (*App, error) {
	cookies, err := config.NewCookies(cfg.Cookies, jwt)
	if err != nil {
		return nil, fmt.Errorf("unable to configure cookies: %w", err)
	}

	app := &App{
		logger:  logger,
		cfg:     cfg,
		router:  mux.NewRouter(),
		games:   repository.NewGames(cfg.Sessions.Limit, cfg.Sessions.TTL),
		cookies: cookies,
		ws:      config.NewWebSocket(cfg.Development),
	}
	for _, opt := range opts {
		opt(app)
	}

	app.loadRoutes()

	return app, nil
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Logging(a.logger),
		middleware.Cors(a.cfg.Development, a.cfg.Cors.AllowedOrigins...),
		middleware.Session(a.logger, a.cookies),
	)
}

// Start serves until ctx is cancelled or the listener fails, then shuts the
// server down and stops the session janitor.
func (a *App) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:    a.cfg.Addr,
		Handler: a.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening",
			slog.String("addr", a.cfg.Addr),
			slog.String("base_path", a.cfg.BasePath),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return server.Shutdown(sCtx)
	})
	g.Go(func() error {
		return a.games.RunJanitor(gCtx, a.logger, a.cfg.Sessions.SweepInterval)
	})

	return g.Wait()
}
