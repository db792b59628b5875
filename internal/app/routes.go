package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vancomm/minesweeper/internal/handlers"
	"github.com/vancomm/minesweeper/internal/middleware"
)

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(
		a.logger, a.games, a.cfg.Board, a.cookies, a.ws, a.newRand,
	)

	router := a.router
	if a.cfg.BasePath != "" {
		router = router.PathPrefix(a.cfg.BasePath).Subrouter()
	}

	router.Methods(http.MethodGet).Path("/status").HandlerFunc(handlers.Status)
	router.Methods(http.MethodGet).Path("/settings").HandlerFunc(game.Settings)
	router.Methods(http.MethodPost).Path("/game").HandlerFunc(game.NewGame)

	owned := router.PathPrefix("/game/{id}").Subrouter()
	owned.Use(mux.MiddlewareFunc(middleware.Owner(a.logger, "id")))
	owned.Methods(http.MethodGet).Path("").HandlerFunc(game.Fetch)
	owned.Methods(http.MethodGet).Path("/connect").HandlerFunc(game.ConnectWS)
	owned.Methods(http.MethodPost).Path("/reveal").HandlerFunc(game.Reveal)
	owned.Methods(http.MethodPost).Path("/flag").HandlerFunc(game.Flag)
	owned.Methods(http.MethodPost).Path("/reset").HandlerFunc(game.Reset)
}
