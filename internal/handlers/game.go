package handlers

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/repository"
)

type GameHandler struct {
	logger  *slog.Logger
	games   *repository.Games
	board   config.Board
	cookies *config.Cookies
	ws      *config.WebSocket
	newRand func() *rand.Rand
}

// NewGameHandler builds the round endpoints. newRand may be nil, in which
// case every round draws from a freshly seeded source.
func NewGameHandler(
	logger *slog.Logger,
	games *repository.Games,
	board config.Board,
	cookies *config.Cookies,
	ws *config.WebSocket,
	newRand func() *rand.Rand,
) *GameHandler {
	if newRand == nil {
		newRand = mines.NewRand
	}
	handler := &GameHandler{
		logger:  logger,
		games:   games,
		board:   board,
		cookies: cookies,
		ws:      ws,
		newRand: newRand,
	}
	return handler
}

func gameID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

func (g GameHandler) Settings(w http.ResponseWriter, r *http.Request) {
	sendJSONOrLog(w, g.logger, g.board)
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseNewGameDTO(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	params, err := dto.Params(g.board)
	if err != nil {
		sendError(w, g.logger, err)
		return
	}

	round, err := mines.New(params, g.newRand())
	if err != nil {
		sendError(w, g.logger, err)
		return
	}

	session, err := g.games.CreateGameSession(r.Context(), round)
	if err != nil {
		sendError(w, g.logger, err)
		return
	}

	if err := g.cookies.Issue(w, session.GameSessionId); err != nil {
		_ = g.games.DeleteGameSession(r.Context(), session.GameSessionId)
		sendError(w, g.logger, err)
		return
	}

	g.logger.Debug("created game session",
		slog.String("game_id", session.GameSessionId),
		slog.String("seed", params.Seed()),
	)
	sendStatusJSONOrLog(w, g.logger, http.StatusCreated, NewRoundDTO(session))
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	session, err := g.games.FetchGameSession(r.Context(), gameID(r))
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	sendJSONOrLog(w, g.logger, NewRoundDTO(session))
}

func (g GameHandler) update(
	w http.ResponseWriter, r *http.Request, move func(mines.Round) (mines.Round, error),
) {
	session, err := g.games.UpdateGameSession(r.Context(), gameID(r), move)
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	sendJSONOrLog(w, g.logger, NewRoundDTO(session))
}

func (g GameHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePoint(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	g.update(w, r, func(round mines.Round) (mines.Round, error) {
		return round.Reveal(p.Unpack())
	})
}

func (g GameHandler) Flag(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePoint(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	g.update(w, r, func(round mines.Round) (mines.Round, error) {
		return round.ToggleFlag(p.Unpack())
	})
}

// Reset deals a fresh round into the same session, optionally with new
// settings.
func (g GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseNewGameDTO(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	g.update(w, r, func(round mines.Round) (mines.Round, error) {
		return g.reset(round, dto)
	})
}

func (g GameHandler) reset(round mines.Round, dto NewGameDTO) (mines.Round, error) {
	if dto.Empty() {
		return round.Reset(g.newRand())
	}
	params := round.Params()
	if dto.Size != nil {
		params.Size = *dto.Size
	}
	if dto.MineCount != nil {
		params.MineCount = *dto.MineCount
	}
	params, err := g.board.Params(params.Size, params.MineCount)
	if err != nil {
		return round, fmt.Errorf("reset: %w", err)
	}
	return mines.New(params, g.newRand())
}
