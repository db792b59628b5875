package handlers

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/repository"
)

const maxFrameSize = 4096

// Maps known commands to the argument counts they accept.
var commandNargs = map[string][]int{
	"g": {0},
	"o": {2},
	"f": {2},
	"n": {0, 2},
}

func iterBySep(s string, sep string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, sep)
			if !yield(i, piece) {
				return
			}
			i += 1
		}
	}
}

func parseInts(twoStrings []string) (a int, b int, err error) {
	if a, err = strconv.Atoi(twoStrings[0]); err != nil {
		err = fmt.Errorf("first argument must be an int")
		return
	}
	if b, err = strconv.Atoi(twoStrings[1]); err != nil {
		err = fmt.Errorf("second argument must be an int")
		return
	}
	return
}

type command struct {
	name string
	args []string
}

func parseCommand(c string) (command, error) {
	parts := strings.Fields(c)
	if len(parts) == 0 {
		return command{}, fmt.Errorf("empty command")
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return command{}, fmt.Errorf("unknown command %q", parts[0])
	}
	for _, n := range nargs {
		if n == len(parts)-1 {
			return command{name: parts[0], args: parts[1:]}, nil
		}
	}
	return command{}, fmt.Errorf("invalid number of arguments for %q", parts[0])
}

// apply runs a parsed command against round. "g" is a read and leaves the
// round untouched.
func (g GameHandler) apply(round mines.Round, c command) (mines.Round, error) {
	switch c.name {
	case "g":
		return round, nil
	case "o", "f":
		row, col, err := parseInts(c.args)
		if err != nil {
			return round, err
		}
		if c.name == "o" {
			return round.Reveal(row, col)
		}
		return round.ToggleFlag(row, col)
	case "n":
		dto := NewGameDTO{}
		if len(c.args) == 2 {
			size, mineCount, err := parseInts(c.args)
			if err != nil {
				return round, err
			}
			dto = NewGameDTO{Size: &size, MineCount: &mineCount}
		}
		return g.reset(round, dto)
	}
	return round, fmt.Errorf("invalid command")
}

// execute runs every newline separated command of a frame in order and
// stops at the first failure.
func (g GameHandler) execute(r *http.Request, id string, frame string) (*repository.GameSession, error) {
	var (
		session *repository.GameSession
		err     error
	)
	for _, line := range iterBySep(frame, "\n") {
		c, perr := parseCommand(line)
		if perr != nil {
			return nil, perr
		}
		session, err = g.games.UpdateGameSession(r.Context(), id,
			func(round mines.Round) (mines.Round, error) {
				return g.apply(round, c)
			})
		if err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	if _, err := g.games.FetchGameSession(r.Context(), id); err != nil {
		sendError(w, g.logger, err)
		return
	}

	c, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer c.Close()
	c.SetReadLimit(maxFrameSize)

	logger := g.logger.With(slog.String("game_id", id))
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("abnormal ws break", slog.Any("error", err))
			}
			break
		}
		if mt != websocket.TextMessage {
			logger.Debug("closing on non-text frame", slog.Int("type", mt))
			break
		}
		text := strings.TrimSpace(string(message))
		logger.Debug(fmt.Sprintf("\t> %s", text))

		session, err := g.execute(r, id, text)
		if err != nil {
			logger.Debug("unable to process command", slog.Any("error", err))
			if werr := c.WriteJSON(wrapError(err)); werr != nil {
				logger.Error("unable to write json", slog.Any("error", werr))
				break
			}
			if errors.Is(err, repository.ErrNotFound) {
				break
			}
			continue
		}

		if err := c.WriteJSON(NewRoundDTO(session)); err != nil {
			logger.Error("unable to write json", slog.Any("error", err))
			break
		}
		logger.Debug("\t< <round data>", slog.Uint64("version", session.Round.Version()))
	}
}
