package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/repository"
)

func testHandler() *GameHandler {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewGameHandler(logger, repository.NewGames(10, 0), config.DefaultBoard(),
		nil, nil, func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) })
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want command
		err  bool
	}{
		{in: "g", want: command{name: "g", args: []string{}}},
		{in: "o 1 2", want: command{name: "o", args: []string{"1", "2"}}},
		{in: "f  3 4", want: command{name: "f", args: []string{"3", "4"}}},
		{in: "n", want: command{name: "n", args: []string{}}},
		{in: "n 8 10", want: command{name: "n", args: []string{"8", "10"}}},
		{in: "", err: true},
		{in: "x", err: true},
		{in: "o 1", err: true},
		{in: "n 8", err: true},
		{in: "g 1", err: true},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			c, err := parseCommand(test.in)
			if test.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, c)
		})
	}
}

func TestApply(t *testing.T) {
	g := testHandler()
	round, err := mines.NewWithMines(5, []mines.Point{{Row: 0, Col: 0}, {Row: 4, Col: 4}})
	require.NoError(t, err)

	next, err := g.apply(round, command{name: "g"})
	require.NoError(t, err)
	assert.Equal(t, round, next)

	next, err = g.apply(round, command{name: "f", args: []string{"0", "0"}})
	require.NoError(t, err)
	assert.Equal(t, 1, next.FlagCount())

	next, err = g.apply(next, command{name: "o", args: []string{"0", "1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, next.RevealedCount())

	_, err = g.apply(next, command{name: "o", args: []string{"9", "9"}})
	assert.ErrorIs(t, err, mines.ErrIllegalInteraction)

	_, err = g.apply(next, command{name: "o", args: []string{"a", "1"}})
	assert.Error(t, err)

	fresh, err := g.apply(next, command{name: "n"})
	require.NoError(t, err)
	assert.Equal(t, next.Params(), fresh.Params())
	assert.Equal(t, 0, fresh.RevealedCount())

	resized, err := g.apply(next, command{name: "n", args: []string{"8", "10"}})
	require.NoError(t, err)
	assert.Equal(t, mines.GameParams{Size: 8, MineCount: 10}, resized.Params())

	_, err = g.apply(next, command{name: "n", args: []string{"30", "10"}})
	assert.ErrorIs(t, err, mines.ErrInvalidConfiguration)
}

func TestNewGameDTOParams(t *testing.T) {
	board := config.DefaultBoard()

	dto, err := ParseNewGameDTO(url.Values{})
	require.NoError(t, err)
	assert.True(t, dto.Empty())
	params, err := dto.Params(board)
	require.NoError(t, err)
	assert.Equal(t, board.Defaults(), params)

	dto, err = ParseNewGameDTO(url.Values{"size": {"6"}, "other": {"x"}})
	require.NoError(t, err)
	params, err = dto.Params(board)
	require.NoError(t, err)
	assert.Equal(t, mines.GameParams{Size: 6, MineCount: 20}, params)

	dto, err = ParseNewGameDTO(url.Values{"size": {"5"}, "mine_count": {"25"}})
	require.NoError(t, err)
	_, err = dto.Params(board)
	assert.ErrorIs(t, err, mines.ErrInvalidConfiguration)

	_, err = ParseNewGameDTO(url.Values{"size": {"big"}})
	assert.Error(t, err)
}

func TestParsePoint(t *testing.T) {
	p, err := ParsePoint(url.Values{"row": {"2"}, "col": {"3"}})
	require.NoError(t, err)
	assert.Equal(t, mines.Point{Row: 2, Col: 3}, p)

	_, err = ParsePoint(url.Values{"row": {"2"}})
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusFor(err))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", mines.ErrInvalidConfiguration), http.StatusBadRequest},
		{&mines.PositionError{Row: 9, Col: 9, Size: 5}, http.StatusBadRequest},
		{repository.ErrNotFound, http.StatusNotFound},
		{repository.ErrFull, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, statusFor(test.err), "error %v", test.err)
	}
}
