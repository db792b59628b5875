package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/handlers"
	"github.com/vancomm/minesweeper/internal/mines"
)

func testConfig() *config.App {
	return &config.App{
		Addr:  "127.0.0.1:0",
		Board: config.DefaultBoard(),
		Sessions: config.Sessions{
			TTL:           time.Minute,
			SweepInterval: time.Minute,
			Limit:         100,
		},
		Cookies: config.Cookie{SameSite: "lax"},
	}
}

type testServer struct {
	*httptest.Server
	app    *App
	client *http.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	jwt, err := config.NewJWTWithSecret([]byte(strings.Repeat("x", 32)), time.Hour)
	require.NoError(t, err)

	a, err := New(logger, testConfig(), jwt, WithRand(func() *rand.Rand {
		return rand.New(rand.NewPCG(1, 2))
	}))
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testServer{Server: srv, app: a, client: &http.Client{Jar: jar}}
}

func (s *testServer) do(t *testing.T, method, path string) (*http.Response, handlers.RoundDTO) {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, nil)
	require.NoError(t, err)
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var dto handlers.RoundDTO
	if resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	}
	return resp, dto
}

func TestStatusAndSettings(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.client.Get(s.URL + "/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = s.client.Get(s.URL + "/settings")
	require.NoError(t, err)
	defer resp.Body.Close()
	var board config.Board
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&board))
	assert.Equal(t, config.DefaultBoard(), board)
}

func TestGameFlow(t *testing.T) {
	s := newTestServer(t)

	resp, dto := s.do(t, http.MethodPost, "/game?size=5&mine_count=3")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, 5, dto.Size)
	assert.Equal(t, "5:3", dto.Seed)
	assert.Equal(t, mines.InProgress, dto.Phase)
	assert.Len(t, dto.Cells, 25)
	id := dto.GameID
	require.NotEmpty(t, id)

	resp, dto = s.do(t, http.MethodGet, "/game/"+id)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uint64(0), dto.Version)

	resp, dto = s.do(t, http.MethodPost, "/game/"+id+"/flag?row=4&col=4")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uint64(1), dto.Version)
	assert.Equal(t, mines.Flagged, dto.Cells[24])
	assert.Equal(t, 2, dto.MinesLeft)

	resp, dto = s.do(t, http.MethodPost, "/game/"+id+"/reveal?row=0&col=0")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uint64(2), dto.Version)
	assert.NotEqual(t, mines.Hidden, dto.Cells[0])

	resp, _ = s.do(t, http.MethodPost, "/game/"+id+"/reveal?row=5&col=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/game/"+id+"/reveal?row=1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, dto = s.do(t, http.MethodPost, "/game/"+id+"/reset")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, dto.GameID)
	assert.Equal(t, mines.InProgress, dto.Phase)
	assert.Equal(t, 3, dto.MinesLeft)
	for _, c := range dto.Cells {
		assert.Equal(t, mines.Hidden, c)
	}

	resp, dto = s.do(t, http.MethodPost, "/game/"+id+"/reset?size=8&mine_count=10")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "8:10", dto.Seed)
	assert.Len(t, dto.Cells, 64)

	resp, _ = s.do(t, http.MethodPost, "/game/"+id+"/reset?size=40")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewGameValidation(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{"size=4", "size=21", "size=5&mine_count=25", "mine_count=0", "size=x"} {
		resp, _ := s.do(t, http.MethodPost, "/game?"+query)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
	}

	resp, dto := s.do(t, http.MethodPost, "/game")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "10:20", dto.Seed)
}

func TestForeignGameIsForbidden(t *testing.T) {
	owner := newTestServer(t)
	_, dto := owner.do(t, http.MethodPost, "/game")

	stranger := &http.Client{}
	resp, err := stranger.Get(owner.URL + "/game/" + dto.GameID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = stranger.Post(owner.URL+"/game/"+dto.GameID+"/reveal?row=0&col=0", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEvictedGameIsNotFound(t *testing.T) {
	s := newTestServer(t)
	_, dto := s.do(t, http.MethodPost, "/game")

	require.NoError(t, s.app.games.DeleteGameSession(context.Background(), dto.GameID))

	resp, _ := s.do(t, http.MethodGet, "/game/"+dto.GameID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketCommands(t *testing.T) {
	s := newTestServer(t)
	_, created := s.do(t, http.MethodPost, "/game?size=5&mine_count=3")

	dialer := websocket.Dialer{Jar: s.client.Jar}
	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/game/" + created.GameID + "/connect"
	conn, resp, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	send := func(frame string) map[string]any {
		t.Helper()
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		var reply map[string]any
		require.NoError(t, conn.ReadJSON(&reply))
		return reply
	}

	reply := send("g")
	assert.Equal(t, created.GameID, reply["game_id"])
	assert.Equal(t, float64(0), reply["version"])

	reply = send("f 4 4\nf 4 3")
	assert.Equal(t, float64(2), reply["version"])
	assert.Equal(t, float64(1), reply["mines_left"])

	reply = send("o 9 9")
	assert.Contains(t, reply["error"], "outside")

	reply = send("z")
	assert.Contains(t, reply["error"], "unknown command")

	reply = send("n 6 5")
	assert.Equal(t, "6:5", reply["seed"])
	assert.Equal(t, "in_progress", reply["phase"])

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
}

func TestStartStopsWithContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	jwt, err := config.NewEphemeralJWT(time.Hour)
	require.NoError(t, err)
	a, err := New(logger, testConfig(), jwt)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			assert.True(t, errors.Is(err, context.Canceled), "unexpected error %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
