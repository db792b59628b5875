package repository

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper/internal/mines"
)

func newRound(t *testing.T) mines.Round {
	t.Helper()
	round, err := mines.New(
		mines.GameParams{Size: 5, MineCount: 3}, rand.New(rand.NewPCG(1, 2)),
	)
	require.NoError(t, err)
	return round
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestFetchMissing(t *testing.T) {
	g := NewGames(10, time.Minute)
	_, err := g.FetchGameSession(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = g.UpdateGameSession(context.Background(), "nope",
		func(r mines.Round) (mines.Round, error) { return r, nil })
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, g.DeleteGameSession(context.Background(), "nope"), ErrNotFound)
}

func TestCreateAndFetch(t *testing.T) {
	ctx := context.Background()
	g := NewGames(10, time.Minute)
	round := newRound(t)

	created, err := g.CreateGameSession(ctx, round)
	require.NoError(t, err)
	assert.NotEmpty(t, created.GameSessionId)

	fetched, err := g.FetchGameSession(ctx, created.GameSessionId)
	require.NoError(t, err)
	assert.Equal(t, round, fetched.Round)
	assert.Equal(t, 1, g.Len())

	require.NoError(t, g.DeleteGameSession(ctx, created.GameSessionId))
	_, err = g.FetchGameSession(ctx, created.GameSessionId)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRespectsLimit(t *testing.T) {
	ctx := context.Background()
	g := NewGames(2, time.Minute)
	for range 2 {
		_, err := g.CreateGameSession(ctx, newRound(t))
		require.NoError(t, err)
	}
	_, err := g.CreateGameSession(ctx, newRound(t))
	assert.ErrorIs(t, err, ErrFull)
}

func TestUpdateIsSerialised(t *testing.T) {
	ctx := context.Background()
	g := NewGames(10, time.Minute)
	created, err := g.CreateGameSession(ctx, newRound(t))
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.UpdateGameSession(ctx, created.GameSessionId,
				func(r mines.Round) (mines.Round, error) { return r.ToggleFlag(0, 0) })
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	fetched, err := g.FetchGameSession(ctx, created.GameSessionId)
	require.NoError(t, err)
	assert.Equal(t, uint64(n), fetched.Round.Version())
	assert.Equal(t, 0, fetched.Round.FlagCount())
}

func TestUpdateErrorKeepsRound(t *testing.T) {
	ctx := context.Background()
	g := NewGames(10, time.Minute)
	round := newRound(t)
	created, err := g.CreateGameSession(ctx, round)
	require.NoError(t, err)

	session, err := g.UpdateGameSession(ctx, created.GameSessionId,
		func(r mines.Round) (mines.Round, error) { return r.Reveal(9, 9) })
	assert.True(t, errors.Is(err, mines.ErrIllegalInteraction))
	assert.Equal(t, round, session.Round)

	fetched, err := g.FetchGameSession(ctx, created.GameSessionId)
	require.NoError(t, err)
	assert.Equal(t, round, fetched.Round)
}

func TestUpdatedAtFollowsVersion(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Unix(1000, 0)}
	g := NewGames(10, time.Minute)
	g.now = c.Now

	created, err := g.CreateGameSession(ctx, newRound(t))
	require.NoError(t, err)

	c.Advance(time.Second)
	session, err := g.UpdateGameSession(ctx, created.GameSessionId,
		func(r mines.Round) (mines.Round, error) { return r, nil })
	require.NoError(t, err)
	assert.Equal(t, created.UpdatedAt, session.UpdatedAt)

	c.Advance(time.Second)
	session, err = g.UpdateGameSession(ctx, created.GameSessionId,
		func(r mines.Round) (mines.Round, error) { return r.ToggleFlag(0, 0) })
	require.NoError(t, err)
	assert.Equal(t, c.Now(), session.UpdatedAt)
	assert.Equal(t, created.CreatedAt, session.CreatedAt)
}

func TestEvictIdle(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Unix(1000, 0)}
	g := NewGames(10, time.Minute)
	g.now = c.Now

	idle, err := g.CreateGameSession(ctx, newRound(t))
	require.NoError(t, err)
	busy, err := g.CreateGameSession(ctx, newRound(t))
	require.NoError(t, err)

	c.Advance(45 * time.Second)
	_, err = g.FetchGameSession(ctx, busy.GameSessionId)
	require.NoError(t, err)

	c.Advance(30 * time.Second)
	assert.Equal(t, 1, g.Evict(c.Now()))

	_, err = g.FetchGameSession(ctx, idle.GameSessionId)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = g.FetchGameSession(ctx, busy.GameSessionId)
	assert.NoError(t, err)
}

func TestJanitorStopsWithContext(t *testing.T) {
	g := NewGames(10, time.Nanosecond)
	_, err := g.CreateGameSession(context.Background(), newRound(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	go func() { done <- g.RunJanitor(ctx, logger, time.Millisecond) }()

	assert.Eventually(t, func() bool { return g.Len() == 0 },
		time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
	assert.Contains(t, buf.String(), "evicted idle game sessions")
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGames(10, time.Minute)
	_, err := g.CreateGameSession(ctx, newRound(t))
	assert.ErrorIs(t, err, context.Canceled)
}
