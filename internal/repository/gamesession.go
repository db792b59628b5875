package repository

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/minesweeper/internal/mines"
)

var (
	ErrNotFound = errors.New("game session not found")
	ErrFull     = errors.New("game session limit reached")
)

type GameSession struct {
	GameSessionId string
	Round         mines.Round
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type entry struct {
	mu      sync.Mutex
	session GameSession
	removed bool
	touched atomic.Int64
}

// Games keeps live rounds in memory. Calls touching the same session are
// serialised on that session's lock; distinct sessions never contend beyond
// the map lookup.
type Games struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	limit    int
	ttl      time.Duration
	now      func() time.Time
}

func NewGames(limit int, ttl time.Duration) *Games {
	return &Games{
		sessions: make(map[string]*entry),
		limit:    limit,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (g *Games) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sessions)
}

func (g *Games) CreateGameSession(ctx context.Context, round mines.Round) (*GameSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := g.now()
	e := &entry{
		session: GameSession{
			GameSessionId: uuid.NewString(),
			Round:         round,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
	e.touched.Store(now.UnixNano())

	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.sessions) >= g.limit {
		return nil, ErrFull
	}
	g.sessions[e.session.GameSessionId] = e
	session := e.session
	return &session, nil
}

func (g *Games) lookup(id string) (*entry, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (g *Games) FetchGameSession(ctx context.Context, id string) (*GameSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := g.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, ErrNotFound
	}
	e.touched.Store(g.now().UnixNano())
	session := e.session
	return &session, nil
}

// UpdateGameSession applies move to the stored round while holding the
// session lock. When move fails the stored round is left as it was.
// UpdatedAt only moves when the round's version does.
func (g *Games) UpdateGameSession(
	ctx context.Context, id string, move func(mines.Round) (mines.Round, error),
) (*GameSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := g.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, ErrNotFound
	}
	now := g.now()
	e.touched.Store(now.UnixNano())

	next, err := move(e.session.Round)
	if err != nil {
		session := e.session
		return &session, err
	}
	if next.Version() != e.session.Round.Version() {
		e.session.UpdatedAt = now
	}
	e.session.Round = next
	session := e.session
	return &session, nil
}

func (g *Games) DeleteGameSession(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	e, ok := g.sessions[id]
	delete(g.sessions, id)
	g.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	return nil
}

// Evict drops sessions that have not been touched for longer than the ttl.
func (g *Games) Evict(now time.Time) int {
	cutoff := now.Add(-g.ttl).UnixNano()
	var stale []*entry

	g.mu.Lock()
	for id, e := range g.sessions {
		if e.touched.Load() < cutoff {
			delete(g.sessions, id)
			stale = append(stale, e)
		}
	}
	g.mu.Unlock()

	for _, e := range stale {
		e.mu.Lock()
		e.removed = true
		e.mu.Unlock()
	}
	return len(stale)
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (g *Games) RunJanitor(ctx context.Context, logger *slog.Logger, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := g.Evict(g.now()); n > 0 {
				logger.Debug("evicted idle game sessions",
					slog.Int("count", n), slog.Int("live", g.Len()))
			}
		}
	}
}
