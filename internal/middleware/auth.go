package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vancomm/minesweeper/internal/config"
)

type CtxKey int

const (
	CtxSessionClaims CtxKey = iota
)

func SessionClaims(ctx context.Context) (*config.SessionClaims, bool) {
	claims, ok := ctx.Value(CtxSessionClaims).(*config.SessionClaims)
	return claims, ok
}

// Session attaches valid session claims to the request context. A request
// with broken cookies has them cleared and proceeds without claims.
func Session(log *slog.Logger, cookies *config.Cookies) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := cookies.ParseSessionClaims(r)
			if err != nil {
				if _, cerr := r.Cookie("sign"); cerr == nil {
					log.Debug("dropping invalid session", slog.Any("error", err))
					cookies.Clear(w)
				}
				h.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CtxSessionClaims, claims)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Owner rejects requests whose session does not own the game named by the
// route variable param.
func Owner(log *slog.Logger, param string) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gameID := mux.Vars(r)[param]
			claims, ok := SessionClaims(r.Context())
			if !ok || claims.GameID != gameID {
				log.Debug("session does not own game", slog.String("game_id", gameID))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "session does not own this game",
				})
				return
			}
			h.ServeHTTP(w, r)
		})
	}
}
