package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// Cors lets the browser front-end call the API with its session cookies.
// Development accepts every origin, otherwise only the listed origins are
// allowed and an empty list allows none.
func Cors(development bool, origins ...string) Middleware {
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		allowed[origin] = true
	}
	options := cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
	options.AllowOriginFunc = func(origin string) bool {
		return development || allowed[origin]
	}
	return cors.New(options).Handler
}
