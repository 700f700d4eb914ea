package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter wires every endpoint under /api/v1 and wraps the mux with
// recovery, request logging and CORS.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(h.recoverer, h.requestLogger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	users := api.PathPrefix("/users/{user}").Subrouter()
	users.HandleFunc("/questions", h.ImportQuestions).Methods(http.MethodPost)
	users.HandleFunc("/answers", h.SubmitAnswer).Methods(http.MethodPost)
	users.HandleFunc("/hints", h.RequestHint).Methods(http.MethodPost)
	users.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)
	users.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	users.HandleFunc("/review", h.Review).Methods(http.MethodGet)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(r)
}
