package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /{$}", handler.Welcome)
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/players", handler.RegisterPlayers)
	mux.HandleFunc("GET /v1/players/{name}", handler.GetPlayer)

	// Legacy paths kept for existing clients.
	mux.HandleFunc("POST /register-player", handler.RegisterPlayers)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/matches", handler.SubmitMatch)
	mux.HandleFunc("GET /v1/matches/pending", handler.ListPendingMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("POST /v1/matches/approve", handler.ApproveMatches)

	mux.HandleFunc("POST /submit-match", handler.SubmitMatch)
	mux.HandleFunc("POST /approve-match", handler.ApproveMatches)
}

func registerLeaderboardRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leaderboard", handler.LeaderboardOverview)
	mux.HandleFunc("GET /v1/leaderboard/{category}", handler.Leaderboard)

	mux.HandleFunc("GET /leaderboard/{category}", handler.Leaderboard)
}
