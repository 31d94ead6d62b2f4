package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/schedule", handler.GetSchedule)
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/matches/upcoming", handler.ListUpcomingMatches)
	mux.HandleFunc("GET /v1/matches/recent", handler.ListRecentResults)
	mux.HandleFunc("GET /v1/matches/{matchID}/odds", handler.GetMatchOdds)
	mux.HandleFunc("GET /v1/teams/rankings", handler.ListTeamRankings)
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/predictions/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPredictions)))
	mux.Handle("GET /v1/predictions/me/stats", RequireAuth(verifier, http.HandlerFunc(handler.GetMyPredictionStats)))
	mux.Handle("PUT /v1/predictions/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.SavePrediction)))
	mux.Handle("DELETE /v1/predictions/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.DeletePrediction)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync-schedule", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncScheduleJob)))
	mux.Handle("POST /v1/internal/jobs/sync-leagues", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncLeaguesJob)))
}
