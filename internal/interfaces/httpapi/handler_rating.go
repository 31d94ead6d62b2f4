package httpapi

import "net/http"

func (h *Handler) ListTeamRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamRankings")
	defer span.End()

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.ratingService.Rankings(ctx, r.URL.Query().Get("league"), limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list team rankings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamRankingsToDTO(items))
}

func (h *Handler) GetMatchOdds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchOdds")
	defer span.End()

	odds, err := h.ratingService.MatchOdds(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchOddsToDTO(odds))
}
