package httpapi

import "net/http"

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSchedule")
	defer span.End()

	view, err := h.syncService.Schedule(ctx, r.URL.Query().Get("league"))
	if err != nil {
		h.logger.WarnContext(ctx, "get schedule failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scheduleDTO{
		Events:      eventsToDTO(view.Events),
		LastUpdated: view.LastUpdated,
	})
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	view, err := h.syncService.Leagues(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(view.Leagues))
	for _, item := range view.Leagues {
		items = append(items, leagueToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, leaguesDTO{Leagues: items, LastUpdated: view.LastUpdated})
}

func (h *Handler) ListUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUpcomingMatches")
	defer span.End()

	items, err := h.syncService.UpcomingMatches(ctx, r.URL.Query().Get("league"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventsToDTO(items))
}

func (h *Handler) ListRecentResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRecentResults")
	defer span.End()

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.syncService.RecentResults(ctx, r.URL.Query().Get("league"), limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]matchResultDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchResultToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

