package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/esports-pickem/internal/usecase"
)

func (h *Handler) SavePrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SavePrediction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req savePredictionRequest
	if err := decodeJSONBody(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	item, err := h.predictionService.Save(ctx, usecase.SavePredictionInput{
		UserID:  principal.UserID,
		MatchID: matchID,
		Winner:  req.Winner,
		Score:   req.Score,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "save prediction failed", "user_id", principal.UserID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(item))
}

func (h *Handler) DeletePrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePrediction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if err := h.predictionService.Delete(ctx, principal.UserID, matchID); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"matchId": matchID, "status": "deleted"})
}

func (h *Handler) ListMyPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPredictions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	items, err := h.predictionService.ListMine(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]predictionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, predictionToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetMyPredictionStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyPredictionStats")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	stats, err := h.predictionService.Stats(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionStatsToDTO(stats))
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.predictionService.Leaderboard(ctx, limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(items))
}
