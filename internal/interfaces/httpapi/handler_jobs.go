package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/esports-pickem/internal/usecase"
)

func (h *Handler) RunSyncScheduleJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncScheduleJob")
	defer span.End()

	if h.poller == nil {
		writeError(ctx, w, fmt.Errorf("%w: poller is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.poller.TriggerSchedule(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync schedule job failed", "refreshed", result.Refreshed, "scored", result.Scored, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, cycleResultDTO(result))
}

func (h *Handler) RunSyncLeaguesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncLeaguesJob")
	defer span.End()

	if h.poller == nil {
		writeError(ctx, w, fmt.Errorf("%w: poller is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.poller.TriggerLeagues(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync leagues job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, cycleResultDTO(result))
}
