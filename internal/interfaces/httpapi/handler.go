package httpapi

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/esports-pickem/internal/platform/logging"
	"github.com/riskibarqy/esports-pickem/internal/usecase"
)

type Handler struct {
	syncService       *usecase.ScheduleSyncService
	predictionService *usecase.PredictionService
	ratingService     *usecase.RatingService
	poller            *usecase.Poller
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	syncService *usecase.ScheduleSyncService,
	predictionService *usecase.PredictionService,
	ratingService *usecase.RatingService,
	poller *usecase.Poller,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		syncService:       syncService,
		predictionService: predictionService,
		ratingService:     ratingService,
		poller:            poller,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func decodeJSONBody(body io.Reader, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// parseLimit reads an optional positive integer query value; 0 means unset.
func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput)
	}
	return limit, nil
}
