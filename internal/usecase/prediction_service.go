package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	"github.com/riskibarqy/esports-pickem/internal/domain/prediction"
	"github.com/riskibarqy/esports-pickem/internal/domain/user"
	"github.com/riskibarqy/esports-pickem/internal/platform/id"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 100
)

type SavePredictionInput struct {
	UserID  string
	MatchID string
	Winner  string
	Score   string
}

type PredictionService struct {
	eventRepo      event.Repository
	predictionRepo prediction.Repository
	userRepo       user.Repository
	idGen          id.Generator
	now            func() time.Time
}

func NewPredictionService(
	eventRepo event.Repository,
	predictionRepo prediction.Repository,
	userRepo user.Repository,
	idGen id.Generator,
) *PredictionService {
	return &PredictionService{
		eventRepo:      eventRepo,
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		idGen:          idGen,
		now:            time.Now,
	}
}

// Save creates or edits the caller's pick for a match that has not started.
// The score is stored in the positional "team1-team2" form.
func (s *PredictionService) Save(ctx context.Context, input SavePredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Save")
	defer span.End()

	userID := strings.TrimSpace(input.UserID)
	matchID := strings.TrimSpace(input.MatchID)
	if userID == "" || matchID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user id and match id are required", ErrInvalidInput)
	}

	ev, ok, err := s.eventRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get cached match: %w", err)
	}
	if !ok {
		return prediction.Prediction{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	teams := ev.Teams()
	if !ev.HasConfirmedOpponents() {
		return prediction.Prediction{}, fmt.Errorf("%w: match=%s has no confirmed opponents", ErrInvalidInput, matchID)
	}

	now := s.now().UTC()
	if event.CorrectedState(ev, now) != event.StateUnstarted || !ev.StartTime.After(now) {
		return prediction.Prediction{}, fmt.Errorf("%w: match=%s already started", ErrPredictionLocked, matchID)
	}

	winner := canonicalTeamCode(teams[:2], input.Winner)
	score, err := prediction.NormalizeScore(teams[0].Code, teams[1].Code, winner, input.Score, ev.BestOf())
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.userRepo.Ensure(ctx, userID); err != nil {
		return prediction.Prediction{}, fmt.Errorf("ensure user: %w", err)
	}

	existing, found, err := s.predictionRepo.Get(ctx, userID, matchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get prediction: %w", err)
	}
	if found && existing.Scored() {
		return prediction.Prediction{}, fmt.Errorf("%w: match=%s already scored", ErrPredictionLocked, matchID)
	}

	item := prediction.Prediction{
		ID:              existing.ID,
		UserID:          userID,
		MatchID:         matchID,
		EventStartTime:  ev.StartTime,
		LeagueSlug:      ev.LeagueSlug,
		Team1Code:       teams[0].Code,
		Team2Code:       teams[1].Code,
		PredictedWinner: winner,
		PredictedScore:  score,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if found {
		item.CreatedAt = existing.CreatedAt
	} else {
		item.ID, err = s.idGen.NewID()
		if err != nil {
			return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
		}
	}

	written, err := s.predictionRepo.Upsert(ctx, item)
	if !found && errors.Is(err, prediction.ErrDuplicateID) {
		// one fresh id, then give up
		if item.ID, err = s.idGen.NewID(); err != nil {
			return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
		}
		written, err = s.predictionRepo.Upsert(ctx, item)
	}
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("upsert prediction: %w", err)
	}
	if !written {
		return prediction.Prediction{}, fmt.Errorf("%w: match=%s already scored", ErrPredictionLocked, matchID)
	}
	return item, nil
}

func (s *PredictionService) ListMine(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	items, err := s.predictionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions by user: %w", err)
	}
	return items, nil
}

// Delete removes an unscored pick.
func (s *PredictionService) Delete(ctx context.Context, userID, matchID string) error {
	userID = strings.TrimSpace(userID)
	matchID = strings.TrimSpace(matchID)
	if userID == "" || matchID == "" {
		return fmt.Errorf("%w: user id and match id are required", ErrInvalidInput)
	}

	existing, found, err := s.predictionRepo.Get(ctx, userID, matchID)
	if err != nil {
		return fmt.Errorf("get prediction: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: prediction for match=%s", ErrNotFound, matchID)
	}
	if existing.Scored() {
		return fmt.Errorf("%w: match=%s already scored", ErrPredictionLocked, matchID)
	}

	deleted, err := s.predictionRepo.Delete(ctx, userID, matchID)
	if err != nil {
		return fmt.Errorf("delete prediction: %w", err)
	}
	if !deleted {
		// scored between the read and the delete
		return fmt.Errorf("%w: match=%s already scored", ErrPredictionLocked, matchID)
	}
	return nil
}

func (s *PredictionService) Stats(ctx context.Context, userID string) (prediction.Stats, error) {
	items, err := s.ListMine(ctx, userID)
	if err != nil {
		return prediction.Stats{}, err
	}
	return prediction.ComputeStats(items), nil
}

func (s *PredictionService) Leaderboard(ctx context.Context, limit int) ([]user.Account, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	limit = min(limit, maxLeaderboardLimit)

	accounts, err := s.userRepo.ListTop(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	return accounts, nil
}

func canonicalTeamCode(teams []event.Team, code string) string {
	code = strings.TrimSpace(code)
	for _, team := range teams {
		if strings.EqualFold(team.Code, code) {
			return team.Code
		}
	}
	return code
}
