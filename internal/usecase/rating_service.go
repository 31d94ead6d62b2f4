package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	"github.com/riskibarqy/esports-pickem/internal/domain/rating"
	"github.com/riskibarqy/esports-pickem/internal/platform/logging"
)

const (
	// history the ratings are trained on
	ratingLookback = 365 * 24 * time.Hour

	defaultRankingLimit = 20
	maxRankingLimit     = 100
)

// MatchOdds is a pre-match estimate for one cached match.
type MatchOdds struct {
	Event event.Event
	Odds  rating.Odds
}

// RatingService rates teams from the truly completed matches in the cache.
type RatingService struct {
	eventRepo event.Repository
	kFactor   float64
	logger    *logging.Logger
	now       func() time.Time
}

func NewRatingService(eventRepo event.Repository, kFactor float64, logger *logging.Logger) *RatingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RatingService{
		eventRepo: eventRepo,
		kFactor:   kFactor,
		logger:    logger.With("component", "rating"),
		now:       time.Now,
	}
}

// train replays every decided series in start order. leagueSlug narrows the
// history to one league when set.
func (s *RatingService) train(ctx context.Context, leagueSlug string) (*rating.Model, error) {
	now := s.now().UTC()
	events, err := s.eventRepo.ListWindow(ctx, now.Add(-ratingLookback), now)
	if err != nil {
		return nil, fmt.Errorf("list rated events: %w", err)
	}

	model := rating.NewModel(s.kFactor)
	applied := 0
	for _, ev := range filterByLeague(events, leagueSlug) {
		series, ok := seriesFromEvent(ev, now)
		if !ok {
			continue
		}
		if model.Record(series) {
			applied++
		}
	}
	s.logger.DebugContext(ctx, "ratings trained", "league", leagueSlug, "events", len(events), "series", applied)
	return model, nil
}

func seriesFromEvent(ev event.Event, now time.Time) (rating.Series, bool) {
	if !event.IsTrulyCompleted(ev, now) || !ev.HasConfirmedOpponents() {
		return rating.Series{}, false
	}
	teams := ev.Teams()
	winner, loser := teams[0], teams[1]
	if winner.Result == nil || winner.Result.Outcome != event.OutcomeWin {
		winner, loser = loser, winner
	}
	if winner.Result == nil || winner.Result.Outcome != event.OutcomeWin {
		return rating.Series{}, false
	}

	s := rating.Series{
		WinnerCode:  winner.Code,
		WinnerName:  winner.Name,
		LoserCode:   loser.Code,
		LoserName:   loser.Name,
		WinnerGames: winner.Result.GameWins,
	}
	if loser.Result != nil {
		s.LoserGames = loser.Result.GameWins
	}
	return s, true
}

// Rankings returns teams ordered by Elo rating.
func (s *RatingService) Rankings(ctx context.Context, leagueSlug string, limit int) ([]rating.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.Rankings")
	defer span.End()

	if limit <= 0 {
		limit = defaultRankingLimit
	}
	limit = min(limit, maxRankingLimit)

	model, err := s.train(ctx, leagueSlug)
	if err != nil {
		return nil, err
	}
	return model.Rankings(limit), nil
}

// MatchOdds estimates the outcome of a cached match from the ratings of its
// league. Matches without two confirmed opponents have no odds.
func (s *RatingService) MatchOdds(ctx context.Context, matchID string) (MatchOdds, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.MatchOdds")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return MatchOdds{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	ev, ok, err := s.eventRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		return MatchOdds{}, fmt.Errorf("get match %s: %w", matchID, err)
	}
	if !ok {
		return MatchOdds{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !ev.HasConfirmedOpponents() {
		return MatchOdds{}, fmt.Errorf("%w: match=%s has no confirmed opponents", ErrInvalidInput, matchID)
	}

	model, err := s.train(ctx, ev.LeagueSlug)
	if err != nil {
		return MatchOdds{}, err
	}
	teams := ev.Teams()
	return MatchOdds{Event: ev, Odds: model.Predict(teams[0].Code, teams[1].Code)}, nil
}
