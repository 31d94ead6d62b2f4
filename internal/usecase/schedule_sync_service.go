package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/cachemeta"
	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	"github.com/riskibarqy/esports-pickem/internal/domain/league"
	"github.com/riskibarqy/esports-pickem/internal/platform/logging"
)

const (
	scheduleLookback  = 7 * 24 * time.Hour
	scheduleLookahead = 14 * 24 * time.Hour

	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// ScheduleFetcher is the upstream feed as seen by the cache synchronizer.
type ScheduleFetcher interface {
	FetchSchedule(ctx context.Context) ([]event.Event, error)
	FetchLeagues(ctx context.Context) ([]league.League, error)
}

type ScheduleView struct {
	Events      []event.Event
	LastUpdated *time.Time
}

type LeaguesView struct {
	Leagues     []league.League
	LastUpdated *time.Time
}

// MatchResult is a truly completed event with its derived outcome.
type MatchResult struct {
	Event  event.Event
	Winner string
	Score  string
}

type ScheduleSyncService struct {
	fetcher    ScheduleFetcher
	eventRepo  event.Repository
	leagueRepo league.Repository
	metaRepo   cachemeta.Repository
	logger     *logging.Logger
	now        func() time.Time
}

func NewScheduleSyncService(
	fetcher ScheduleFetcher,
	eventRepo event.Repository,
	leagueRepo league.Repository,
	metaRepo cachemeta.Repository,
	logger *logging.Logger,
) *ScheduleSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleSyncService{
		fetcher:    fetcher,
		eventRepo:  eventRepo,
		leagueRepo: leagueRepo,
		metaRepo:   metaRepo,
		logger:     logger.With("component", "schedule_sync"),
		now:        time.Now,
	}
}

// RefreshSchedule pulls the upstream schedule and replaces the cached rows in
// one transaction. On failure the previous cache is left as is and the error
// is recorded in the cache metadata before being returned.
func (s *ScheduleSyncService) RefreshSchedule(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleSyncService.RefreshSchedule")
	defer span.End()

	now := s.now().UTC()
	events, err := s.fetcher.FetchSchedule(ctx)
	if err != nil {
		return 0, s.recordFailure(ctx, cachemeta.KeySchedule, now, fmt.Errorf("fetch schedule: %w", err))
	}

	count, err := s.eventRepo.ReplaceByMatch(ctx, events, now)
	if err != nil {
		return 0, s.recordFailure(ctx, cachemeta.KeySchedule, now, fmt.Errorf("replace cached events: %w", err))
	}
	if err := s.metaRepo.RecordSuccess(ctx, cachemeta.KeySchedule, now); err != nil {
		return count, fmt.Errorf("record schedule refresh: %w", err)
	}

	s.logger.InfoContext(ctx, "schedule cache refreshed", "events", count)
	return count, nil
}

func (s *ScheduleSyncService) RefreshLeagues(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleSyncService.RefreshLeagues")
	defer span.End()

	now := s.now().UTC()
	leagues, err := s.fetcher.FetchLeagues(ctx)
	if err != nil {
		return 0, s.recordFailure(ctx, cachemeta.KeyLeagues, now, fmt.Errorf("fetch leagues: %w", err))
	}

	count, err := s.leagueRepo.UpsertAll(ctx, leagues, now)
	if err != nil {
		return 0, s.recordFailure(ctx, cachemeta.KeyLeagues, now, fmt.Errorf("upsert leagues: %w", err))
	}
	if err := s.metaRepo.RecordSuccess(ctx, cachemeta.KeyLeagues, now); err != nil {
		return count, fmt.Errorf("record leagues refresh: %w", err)
	}

	s.logger.InfoContext(ctx, "league cache refreshed", "leagues", count)
	return count, nil
}

func (s *ScheduleSyncService) recordFailure(ctx context.Context, key string, at time.Time, cause error) error {
	if err := s.metaRepo.RecordFailure(ctx, key, at, cause.Error()); err != nil {
		s.logger.WarnContext(ctx, "record cache failure", "cache_key", key, "error", err)
	}
	return cause
}

// GetCachedSchedule returns the events starting within the retention window,
// one per match, ordered by start time.
func (s *ScheduleSyncService) GetCachedSchedule(ctx context.Context) ([]event.Event, error) {
	now := s.now().UTC()
	events, err := s.eventRepo.ListWindow(ctx, now.Add(-scheduleLookback), now.Add(scheduleLookahead))
	if err != nil {
		return nil, fmt.Errorf("list cached events: %w", err)
	}
	return events, nil
}

func (s *ScheduleSyncService) GetCachedLeagues(ctx context.Context) ([]league.League, error) {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cached leagues: %w", err)
	}
	return leagues, nil
}

// GetCacheLastSuccess returns nil when the key has never synced successfully.
func (s *ScheduleSyncService) GetCacheLastSuccess(ctx context.Context, key string) (*time.Time, error) {
	meta, ok, err := s.metaRepo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get cache metadata %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	return meta.LastSuccess, nil
}

// Schedule serves the cached schedule with corrected states, optionally
// narrowed to one league, in display order.
func (s *ScheduleSyncService) Schedule(ctx context.Context, leagueSlug string) (ScheduleView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleSyncService.Schedule")
	defer span.End()

	events, lastUpdated, err := s.warmSchedule(ctx)
	if err != nil {
		return ScheduleView{}, err
	}

	now := s.now().UTC()
	events = event.WithCorrectedState(filterByLeague(events, leagueSlug), now)
	event.SortForDisplay(events, now)
	return ScheduleView{Events: events, LastUpdated: lastUpdated}, nil
}

func (s *ScheduleSyncService) Leagues(ctx context.Context) (LeaguesView, error) {
	leagues, err := s.GetCachedLeagues(ctx)
	if err != nil {
		return LeaguesView{}, err
	}
	lastUpdated, err := s.GetCacheLastSuccess(ctx, cachemeta.KeyLeagues)
	if err != nil {
		return LeaguesView{}, err
	}
	if len(leagues) == 0 && lastUpdated == nil {
		return LeaguesView{}, ErrCacheNotReady
	}
	return LeaguesView{Leagues: leagues, LastUpdated: lastUpdated}, nil
}

// UpcomingMatches lists matches that can still be predicted or are being
// played, earliest first.
func (s *ScheduleSyncService) UpcomingMatches(ctx context.Context, leagueSlug string) ([]event.Event, error) {
	events, _, err := s.warmSchedule(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := make([]event.Event, 0, len(events))
	for _, ev := range event.WithCorrectedState(filterByLeague(events, leagueSlug), now) {
		if len(ev.Teams()) < 2 {
			continue
		}
		if ev.State == event.StateUnstarted || ev.State == event.StateInProgress {
			out = append(out, ev)
		}
	}
	event.SortForDisplay(out, now)
	return out, nil
}

// RecentResults lists truly completed matches, most recent first.
func (s *ScheduleSyncService) RecentResults(ctx context.Context, leagueSlug string, limit int) ([]MatchResult, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	limit = min(limit, maxRecentLimit)

	events, _, err := s.warmSchedule(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := make([]MatchResult, 0, len(events))
	// ListWindow is start ascending; walk backwards for most recent first.
	filtered := filterByLeague(events, leagueSlug)
	for i := len(filtered) - 1; i >= 0 && len(out) < limit; i-- {
		ev := filtered[i]
		if !event.IsTrulyCompleted(ev, now) {
			continue
		}
		winner, score, ok := event.ActualResult(ev)
		if !ok {
			continue
		}
		out = append(out, MatchResult{Event: ev, Winner: winner, Score: score})
	}
	return out, nil
}

// warmSchedule returns ErrCacheNotReady when nothing is cached and no refresh
// has ever succeeded.
func (s *ScheduleSyncService) warmSchedule(ctx context.Context) ([]event.Event, *time.Time, error) {
	events, err := s.GetCachedSchedule(ctx)
	if err != nil {
		return nil, nil, err
	}
	lastUpdated, err := s.GetCacheLastSuccess(ctx, cachemeta.KeySchedule)
	if err != nil {
		return nil, nil, err
	}
	if len(events) == 0 && lastUpdated == nil {
		return nil, nil, ErrCacheNotReady
	}
	return events, lastUpdated, nil
}

func filterByLeague(events []event.Event, leagueSlug string) []event.Event {
	leagueSlug = strings.TrimSpace(leagueSlug)
	if leagueSlug == "" {
		return events
	}
	out := make([]event.Event, 0, len(events))
	for _, ev := range events {
		if strings.EqualFold(ev.LeagueSlug, leagueSlug) {
			out = append(out, ev)
		}
	}
	return out
}
