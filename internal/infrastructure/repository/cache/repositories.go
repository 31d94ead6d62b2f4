package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/league"
	basecache "github.com/riskibarqy/esports-pickem/internal/platform/cache"
)

const leagueListKey = "league:list"

// LeagueRepository serves List from a TTL cache and drops it whenever the
// underlying table is rewritten.
type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store[[]league.League]
}

func NewLeagueRepository(next league.Repository, ttl time.Duration) *LeagueRepository {
	return &LeagueRepository{next: next, cache: basecache.NewStore[[]league.League](ttl)}
}

func (r *LeagueRepository) UpsertAll(ctx context.Context, leagues []league.League, cachedAt time.Time) (int, error) {
	n, err := r.next.UpsertAll(ctx, leagues, cachedAt)
	r.cache.DeletePrefix(ctx, "league:")
	return n, err
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	items, err := r.cache.GetOrLoad(ctx, leagueListKey, r.next.List)
	if err != nil {
		return nil, err
	}
	return append([]league.League(nil), items...), nil
}
