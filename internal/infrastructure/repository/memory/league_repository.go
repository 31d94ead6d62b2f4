package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/league"
)

type LeagueRepository struct {
	mu    sync.RWMutex
	items map[string]league.League
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	for _, l := range leagues {
		items[l.ID] = l
	}
	return &LeagueRepository{items: items}
}

func (r *LeagueRepository) UpsertAll(_ context.Context, leagues []league.League, _ time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range leagues {
		r.items[l.ID] = l
	}
	return len(leagues), nil
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.items))
	for _, l := range r.items {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
