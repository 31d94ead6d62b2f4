package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/event"
)

type eventRow struct {
	value    event.Event
	cachedAt time.Time
	seq      int64
}

// EventRepository keeps the schedule cache in process memory.
type EventRepository struct {
	mu   sync.RWMutex
	rows map[string]eventRow
	seq  int64
}

func NewEventRepository() *EventRepository {
	return &EventRepository{rows: make(map[string]eventRow)}
}

func (r *EventRepository) ReplaceByMatch(_ context.Context, events []event.Event, cachedAt time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ev := range events {
		if matchID := ev.MatchID(); matchID != "" {
			for id, row := range r.rows {
				if id != ev.ID && row.value.MatchID() == matchID {
					delete(r.rows, id)
				}
			}
		}
		r.seq++
		r.rows[ev.ID] = eventRow{value: ev, cachedAt: cachedAt, seq: r.seq}
	}
	return len(events), nil
}

func (r *EventRepository) ListWindow(_ context.Context, from, to time.Time) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := make(map[string]eventRow)
	for id, row := range r.rows {
		start := row.value.StartTime
		if start.Before(from) || start.After(to) {
			continue
		}
		key := "event:" + id
		if matchID := row.value.MatchID(); matchID != "" {
			key = matchID
		}
		if cur, ok := latest[key]; ok && newer(cur, row) {
			continue
		}
		latest[key] = row
	}

	out := make([]event.Event, 0, len(latest))
	for _, row := range latest {
		out = append(out, row.value)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (r *EventRepository) GetByMatchID(_ context.Context, matchID string) (event.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found eventRow
		ok    bool
	)
	for _, row := range r.rows {
		if row.value.MatchID() != matchID || matchID == "" {
			continue
		}
		if !ok || newer(row, found) {
			found, ok = row, true
		}
	}
	return found.value, ok, nil
}

func newer(a, b eventRow) bool {
	if !a.cachedAt.Equal(b.cachedAt) {
		return a.cachedAt.After(b.cachedAt)
	}
	return a.seq > b.seq
}
