package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	qb "github.com/riskibarqy/esports-pickem/internal/platform/querybuilder"
)

const eventsTable = "events"

// dedupKey groups rows by match id; rows without one keep their own group.
const eventDedupKey = "COALESCE(match_id, 'event:' || id)"

var eventColumns = []string{"id", "match_id", "league_slug", "state", "start_time", "payload", "cached_at"}

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) ReplaceByMatch(ctx context.Context, events []event.Event, cachedAt time.Time) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	rows := make([]eventTableModel, 0, len(events))
	for _, ev := range events {
		row, err := toEventTableModel(ev, cachedAt)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	written := 0
	err := withTx(ctx, r.db, "replace events", func(tx *sqlx.Tx) error {
		for _, row := range rows {
			if row.MatchID.Valid {
				query, args, err := qb.DeleteFrom(eventsTable).
					Where(qb.Eq("match_id", row.MatchID.String), qb.NotEq("id", row.ID)).
					ToSQL()
				if err != nil {
					return fmt.Errorf("build delete reassigned event query: %w", err)
				}
				if _, err := tx.ExecContext(ctx, query, args...); err != nil {
					return fmt.Errorf("delete reassigned events match=%s: %w", row.MatchID.String, err)
				}
			}

			query, args, err := qb.UpsertModel(eventsTable, row, []string{"id"})
			if err != nil {
				return fmt.Errorf("build upsert event query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert event id=%s: %w", row.ID, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (r *EventRepository) ListWindow(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	query, args, err := qb.Select(eventColumns...).
		DistinctOn(eventDedupKey).
		From(eventsTable).
		Where(qb.Gte("start_time", from.UTC()), qb.Lte("start_time", to.UTC())).
		OrderBy(eventDedupKey, "cached_at DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select events window query: %w", err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select events window: %w", err)
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		ev, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (r *EventRepository) GetByMatchID(ctx context.Context, matchID string) (event.Event, bool, error) {
	query, args, err := qb.Select(eventColumns...).
		From(eventsTable).
		Where(qb.Eq("match_id", matchID)).
		OrderBy("cached_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return event.Event{}, false, fmt.Errorf("build get event by match query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("get event by match=%s: %w", matchID, err)
	}

	ev, err := row.toDomain()
	if err != nil {
		return event.Event{}, false, err
	}
	return ev, true, nil
}
