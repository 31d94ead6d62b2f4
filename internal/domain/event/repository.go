package event

import (
	"context"
	"time"
)

// Repository persists the deduplicated schedule cache.
type Repository interface {
	// ReplaceByMatch writes the batch atomically. For every event it first
	// removes rows sharing its match id under a different event id, then
	// upserts by event id. It returns the number of rows written.
	ReplaceByMatch(ctx context.Context, events []Event, cachedAt time.Time) (int, error)
	// ListWindow returns events starting in [from, to], one per match id with
	// the most recently cached row winning, ordered by start time.
	ListWindow(ctx context.Context, from, to time.Time) ([]Event, error)
	GetByMatchID(ctx context.Context, matchID string) (Event, bool, error)
}
