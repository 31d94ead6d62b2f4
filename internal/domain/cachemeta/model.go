package cachemeta

import (
	"context"
	"time"
)

// Keys of the cached upstream datasets.
const (
	KeySchedule = "schedule"
	KeyLeagues  = "leagues"
)

// Meta tracks refresh attempts for one cached dataset.
type Meta struct {
	Key         string
	LastFetched *time.Time
	LastSuccess *time.Time
	FetchCount  int64
	LastError   string
}

// Repository upserts one row per key; rows are never deleted.
type Repository interface {
	Get(ctx context.Context, key string) (Meta, bool, error)
	RecordSuccess(ctx context.Context, key string, at time.Time) error
	RecordFailure(ctx context.Context, key string, at time.Time, message string) error
}
