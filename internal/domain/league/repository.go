package league

import (
	"context"
	"time"
)

// Repository describes league persistence needs from use cases.
type Repository interface {
	// UpsertAll writes every league in one transaction and returns the count.
	UpsertAll(ctx context.Context, leagues []League, cachedAt time.Time) (int, error)
	// List returns all leagues ordered by name.
	List(ctx context.Context) ([]League, error)
}
