package user

import (
	"context"
	"time"
)

// Principal is the authenticated caller returned by the identity service.
type Principal struct {
	UserID string
	Email  string
}

// Account holds the leaderboard aggregate of a user.
type Account struct {
	UserID      string
	TotalPoints int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Repository interface {
	// Ensure creates the account with zero points when missing.
	Ensure(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (Account, bool, error)
	// ListTop returns accounts ordered by total points descending.
	ListTop(ctx context.Context, limit int) ([]Account, error)
}
