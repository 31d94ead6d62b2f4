package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]user.Account
	now   func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[string]user.Account), now: time.Now}
}

func (r *UserRepository) Ensure(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureLocked(userID)
	return nil
}

func (r *UserRepository) ensureLocked(userID string) user.Account {
	acc, ok := r.items[userID]
	if !ok {
		now := r.now().UTC()
		acc = user.Account{UserID: userID, CreatedAt: now, UpdatedAt: now}
		r.items[userID] = acc
	}
	return acc
}

func (r *UserRepository) Get(_ context.Context, userID string) (user.Account, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.items[userID]
	return acc, ok, nil
}

func (r *UserRepository) ListTop(_ context.Context, limit int) ([]user.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.Account, 0, len(r.items))
	for _, acc := range r.items {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *UserRepository) setTotalLocked(userID string, total int) {
	acc := r.ensureLocked(userID)
	acc.TotalPoints = total
	acc.UpdatedAt = r.now().UTC()
	r.items[userID] = acc
}
