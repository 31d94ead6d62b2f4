package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/prediction"
)

// PredictionRepository shares the user store so ApplyResult can recompute
// totals under one critical section, mirroring the SQL transaction.
type PredictionRepository struct {
	mu    sync.Mutex
	items map[string]prediction.Prediction
	users *UserRepository
	now   func() time.Time
}

func NewPredictionRepository(users *UserRepository) *PredictionRepository {
	if users == nil {
		users = NewUserRepository()
	}
	return &PredictionRepository{
		items: make(map[string]prediction.Prediction),
		users: users,
		now:   time.Now,
	}
}

func predictionKey(userID, matchID string) string {
	return userID + "\x00" + matchID
}

func (r *PredictionRepository) Get(_ context.Context, userID, matchID string) (prediction.Prediction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[predictionKey(userID, matchID)]
	return p, ok, nil
}

func (r *PredictionRepository) Upsert(_ context.Context, p prediction.Prediction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := predictionKey(p.UserID, p.MatchID)
	now := r.now().UTC()
	if cur, ok := r.items[key]; ok {
		if cur.Scored() {
			return false, nil
		}
		p.ID = cur.ID
		p.CreatedAt = cur.CreatedAt
	} else {
		for _, other := range r.items {
			if other.ID == p.ID {
				return false, prediction.ErrDuplicateID
			}
		}
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.Result = nil
	r.items[key] = p
	return true, nil
}

func (r *PredictionRepository) Delete(_ context.Context, userID, matchID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := predictionKey(userID, matchID)
	cur, ok := r.items[key]
	if !ok || cur.Scored() {
		return false, nil
	}
	delete(r.items, key)
	return true, nil
}

func (r *PredictionRepository) ListByUser(_ context.Context, userID string) ([]prediction.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.filterLocked(func(p prediction.Prediction) bool { return p.UserID == userID })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *PredictionRepository) ListUnscoredByMatch(_ context.Context, matchID string) ([]prediction.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.filterLocked(func(p prediction.Prediction) bool { return p.MatchID == matchID && !p.Scored() })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PredictionRepository) ApplyResult(_ context.Context, predictionID string, res prediction.Result) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		key   string
		found bool
	)
	for k, p := range r.items {
		if p.ID == predictionID {
			key, found = k, true
			break
		}
	}
	if !found {
		return false, nil
	}
	p := r.items[key]
	if p.Scored() {
		return false, nil
	}

	scored := res
	p.Result = &scored
	p.UpdatedAt = r.now().UTC()
	r.items[key] = p

	total := 0
	for _, item := range r.items {
		if item.UserID == p.UserID && item.Result != nil {
			total += item.Result.PointsEarned
		}
	}
	r.users.mu.Lock()
	r.users.setTotalLocked(p.UserID, total)
	r.users.mu.Unlock()
	return true, nil
}

func (r *PredictionRepository) filterLocked(keep func(prediction.Prediction) bool) []prediction.Prediction {
	out := make([]prediction.Prediction, 0)
	for _, p := range r.items {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
