package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	"github.com/riskibarqy/esports-pickem/internal/domain/prediction"
	"github.com/riskibarqy/esports-pickem/internal/platform/logging"
)

const defaultScoringWorkers = 4

type ScoringService struct {
	predictionRepo prediction.Repository
	logger         *logging.Logger
	workers        int
	now            func() time.Time
}

func NewScoringService(predictionRepo prediction.Repository, logger *logging.Logger, workers int) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultScoringWorkers
	}
	return &ScoringService{
		predictionRepo: predictionRepo,
		logger:         logger.With("component", "scoring"),
		workers:        workers,
		now:            time.Now,
	}
}

// AutoScore scores every unscored prediction of the truly completed candidates
// and returns how many were newly scored. Re-running it on the same events
// scores nothing: the repository only writes predictions that are still
// unscored. Events without a declared winner are skipped silently.
func (s *ScoringService) AutoScore(ctx context.Context, candidates []event.Event) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.AutoScore")
	defer span.End()

	now := s.now().UTC()
	eligible := make([]event.Event, 0, len(candidates))
	for _, ev := range candidates {
		if event.IsTrulyCompleted(ev, now) {
			eligible = append(eligible, ev)
		}
	}
	if len(eligible) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(min(s.workers, len(eligible)))
	if err != nil {
		return 0, fmt.Errorf("create scoring pool: %w", err)
	}
	defer pool.Release()

	var (
		scored  atomic.Int64
		errMu   sync.Mutex
		errs    error
		workers sync.WaitGroup
	)
	for _, ev := range eligible {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			n, scoreErr := s.scoreEvent(ctx, ev, now)
			scored.Add(int64(n))
			if scoreErr != nil {
				errMu.Lock()
				errs = crerr.CombineErrors(errs, scoreErr)
				errMu.Unlock()
			}
		}); err != nil {
			workers.Done()
			errMu.Lock()
			errs = crerr.CombineErrors(errs, fmt.Errorf("submit match=%s to scoring pool: %w", ev.MatchID(), err))
			errMu.Unlock()
		}
	}
	workers.Wait()

	total := int(scored.Load())
	s.logger.InfoContext(ctx, "auto scoring finished", "candidates", len(candidates), "eligible", len(eligible), "scored", total)
	return total, errs
}

func (s *ScoringService) scoreEvent(ctx context.Context, ev event.Event, now time.Time) (int, error) {
	winner, score, ok := event.ActualResult(ev)
	if !ok {
		return 0, nil
	}
	matchID := ev.MatchID()

	pending, err := s.predictionRepo.ListUnscoredByMatch(ctx, matchID)
	if err != nil {
		return 0, fmt.Errorf("list unscored predictions match=%s: %w", matchID, err)
	}

	scored := 0
	for _, p := range pending {
		res := prediction.Evaluate(p, winner, score, now)
		applied, err := s.predictionRepo.ApplyResult(ctx, p.ID, res)
		if err != nil {
			return scored, fmt.Errorf("apply result prediction=%s: %w", p.ID, err)
		}
		if applied {
			scored++
		}
	}

	if scored > 0 {
		s.logger.DebugContext(ctx, "match scored", "match_id", matchID, "winner", winner, "score", score, "predictions", scored)
	}
	return scored, nil
}
