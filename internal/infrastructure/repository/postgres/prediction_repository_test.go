package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/riskibarqy/esports-pickem/internal/domain/prediction"
)

func TestPredictionWriteError(t *testing.T) {
	p := prediction.Prediction{ID: "p1", UserID: "u1", MatchID: "m1"}

	t.Run("primary key clash", func(t *testing.T) {
		raw := &pq.Error{Code: "23505", Constraint: "predictions_pkey"}
		err := predictionWriteError(p, fmt.Errorf("exec: %w", raw))
		if !errors.Is(err, prediction.ErrDuplicateID) {
			t.Fatalf("expected duplicate id, got=%v", err)
		}
		var pqErr *pq.Error
		if !errors.As(err, &pqErr) {
			t.Fatalf("expected driver error to stay in the chain")
		}
	})

	t.Run("other failures pass through", func(t *testing.T) {
		err := predictionWriteError(p, &pq.Error{Code: "23503"})
		if errors.Is(err, prediction.ErrDuplicateID) {
			t.Fatalf("foreign key violation must not look like an id clash: %v", err)
		}
	})
}
