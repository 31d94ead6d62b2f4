package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	"github.com/riskibarqy/esports-pickem/internal/domain/prediction"
	"github.com/riskibarqy/esports-pickem/internal/infrastructure/repository/memory"
	predictionmock "github.com/riskibarqy/esports-pickem/internal/mocks/domain/prediction"
	"github.com/stretchr/testify/mock"
)

func seedPrediction(t *testing.T, repo *memory.PredictionRepository, users *memory.UserRepository, id, userID, matchID, winner, score string) {
	t.Helper()
	if err := users.Ensure(context.Background(), userID); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	ok, err := repo.Upsert(context.Background(), prediction.Prediction{
		ID:              id,
		UserID:          userID,
		MatchID:         matchID,
		Team1Code:       "T1",
		Team2Code:       "GEN",
		PredictedWinner: winner,
		PredictedScore:  score,
	})
	if err != nil || !ok {
		t.Fatalf("seed prediction %s: ok=%v err=%v", id, ok, err)
	}
}

func newScoringFixture(t *testing.T) (*ScoringService, *memory.PredictionRepository, *memory.UserRepository) {
	t.Helper()
	users := memory.NewUserRepository()
	predictions := memory.NewPredictionRepository(users)
	service := NewScoringService(predictions, nil, 2)
	service.now = func() time.Time { return testNow }
	return service, predictions, users
}

func TestScoringService_AutoScoreIsIdempotent(t *testing.T) {
	t.Parallel()

	service, predictions, users := newScoringFixture(t)
	seedPrediction(t, predictions, users, "p1", "u1", "m1", "T1", "3-1")
	seedPrediction(t, predictions, users, "p2", "u1", "m2", "T1", "3-0")
	seedPrediction(t, predictions, users, "p3", "u2", "m1", "GEN", "1-3")
	seedPrediction(t, predictions, users, "p4", "u1", "m3", "T1", "3-0")

	candidates := []event.Event{
		matchEvent("e1", "m1", testNow.Add(-4*time.Hour), event.StateCompleted, finished("T1", event.OutcomeWin, 3), finished("GEN", event.OutcomeLoss, 1)),
		matchEvent("e2", "m2", testNow.Add(-2*time.Hour), event.StateCompleted, finished("T1", event.OutcomeWin, 3), finished("GEN", event.OutcomeLoss, 1)),
		// upstream says completed but nobody won yet
		matchEvent("e3", "m3", testNow.Add(-30*time.Minute), event.StateCompleted, team("T1"), team("GEN")),
	}

	scored, err := service.AutoScore(context.Background(), candidates)
	if err != nil {
		t.Fatalf("auto score: %v", err)
	}
	if scored != 3 {
		t.Fatalf("expected scored=3, got=%d", scored)
	}

	again, err := service.AutoScore(context.Background(), candidates)
	if err != nil {
		t.Fatalf("second auto score: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected second run to score 0, got=%d", again)
	}

	u1, _, _ := users.Get(context.Background(), "u1")
	if u1.TotalPoints != prediction.PointsExactScore+prediction.PointsCorrectWinner {
		t.Fatalf("expected u1 total=35, got=%d", u1.TotalPoints)
	}
	u2, _, _ := users.Get(context.Background(), "u2")
	if u2.TotalPoints != 0 {
		t.Fatalf("expected u2 total=0, got=%d", u2.TotalPoints)
	}

	p4, _, _ := predictions.Get(context.Background(), "u1", "m3")
	if p4.Scored() {
		t.Fatalf("expected prediction for unfinished match to stay unscored")
	}
}

func TestScoringService_AutoScoreSkipsFutureFalseCompletion(t *testing.T) {
	t.Parallel()

	service, predictions, users := newScoringFixture(t)
	seedPrediction(t, predictions, users, "p1", "u1", "m1", "T1", "3-1")

	candidates := []event.Event{
		matchEvent("e1", "m1", testNow.Add(2*time.Hour), event.StateCompleted, finished("T1", event.OutcomeWin, 3), finished("GEN", event.OutcomeLoss, 1)),
	}
	scored, err := service.AutoScore(context.Background(), candidates)
	if err != nil {
		t.Fatalf("auto score: %v", err)
	}
	if scored != 0 {
		t.Fatalf("expected nothing scored for a match two hours out, got=%d", scored)
	}
}

func TestScoringService_AutoScoreReturnsRepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	repo := predictionmock.NewRepository(t)
	service := NewScoringService(repo, nil, 1)
	service.now = func() time.Time { return testNow }

	storageErr := errors.New("connection reset")
	repo.On("ListUnscoredByMatch", mock.Anything, "m1").Return(nil, storageErr).Once()

	candidates := []event.Event{
		matchEvent("e1", "m1", testNow.Add(-4*time.Hour), event.StateCompleted, finished("T1", event.OutcomeWin, 3), finished("GEN", event.OutcomeLoss, 0)),
	}
	scored, err := service.AutoScore(context.Background(), candidates)
	if !errors.Is(err, storageErr) {
		t.Fatalf("expected storage error, got=%v", err)
	}
	if scored != 0 {
		t.Fatalf("expected scored=0, got=%d", scored)
	}
}

func TestScoringService_AutoScoreCountsOnlyAppliedResultsUsingMockery(t *testing.T) {
	t.Parallel()

	repo := predictionmock.NewRepository(t)
	service := NewScoringService(repo, nil, 1)
	service.now = func() time.Time { return testNow }

	pending := []prediction.Prediction{
		{ID: "p1", UserID: "u1", MatchID: "m1", PredictedWinner: "T1", PredictedScore: "3-0"},
		{ID: "p2", UserID: "u2", MatchID: "m1", PredictedWinner: "GEN", PredictedScore: "0-3"},
	}
	repo.On("ListUnscoredByMatch", mock.Anything, "m1").Return(pending, nil).Once()
	repo.
		On("ApplyResult", mock.Anything, "p1", mock.MatchedBy(func(res prediction.Result) bool {
			return res.ScoreCorrect && res.PointsEarned == prediction.PointsExactScore && res.ActualScore == "3-0"
		})).
		Return(true, nil).
		Once()
	// scored concurrently by another pass
	repo.
		On("ApplyResult", mock.Anything, "p2", mock.MatchedBy(func(res prediction.Result) bool {
			return !res.WinnerCorrect && res.PointsEarned == 0
		})).
		Return(false, nil).
		Once()

	candidates := []event.Event{
		matchEvent("e1", "m1", testNow.Add(-4*time.Hour), event.StateCompleted, finished("T1", event.OutcomeWin, 3), finished("GEN", event.OutcomeLoss, 0)),
	}
	scored, err := service.AutoScore(context.Background(), candidates)
	if err != nil {
		t.Fatalf("auto score: %v", err)
	}
	if scored != 1 {
		t.Fatalf("expected scored=1, got=%d", scored)
	}
}
