package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	"github.com/riskibarqy/esports-pickem/internal/domain/league"
	"github.com/riskibarqy/esports-pickem/internal/domain/prediction"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func matchEvent(id, matchID string, start time.Time) event.Event {
	return event.Event{
		ID:        id,
		StartTime: start,
		State:     event.StateUnstarted,
		Match:     &event.Match{ID: matchID, Teams: []event.Team{{Code: "T1"}, {Code: "GEN"}}},
	}
}

func TestEventRepository_ReplaceByMatchPurgesReassignedID(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()

	if _, err := repo.ReplaceByMatch(ctx, []event.Event{matchEvent("e1", "m1", now.Add(time.Hour))}, now); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if _, err := repo.ReplaceByMatch(ctx, []event.Event{matchEvent("e2", "m1", now.Add(time.Hour))}, now.Add(2*time.Minute)); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	items, err := repo.ListWindow(ctx, now.Add(-7*24*time.Hour), now.Add(14*24*time.Hour))
	if err != nil {
		t.Fatalf("list window: %v", err)
	}
	if len(items) != 1 || items[0].ID != "e2" {
		t.Fatalf("expected only e2 for match m1, got=%+v", items)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected stale row purged, rows=%d", len(repo.rows))
	}
}

func TestEventRepository_ReplaceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	batch := []event.Event{
		matchEvent("e1", "m1", now.Add(time.Hour)),
		matchEvent("e2", "m2", now.Add(2*time.Hour)),
		{ID: "e3", StartTime: now.Add(3 * time.Hour), State: event.StateUnstarted},
	}

	for i := range 2 {
		n, err := repo.ReplaceByMatch(ctx, batch, now)
		if err != nil {
			t.Fatalf("replace #%d: %v", i, err)
		}
		if n != 3 {
			t.Fatalf("expected 3 written, got=%d", n)
		}
	}

	items, err := repo.ListWindow(ctx, now.Add(-time.Hour), now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("list window: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 events, got=%d", len(items))
	}
	if items[0].ID != "e1" || items[2].ID != "e3" {
		t.Fatalf("expected start time order, got=%s,%s,%s", items[0].ID, items[1].ID, items[2].ID)
	}
}

func TestEventRepository_ListWindowBounds(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	_, _ = repo.ReplaceByMatch(ctx, []event.Event{
		matchEvent("old", "m-old", now.Add(-8*24*time.Hour)),
		matchEvent("soon", "m-soon", now.Add(13*24*time.Hour)),
		matchEvent("far", "m-far", now.Add(15*24*time.Hour)),
	}, now)

	items, err := repo.ListWindow(ctx, now.Add(-7*24*time.Hour), now.Add(14*24*time.Hour))
	if err != nil {
		t.Fatalf("list window: %v", err)
	}
	if len(items) != 1 || items[0].ID != "soon" {
		t.Fatalf("expected only the +13d event, got=%+v", items)
	}
}

func TestEventRepository_GetByMatchID(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	_, _ = repo.ReplaceByMatch(ctx, []event.Event{matchEvent("e1", "m1", now)}, now)

	got, ok, err := repo.GetByMatchID(ctx, "m1")
	if err != nil || !ok || got.ID != "e1" {
		t.Fatalf("expected e1, got=%+v ok=%v err=%v", got, ok, err)
	}
	if _, ok, _ := repo.GetByMatchID(ctx, "missing"); ok {
		t.Fatalf("did not expect missing match to be found")
	}
}

func TestLeagueRepository_ListOrderedByName(t *testing.T) {
	repo := NewLeagueRepository(nil)
	_, _ = repo.UpsertAll(context.Background(), []league.League{
		{ID: "3", Name: "LPL"},
		{ID: "1", Name: "LCK"},
		{ID: "2", Name: "LEC"},
	}, now)

	items, _ := repo.List(context.Background())
	if len(items) != 3 || items[0].Name != "LCK" || items[1].Name != "LEC" || items[2].Name != "LPL" {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestCacheMetadataRepository_SuccessClearsError(t *testing.T) {
	ctx := context.Background()
	repo := NewCacheMetadataRepository()

	_ = repo.RecordFailure(ctx, "schedule", now, "status 503")
	meta, ok, _ := repo.Get(ctx, "schedule")
	if !ok || meta.FetchCount != 1 || meta.LastError != "status 503" || meta.LastSuccess != nil {
		t.Fatalf("unexpected meta after failure: %+v", meta)
	}

	later := now.Add(2 * time.Minute)
	_ = repo.RecordSuccess(ctx, "schedule", later)
	meta, _, _ = repo.Get(ctx, "schedule")
	if meta.FetchCount != 2 || meta.LastError != "" || meta.LastSuccess == nil || !meta.LastSuccess.Equal(later) {
		t.Fatalf("unexpected meta after success: %+v", meta)
	}
}

func TestPredictionRepository_ApplyResultRecomputesTotal(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository()
	repo := NewPredictionRepository(users)

	for _, p := range []prediction.Prediction{
		{ID: "p1", UserID: "u1", MatchID: "m1", PredictedWinner: "A", PredictedScore: "3-1"},
		{ID: "p2", UserID: "u1", MatchID: "m2", PredictedWinner: "A", PredictedScore: "3-0"},
	} {
		if _, err := repo.Upsert(ctx, p); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	if ok, _ := repo.ApplyResult(ctx, "p1", prediction.Result{ActualWinner: "A", ActualScore: "3-1", WinnerCorrect: true, ScoreCorrect: true, PointsEarned: 25}); !ok {
		t.Fatalf("expected p1 to be scored")
	}
	if ok, _ := repo.ApplyResult(ctx, "p2", prediction.Result{ActualWinner: "A", ActualScore: "3-1", WinnerCorrect: true, PointsEarned: 10}); !ok {
		t.Fatalf("expected p2 to be scored")
	}
	if ok, _ := repo.ApplyResult(ctx, "p1", prediction.Result{ActualWinner: "B", PointsEarned: 0}); ok {
		t.Fatalf("expected second scoring of p1 to be a no-op")
	}

	_, _ = repo.Upsert(ctx, prediction.Prediction{ID: "p3", UserID: "u1", MatchID: "m3", PredictedWinner: "C", PredictedScore: "2-0"})

	acc, ok, _ := users.Get(ctx, "u1")
	if !ok || acc.TotalPoints != 35 {
		t.Fatalf("expected total=35, got=%d (ok=%v)", acc.TotalPoints, ok)
	}

	scored, _, _ := repo.Get(ctx, "u1", "m1")
	if scored.Result == nil || scored.Result.ActualWinner != "A" {
		t.Fatalf("expected first result to be kept, got=%+v", scored.Result)
	}
}

func TestPredictionRepository_ScoredIsImmutable(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionRepository(nil)
	_, _ = repo.Upsert(ctx, prediction.Prediction{ID: "p1", UserID: "u1", MatchID: "m1", PredictedWinner: "A", PredictedScore: "2-1"})
	_, _ = repo.ApplyResult(ctx, "p1", prediction.Result{ActualWinner: "A", ActualScore: "2-1", PointsEarned: 25})

	if ok, _ := repo.Upsert(ctx, prediction.Prediction{ID: "p9", UserID: "u1", MatchID: "m1", PredictedWinner: "B", PredictedScore: "1-2"}); ok {
		t.Fatalf("expected edit of scored prediction to be refused")
	}
	if ok, _ := repo.Delete(ctx, "u1", "m1"); ok {
		t.Fatalf("expected delete of scored prediction to be refused")
	}
	got, _, _ := repo.Get(ctx, "u1", "m1")
	if got.PredictedWinner != "A" {
		t.Fatalf("expected original pick to remain, got=%s", got.PredictedWinner)
	}
}

func TestPredictionRepository_UpsertKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionRepository(nil)
	_, _ = repo.Upsert(ctx, prediction.Prediction{ID: "p1", UserID: "u1", MatchID: "m1", PredictedWinner: "A", PredictedScore: "2-1"})
	_, _ = repo.Upsert(ctx, prediction.Prediction{ID: "p2", UserID: "u1", MatchID: "m1", PredictedWinner: "B", PredictedScore: "0-2"})

	items, _ := repo.ListByUser(ctx, "u1")
	if len(items) != 1 || items[0].ID != "p1" || items[0].PredictedWinner != "B" {
		t.Fatalf("expected edited p1, got=%+v", items)
	}
}

func TestPredictionRepository_UpsertRejectsForeignID(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionRepository(nil)
	_, _ = repo.Upsert(ctx, prediction.Prediction{ID: "p1", UserID: "u1", MatchID: "m1", PredictedWinner: "A", PredictedScore: "2-1"})

	_, err := repo.Upsert(ctx, prediction.Prediction{ID: "p1", UserID: "u2", MatchID: "m1", PredictedWinner: "B", PredictedScore: "0-2"})
	if !errors.Is(err, prediction.ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got=%v", err)
	}
	if _, found, _ := repo.Get(ctx, "u2", "m1"); found {
		t.Fatalf("rejected pick must not be stored")
	}
}
