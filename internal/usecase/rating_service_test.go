package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	"github.com/riskibarqy/esports-pickem/internal/infrastructure/repository/memory"
)

func newRatingFixture(t *testing.T) *RatingService {
	t.Helper()

	lec := matchEvent("e-lec", "m-lec", testNow.Add(-10*time.Hour), event.StateCompleted,
		finished("G2", event.OutcomeWin, 3), finished("FNC", event.OutcomeLoss, 0))
	lec.LeagueSlug = "lec"

	events := memory.NewEventRepository()
	_, err := events.ReplaceByMatch(context.Background(), []event.Event{
		matchEvent("e1", "m1", testNow.Add(-48*time.Hour), event.StateCompleted,
			finished("T1", event.OutcomeWin, 3), finished("GEN", event.OutcomeLoss, 1)),
		matchEvent("e2", "m2", testNow.Add(-24*time.Hour), event.StateCompleted,
			finished("T1", event.OutcomeLoss, 2), finished("GEN", event.OutcomeWin, 3)),
		// flagged completed ahead of its start time
		matchEvent("e3", "m3", testNow.Add(5*time.Hour), event.StateCompleted,
			finished("HLE", event.OutcomeWin, 3), finished("DK", event.OutcomeLoss, 0)),
		matchEvent("e4", "m4", testNow.Add(-30*time.Hour), event.StateCompleted,
			finished("TBD", event.OutcomeWin, 3), finished("TBD", event.OutcomeLoss, 0)),
		matchEvent("e5", "m-next", testNow.Add(6*time.Hour), event.StateUnstarted, team("T1"), team("GEN")),
		matchEvent("e6", "m-bracket", testNow.Add(72*time.Hour), event.StateUnstarted, team("TBD"), team("TBD")),
		lec,
	}, testNow)
	if err != nil {
		t.Fatalf("seed events: %v", err)
	}

	service := NewRatingService(events, 0, nil)
	service.now = func() time.Time { return testNow }
	return service
}

func TestRatingService_RankingsUseTrulyCompletedMatches(t *testing.T) {
	t.Parallel()

	service := newRatingFixture(t)

	got, err := service.Rankings(context.Background(), "lck", 0)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected only T1 and GEN to be rated, got=%+v", got)
	}
	// GEN won the later upset against a higher rated T1.
	if got[0].Code != "GEN" || got[1].Code != "T1" {
		t.Fatalf("expected GEN ahead of T1, got=%+v", got)
	}
	if got[0].Wins != 1 || got[0].Losses != 1 || got[0].GamesWon != 4 || got[0].GamesLost != 5 {
		t.Fatalf("unexpected GEN record: %+v", got[0])
	}

	all, err := service.Rankings(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if len(all) != 4 || all[0].Code != "G2" {
		t.Fatalf("expected G2 on top of every league, got=%+v", all)
	}

	limited, err := service.Rankings(context.Background(), "", 1)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got=%d", len(limited))
	}
}

func TestRatingService_MatchOdds(t *testing.T) {
	t.Parallel()

	service := newRatingFixture(t)

	got, err := service.MatchOdds(context.Background(), " m-next ")
	if err != nil {
		t.Fatalf("match odds: %v", err)
	}
	if got.Event.MatchID() != "m-next" {
		t.Fatalf("unexpected event: %+v", got.Event)
	}
	if got.Odds.HeadToHead == nil || *got.Odds.HeadToHead != 0.5 {
		t.Fatalf("expected split head-to-head, got=%v", got.Odds.HeadToHead)
	}
	if got.Odds.Favorite != "GEN" || got.Odds.Team1Win >= 0.5 {
		t.Fatalf("expected GEN favored, got=%+v", got.Odds)
	}
}

func TestRatingService_MatchOddsRejectsUnknownOrUndecidedMatches(t *testing.T) {
	t.Parallel()

	service := newRatingFixture(t)
	cases := []struct {
		name    string
		matchID string
		want    error
	}{
		{name: "blank", matchID: "  ", want: ErrInvalidInput},
		{name: "missing", matchID: "m-gone", want: ErrNotFound},
		{name: "placeholder opponents", matchID: "m-bracket", want: ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.MatchOdds(context.Background(), tc.matchID); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got=%v", tc.want, err)
			}
		})
	}
}
