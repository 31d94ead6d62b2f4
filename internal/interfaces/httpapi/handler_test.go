package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	"github.com/riskibarqy/esports-pickem/internal/domain/league"
	"github.com/riskibarqy/esports-pickem/internal/domain/user"
	"github.com/riskibarqy/esports-pickem/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/esports-pickem/internal/platform/id"
	"github.com/riskibarqy/esports-pickem/internal/platform/logging"
	"github.com/riskibarqy/esports-pickem/internal/usecase"
)

const testJobToken = "job-secret"

type feedStub struct {
	events  []event.Event
	leagues []league.League
}

func (f *feedStub) FetchSchedule(context.Context) ([]event.Event, error) {
	return f.events, nil
}

func (f *feedStub) FetchLeagues(context.Context) ([]league.League, error) {
	return f.leagues, nil
}

type tokenVerifierStub map[string]string

func (s tokenVerifierStub) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	userID, ok := s[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return user.Principal{UserID: userID}, nil
}

func bestOfThree(id, matchID string, start time.Time, state event.State, teams ...event.Team) event.Event {
	return event.Event{
		ID:         id,
		StartTime:  start,
		State:      state,
		BlockName:  "Week 1",
		LeagueName: "LCK",
		LeagueSlug: "lck",
		Match: &event.Match{
			ID:       matchID,
			Teams:    teams,
			Strategy: event.Strategy{Type: "bestOf", Count: 3},
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	now := time.Now().UTC()
	feed := &feedStub{
		events: []event.Event{
			bestOfThree("e-upcoming", "m-upcoming", now.Add(48*time.Hour), event.StateUnstarted,
				event.Team{Code: "T1", Name: "T1"}, event.Team{Code: "GEN", Name: "Gen.G"}),
			bestOfThree("e-done", "m-done", now.Add(-3*time.Hour), event.StateCompleted,
				event.Team{Code: "HLE", Name: "Hanwha Life", Result: &event.Result{Outcome: event.OutcomeWin, GameWins: 2}},
				event.Team{Code: "DK", Name: "Dplus KIA", Result: &event.Result{Outcome: event.OutcomeLoss, GameWins: 1}}),
		},
		leagues: []league.League{{ID: "98767991310872058", Slug: "lck", Name: "LCK", Region: "KOREA", Priority: 1}},
	}

	logger := logging.NewNop()
	users := memory.NewUserRepository()
	events := memory.NewEventRepository()
	predictions := memory.NewPredictionRepository(users)

	syncSvc := usecase.NewScheduleSyncService(feed, events, memory.NewLeagueRepository(nil), memory.NewCacheMetadataRepository(), logger)
	scoringSvc := usecase.NewScoringService(predictions, logger, 2)
	predictionSvc := usecase.NewPredictionService(events, predictions, users, idgen.NewUUIDGenerator())
	ratingSvc := usecase.NewRatingService(events, 0, logger)
	poller := usecase.NewPoller(syncSvc, scoringSvc, logger, usecase.PollerConfig{})

	handler := NewHandler(syncSvc, predictionSvc, ratingSvc, poller, logger)
	verifier := tokenVerifierStub{"token-u1": "u1"}
	return NewRouter(handler, verifier, logger, false, []string{"*"}, testJobToken)
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode %s %s response: %v (body=%s)", method, path, err, rec.Body.String())
	}
	return rec, decoded
}

func syncSchedule(t *testing.T, router http.Handler) map[string]any {
	t.Helper()
	rec, body := doRequest(t, router, http.MethodPost, "/v1/internal/jobs/sync-schedule", "", "", map[string]string{
		"X-Internal-Job-Token": testJobToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected sync status=%d, got=%d body=%v", http.StatusOK, rec.Code, body)
	}
	return body["data"].(map[string]any)
}

func TestRouter_ScheduleIsUnavailableUntilFirstSync(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec, body := doRequest(t, router, http.MethodGet, "/v1/schedule", "", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status=%d before first sync, got=%d body=%v", http.StatusServiceUnavailable, rec.Code, body)
	}

	data := syncSchedule(t, router)
	if data["refreshed"].(float64) != 2 {
		t.Fatalf("expected refreshed=2, got=%v", data["refreshed"])
	}

	rec, body = doRequest(t, router, http.MethodGet, "/v1/schedule?league=LCK", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status=%d, got=%d body=%v", http.StatusOK, rec.Code, body)
	}
	schedule := body["data"].(map[string]any)
	events := schedule["events"].([]any)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got=%d", len(events))
	}
	if schedule["lastUpdated"] == nil {
		t.Fatalf("expected lastUpdated after sync")
	}
}

func TestRouter_InternalJobRequiresToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec, _ := doRequest(t, router, http.MethodPost, "/v1/internal/jobs/sync-schedule", "", "", map[string]string{
		"X-Internal-Job-Token": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status=%d, got=%d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRouter_RecentResultsAndUpcoming(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	syncSchedule(t, router)

	rec, body := doRequest(t, router, http.MethodGet, "/v1/matches/recent?limit=5", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status=%d, got=%d body=%v", http.StatusOK, rec.Code, body)
	}
	results := body["data"].([]any)
	if len(results) != 1 {
		t.Fatalf("expected 1 recent result, got=%d", len(results))
	}
	first := results[0].(map[string]any)
	if first["winner"] != "HLE" || first["score"] != "2-1" {
		t.Fatalf("unexpected recent result: %v", first)
	}

	rec, body = doRequest(t, router, http.MethodGet, "/v1/matches/upcoming?league=lck", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status=%d, got=%d body=%v", http.StatusOK, rec.Code, body)
	}
	if upcoming := body["data"].([]any); len(upcoming) != 1 {
		t.Fatalf("expected 1 upcoming match, got=%d", len(upcoming))
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/matches/recent?limit=abc", "", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status=%d for bad limit, got=%d", http.StatusBadRequest, rec.Code)
	}
}

func TestRouter_PredictionLifecycle(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	syncSchedule(t, router)

	rec, _ := doRequest(t, router, http.MethodGet, "/v1/predictions/me", "", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status=%d without token, got=%d", http.StatusUnauthorized, rec.Code)
	}

	rec, body := doRequest(t, router, http.MethodPut, "/v1/predictions/m-upcoming", "token-u1", `{"winner":"gen","score":"2-0"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status=%d, got=%d body=%v", http.StatusOK, rec.Code, body)
	}
	saved := body["data"].(map[string]any)
	if saved["predictedWinner"] != "GEN" {
		t.Fatalf("expected canonical winner GEN, got=%v", saved["predictedWinner"])
	}
	if saved["predictedScore"] != "0-2" {
		t.Fatalf("expected positional score 0-2, got=%v", saved["predictedScore"])
	}
	if saved["pointsEarned"] != nil {
		t.Fatalf("expected unscored prediction, got points=%v", saved["pointsEarned"])
	}

	rec, body = doRequest(t, router, http.MethodPut, "/v1/predictions/m-done", "token-u1", `{"winner":"HLE","score":"2-1"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status=%d for started match, got=%d body=%v", http.StatusConflict, rec.Code, body)
	}

	rec, _ = doRequest(t, router, http.MethodPut, "/v1/predictions/m-upcoming", "token-u1", `{"winner":"T1","score":"2-0","stake":5}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status=%d for unknown field, got=%d", http.StatusBadRequest, rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodPut, "/v1/predictions/m-missing", "token-u1", `{"winner":"T1","score":"2-0"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status=%d for unknown match, got=%d", http.StatusNotFound, rec.Code)
	}

	rec, body = doRequest(t, router, http.MethodGet, "/v1/predictions/me", "token-u1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status=%d, got=%d body=%v", http.StatusOK, rec.Code, body)
	}
	if mine := body["data"].([]any); len(mine) != 1 {
		t.Fatalf("expected 1 prediction, got=%d", len(mine))
	}

	rec, body = doRequest(t, router, http.MethodGet, "/v1/predictions/me/stats", "token-u1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status=%d, got=%d body=%v", http.StatusOK, rec.Code, body)
	}
	stats := body["data"].(map[string]any)
	if stats["total"].(float64) != 1 || stats["pending"].(float64) != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	rec, _ = doRequest(t, router, http.MethodDelete, "/v1/predictions/m-upcoming", "token-u1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status=%d on delete, got=%d", http.StatusOK, rec.Code)
	}

	rec, body = doRequest(t, router, http.MethodGet, "/v1/leaderboard", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status=%d, got=%d body=%v", http.StatusOK, rec.Code, body)
	}
}

func TestRouter_TeamRankingsAndMatchOdds(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	syncSchedule(t, router)

	rec, body := doRequest(t, router, http.MethodGet, "/v1/teams/rankings?league=lck", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected rankings status=%d, got=%d body=%v", http.StatusOK, rec.Code, body)
	}
	rankings := body["data"].([]any)
	if len(rankings) != 2 {
		t.Fatalf("expected the two teams of the finished match, got=%v", rankings)
	}
	top := rankings[0].(map[string]any)
	if top["code"] != "HLE" || top["rank"].(float64) != 1 || top["wins"].(float64) != 1 {
		t.Fatalf("expected HLE ranked first, got=%v", top)
	}
	if top["rating"].(float64) <= 1500 {
		t.Fatalf("expected winner above the starting rating, got=%v", top["rating"])
	}

	rec, body = doRequest(t, router, http.MethodGet, "/v1/matches/m-upcoming/odds", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected odds status=%d, got=%d body=%v", http.StatusOK, rec.Code, body)
	}
	odds := body["data"].(map[string]any)
	if odds["team1WinProbability"].(float64) != 0.5 || odds["confidence"] != "low" {
		t.Fatalf("expected even odds for unrated teams, got=%v", odds)
	}
	factors := odds["factors"].(map[string]any)
	if factors["headToHead"] != nil {
		t.Fatalf("expected no head-to-head factor, got=%v", factors["headToHead"])
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/matches/m-missing/odds", "", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status=%d for unknown match, got=%d", http.StatusNotFound, rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/teams/rankings?limit=abc", "", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status=%d for bad limit, got=%d", http.StatusBadRequest, rec.Code)
	}
}
