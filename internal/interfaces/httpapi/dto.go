package httpapi

import (
	"math"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	"github.com/riskibarqy/esports-pickem/internal/domain/league"
	"github.com/riskibarqy/esports-pickem/internal/domain/prediction"
	"github.com/riskibarqy/esports-pickem/internal/domain/rating"
	"github.com/riskibarqy/esports-pickem/internal/domain/user"
	"github.com/riskibarqy/esports-pickem/internal/usecase"
)

type savePredictionRequest struct {
	Winner string `json:"winner" validate:"required,max=16"`
	Score  string `json:"score" validate:"required,max=8"`
}

type scheduleDTO struct {
	Events      []eventDTO `json:"events"`
	LastUpdated *time.Time `json:"lastUpdated"`
}

type leaguesDTO struct {
	Leagues     []leagueDTO `json:"leagues"`
	LastUpdated *time.Time  `json:"lastUpdated"`
}

type leagueDTO struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
	Region   string `json:"region,omitempty"`
	Priority int    `json:"priority"`
}

type eventDTO struct {
	ID        string      `json:"id"`
	StartTime time.Time   `json:"startTime"`
	State     string      `json:"state"`
	BlockName string      `json:"blockName,omitempty"`
	League    eventLeague `json:"league"`
	Match     *matchDTO   `json:"match,omitempty"`
}

type eventLeague struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type matchDTO struct {
	ID       string      `json:"id"`
	Teams    []teamDTO   `json:"teams"`
	Strategy strategyDTO `json:"strategy"`
}

type strategyDTO struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type teamDTO struct {
	Code   string     `json:"code"`
	Name   string     `json:"name"`
	Image  string     `json:"image,omitempty"`
	Result *resultDTO `json:"result,omitempty"`
}

type resultDTO struct {
	Outcome  *string `json:"outcome"`
	GameWins int     `json:"gameWins"`
}

type matchResultDTO struct {
	Event  eventDTO `json:"event"`
	Winner string   `json:"winner"`
	Score  string   `json:"score"`
}

type predictionDTO struct {
	ID              string     `json:"id"`
	MatchID         string     `json:"matchId"`
	EventStartTime  time.Time  `json:"eventStartTime"`
	LeagueSlug      string     `json:"leagueSlug,omitempty"`
	Team1Code       string     `json:"team1Code"`
	Team2Code       string     `json:"team2Code"`
	PredictedWinner string     `json:"predictedWinner"`
	PredictedScore  string     `json:"predictedScore"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	ActualWinner    *string    `json:"actualWinner"`
	ActualScore     *string    `json:"actualScore"`
	WinnerCorrect   *bool      `json:"winnerCorrect"`
	ScoreCorrect    *bool      `json:"scoreCorrect"`
	PointsEarned    *int       `json:"pointsEarned"`
	ScoredAt        *time.Time `json:"scoredAt"`
}

type predictionStatsDTO struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	WinnerCorrect  int     `json:"winnerCorrect"`
	WinnerAccuracy float64 `json:"winnerAccuracy"`
	ScoreCorrect   int     `json:"scoreCorrect"`
	ScoreAccuracy  float64 `json:"scoreAccuracy"`
	TotalPoints    int     `json:"totalPoints"`
}

type leaderboardEntryDTO struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	TotalPoints int    `json:"totalPoints"`
}

type teamRankingDTO struct {
	Rank      int     `json:"rank"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Rating    float64 `json:"rating"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	GamesWon  int     `json:"gamesWon"`
	GamesLost int     `json:"gamesLost"`
	WinRate   float64 `json:"winRate"`
}

type matchOddsDTO struct {
	Event       eventDTO      `json:"event"`
	Team1Win    float64       `json:"team1WinProbability"`
	Team2Win    float64       `json:"team2WinProbability"`
	Favorite    string        `json:"favorite"`
	Confidence  string        `json:"confidence"`
	Team1Rating float64       `json:"team1Rating"`
	Team2Rating float64       `json:"team2Rating"`
	Factors     oddsFactorDTO `json:"factors"`
}

type oddsFactorDTO struct {
	Elo        float64  `json:"elo"`
	HeadToHead *float64 `json:"headToHead"`
	WinRate    *float64 `json:"winRate"`
}

type cycleResultDTO struct {
	Cycle     string `json:"cycle"`
	Refreshed int    `json:"refreshed"`
	Scored    int    `json:"scored"`
}

func leagueToDTO(v league.League) leagueDTO {
	return leagueDTO{
		ID:       v.ID,
		Slug:     v.Slug,
		Name:     v.Name,
		Image:    v.Image,
		Region:   v.Region,
		Priority: v.Priority,
	}
}

func eventToDTO(v event.Event) eventDTO {
	out := eventDTO{
		ID:        v.ID,
		StartTime: v.StartTime,
		State:     string(v.State),
		BlockName: v.BlockName,
		League:    eventLeague{Name: v.LeagueName, Slug: v.LeagueSlug},
	}
	if v.Match == nil {
		return out
	}

	teams := make([]teamDTO, 0, len(v.Match.Teams))
	for _, t := range v.Match.Teams {
		item := teamDTO{Code: t.Code, Name: t.Name, Image: t.Image}
		if t.Result != nil {
			item.Result = &resultDTO{GameWins: t.Result.GameWins}
			if t.Result.Outcome != "" {
				outcome := string(t.Result.Outcome)
				item.Result.Outcome = &outcome
			}
		}
		teams = append(teams, item)
	}
	out.Match = &matchDTO{
		ID:       v.Match.ID,
		Teams:    teams,
		Strategy: strategyDTO{Type: v.Match.Strategy.Type, Count: v.Match.Strategy.Count},
	}
	return out
}

func eventsToDTO(items []event.Event) []eventDTO {
	out := make([]eventDTO, 0, len(items))
	for _, item := range items {
		out = append(out, eventToDTO(item))
	}
	return out
}

func matchResultToDTO(v usecase.MatchResult) matchResultDTO {
	return matchResultDTO{Event: eventToDTO(v.Event), Winner: v.Winner, Score: v.Score}
}

func predictionToDTO(v prediction.Prediction) predictionDTO {
	out := predictionDTO{
		ID:              v.ID,
		MatchID:         v.MatchID,
		EventStartTime:  v.EventStartTime,
		LeagueSlug:      v.LeagueSlug,
		Team1Code:       v.Team1Code,
		Team2Code:       v.Team2Code,
		PredictedWinner: v.PredictedWinner,
		PredictedScore:  v.PredictedScore,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
	if res := v.Result; res != nil {
		out.ActualWinner = &res.ActualWinner
		out.ActualScore = &res.ActualScore
		out.WinnerCorrect = &res.WinnerCorrect
		out.ScoreCorrect = &res.ScoreCorrect
		out.PointsEarned = &res.PointsEarned
		out.ScoredAt = &res.ScoredAt
	}
	return out
}

func predictionStatsToDTO(v prediction.Stats) predictionStatsDTO {
	return predictionStatsDTO{
		Total:          v.Total,
		Completed:      v.Completed,
		Pending:        v.Pending,
		WinnerCorrect:  v.WinnerCorrect,
		WinnerAccuracy: v.WinnerAccuracy,
		ScoreCorrect:   v.ScoreCorrect,
		ScoreAccuracy:  v.ScoreAccuracy,
		TotalPoints:    v.TotalPoints,
	}
}

func leaderboardToDTO(items []user.Account) []leaderboardEntryDTO {
	out := make([]leaderboardEntryDTO, 0, len(items))
	for i, item := range items {
		out = append(out, leaderboardEntryDTO{Rank: i + 1, UserID: item.UserID, TotalPoints: item.TotalPoints})
	}
	return out
}

func teamRankingsToDTO(items []rating.Team) []teamRankingDTO {
	out := make([]teamRankingDTO, 0, len(items))
	for i, t := range items {
		out = append(out, teamRankingDTO{
			Rank:      i + 1,
			Code:      t.Code,
			Name:      t.Name,
			Rating:    math.Round(t.Rating*10) / 10,
			Wins:      t.Wins,
			Losses:    t.Losses,
			GamesWon:  t.GamesWon,
			GamesLost: t.GamesLost,
			WinRate:   t.WinRate(),
		})
	}
	return out
}

func matchOddsToDTO(v usecase.MatchOdds) matchOddsDTO {
	return matchOddsDTO{
		Event:       eventToDTO(v.Event),
		Team1Win:    v.Odds.Team1Win,
		Team2Win:    v.Odds.Team2Win,
		Favorite:    v.Odds.Favorite,
		Confidence:  string(v.Odds.Confidence),
		Team1Rating: math.Round(v.Odds.Team1Rating*10) / 10,
		Team2Rating: math.Round(v.Odds.Team2Rating*10) / 10,
		Factors: oddsFactorDTO{
			Elo:        v.Odds.Elo,
			HeadToHead: v.Odds.HeadToHead,
			WinRate:    v.Odds.WinRate,
		},
	}
}
