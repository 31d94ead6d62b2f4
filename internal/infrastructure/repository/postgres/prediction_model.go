package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/prediction"
)

type predictionTableModel struct {
	ID              string         `db:"id"`
	UserID          string         `db:"user_id"`
	MatchID         string         `db:"match_id"`
	EventStartTime  time.Time      `db:"event_start_time"`
	LeagueSlug      string         `db:"league_slug"`
	Team1Code       string         `db:"team1_code"`
	Team2Code       string         `db:"team2_code"`
	PredictedWinner string         `db:"predicted_winner"`
	PredictedScore  string         `db:"predicted_score"`
	ActualWinner    sql.NullString `db:"actual_winner"`
	ActualScore     sql.NullString `db:"actual_score"`
	WinnerCorrect   sql.NullBool   `db:"winner_correct"`
	ScoreCorrect    sql.NullBool   `db:"score_correct"`
	PointsEarned    sql.NullInt64  `db:"points_earned"`
	ScoredAt        *time.Time     `db:"scored_at"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

var predictionColumns = []string{
	"id", "user_id", "match_id", "event_start_time", "league_slug",
	"team1_code", "team2_code", "predicted_winner", "predicted_score",
	"actual_winner", "actual_score", "winner_correct", "score_correct", "points_earned", "scored_at",
	"created_at", "updated_at",
}

func (m predictionTableModel) toDomain() prediction.Prediction {
	out := prediction.Prediction{
		ID:              m.ID,
		UserID:          m.UserID,
		MatchID:         m.MatchID,
		EventStartTime:  m.EventStartTime,
		LeagueSlug:      m.LeagueSlug,
		Team1Code:       m.Team1Code,
		Team2Code:       m.Team2Code,
		PredictedWinner: m.PredictedWinner,
		PredictedScore:  m.PredictedScore,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	// The actual group is all null or all set; actual_winner decides.
	if m.ActualWinner.Valid {
		res := &prediction.Result{
			ActualWinner:  m.ActualWinner.String,
			ActualScore:   m.ActualScore.String,
			WinnerCorrect: m.WinnerCorrect.Bool,
			ScoreCorrect:  m.ScoreCorrect.Bool,
			PointsEarned:  int(m.PointsEarned.Int64),
		}
		if m.ScoredAt != nil {
			res.ScoredAt = *m.ScoredAt
		}
		out.Result = res
	}
	return out
}
