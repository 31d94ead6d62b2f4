package prediction

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateID is returned by Upsert when a new pick reuses an id held by
// another user's pick.
var ErrDuplicateID = errors.New("prediction id already in use")

const (
	PointsExactScore    = 25
	PointsCorrectWinner = 10
)

// Prediction is a user's pick for one match. Result is nil until the match is
// scored; once set it never changes.
type Prediction struct {
	ID              string
	UserID          string
	MatchID         string
	EventStartTime  time.Time
	LeagueSlug      string
	Team1Code       string
	Team2Code       string
	PredictedWinner string
	// PredictedScore uses the positional "team1-team2" convention.
	PredictedScore string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Result         *Result
}

func (p Prediction) Scored() bool {
	return p.Result != nil
}

type Result struct {
	ActualWinner  string
	ActualScore   string
	WinnerCorrect bool
	ScoreCorrect  bool
	PointsEarned  int
	ScoredAt      time.Time
}

// Evaluate compares a pick against the actual winner and positional score.
// An exact score earns PointsExactScore and is not added to the winner points.
func Evaluate(p Prediction, actualWinner, actualScore string, at time.Time) Result {
	res := Result{
		ActualWinner:  actualWinner,
		ActualScore:   actualScore,
		WinnerCorrect: p.PredictedWinner == actualWinner,
		ScoreCorrect:  p.PredictedScore == actualScore,
		ScoredAt:      at,
	}
	switch {
	case res.ScoreCorrect:
		res.PointsEarned = PointsExactScore
	case res.WinnerCorrect:
		res.PointsEarned = PointsCorrectWinner
	}
	return res
}

type Repository interface {
	Get(ctx context.Context, userID, matchID string) (Prediction, bool, error)
	// Upsert inserts or edits the pick while it is unscored. Editing a scored
	// prediction returns false without changes.
	Upsert(ctx context.Context, p Prediction) (bool, error)
	// Delete removes an unscored pick and reports whether a row was removed.
	Delete(ctx context.Context, userID, matchID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]Prediction, error)
	ListUnscoredByMatch(ctx context.Context, matchID string) ([]Prediction, error)
	// ApplyResult stores res only if the prediction is still unscored and, in
	// the same transaction, recomputes the owner's total points as a sum over
	// scored predictions. It reports whether the prediction was newly scored.
	ApplyResult(ctx context.Context, predictionID string, res Result) (bool, error)
}
