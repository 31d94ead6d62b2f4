package rating

import "math"

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

const (
	weightElo        = 0.5
	weightHeadToHead = 0.25
	weightWinRate    = 0.25

	highConfidenceGap   = 0.3
	mediumConfidenceGap = 0.15
)

// Odds is a blended pre-match estimate. HeadToHead and WinRate are nil when
// there was no data for them; a missing factor counts as a coin flip.
type Odds struct {
	Team1Code   string
	Team2Code   string
	Team1Win    float64
	Team2Win    float64
	Favorite    string
	Confidence  Confidence
	Elo         float64
	HeadToHead  *float64
	WinRate     *float64
	Team1Rating float64
	Team2Rating float64
}

// Predict blends the Elo expectation with the head-to-head record and the
// relative win rate of both teams.
func (m *Model) Predict(team1, team2 string) Odds {
	r1, r2 := m.Rating(team1), m.Rating(team2)
	odds := Odds{
		Team1Code:   normalizeCode(team1),
		Team2Code:   normalizeCode(team2),
		Elo:         ExpectedScore(r1, r2),
		Team1Rating: r1,
		Team2Rating: r2,
	}

	h2h := 0.5
	if w1, w2 := m.HeadToHead(team1, team2); w1+w2 > 0 {
		h2h = float64(w1) / float64(w1+w2)
		odds.HeadToHead = &h2h
	}

	form := 0.5
	t1, ok1 := m.Lookup(team1)
	t2, ok2 := m.Lookup(team2)
	if ok1 && ok2 {
		if sum := t1.WinRate() + t2.WinRate(); sum > 0 {
			form = t1.WinRate() / sum
		}
		odds.WinRate = &form
	}

	odds.Team1Win = weightElo*odds.Elo + weightHeadToHead*h2h + weightWinRate*form
	odds.Team2Win = 1 - odds.Team1Win

	odds.Favorite = odds.Team2Code
	if odds.Team1Win > odds.Team2Win {
		odds.Favorite = odds.Team1Code
	}

	switch gap := math.Abs(odds.Team1Win - odds.Team2Win); {
	case gap > highConfidenceGap:
		odds.Confidence = ConfidenceHigh
	case gap > mediumConfidenceGap:
		odds.Confidence = ConfidenceMedium
	default:
		odds.Confidence = ConfidenceLow
	}
	return odds
}
