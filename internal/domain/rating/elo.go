package rating

import (
	"math"
	"sort"
	"strings"
)

const (
	DefaultKFactor = 32.0
	InitialRating  = 1500.0

	// each game of series margin adds 10% to K
	marginWeight = 0.1
)

// Series is one decided match between two teams.
type Series struct {
	WinnerCode  string
	WinnerName  string
	LoserCode   string
	LoserName   string
	WinnerGames int
	LoserGames  int
}

// Team is a team's standing after training.
type Team struct {
	Code      string
	Name      string
	Rating    float64
	Wins      int
	Losses    int
	GamesWon  int
	GamesLost int
}

func (t Team) Matches() int { return t.Wins + t.Losses }

// WinRate is the share of series won, 0 when the team has not played.
func (t Team) WinRate() float64 {
	if t.Matches() == 0 {
		return 0
	}
	return float64(t.Wins) / float64(t.Matches())
}

type pair struct{ a, b string }

// Model is an Elo table plus head-to-head records, fed one series at a time
// in chronological order. It is not safe for concurrent use.
type Model struct {
	kFactor float64
	teams   map[string]*Team
	h2h     map[pair][2]int
}

func NewModel(kFactor float64) *Model {
	if kFactor <= 0 {
		kFactor = DefaultKFactor
	}
	return &Model{
		kFactor: kFactor,
		teams:   make(map[string]*Team),
		h2h:     make(map[pair][2]int),
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (m *Model) team(code, name string) *Team {
	t, ok := m.teams[code]
	if !ok {
		t = &Team{Code: code, Name: name, Rating: InitialRating}
		m.teams[code] = t
	}
	if name != "" {
		t.Name = name
	}
	return t
}

// ExpectedScore is the probability a team rated a beats a team rated b.
func ExpectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// Record applies one series. Series with a missing or shared team code are
// ignored and false is returned.
func (m *Model) Record(s Series) bool {
	winCode, loseCode := normalizeCode(s.WinnerCode), normalizeCode(s.LoserCode)
	if winCode == "" || loseCode == "" || winCode == loseCode {
		return false
	}

	winner, loser := m.team(winCode, s.WinnerName), m.team(loseCode, s.LoserName)
	expectedWin := ExpectedScore(winner.Rating, loser.Rating)
	margin := math.Abs(float64(s.WinnerGames - s.LoserGames))
	k := m.kFactor * (1 + marginWeight*margin)

	winner.Rating += k * (1 - expectedWin)
	loser.Rating -= k * (1 - expectedWin)

	winner.Wins++
	loser.Losses++
	winner.GamesWon += s.WinnerGames
	winner.GamesLost += s.LoserGames
	loser.GamesWon += s.LoserGames
	loser.GamesLost += s.WinnerGames

	key, winnerFirst := orderedPair(winCode, loseCode)
	rec := m.h2h[key]
	if winnerFirst {
		rec[0]++
	} else {
		rec[1]++
	}
	m.h2h[key] = rec
	return true
}

func orderedPair(a, b string) (pair, bool) {
	if a < b {
		return pair{a, b}, true
	}
	return pair{b, a}, false
}

// Rating returns InitialRating for teams the model has not seen.
func (m *Model) Rating(code string) float64 {
	if t, ok := m.teams[normalizeCode(code)]; ok {
		return t.Rating
	}
	return InitialRating
}

// Lookup returns a copy of the team's standing.
func (m *Model) Lookup(code string) (Team, bool) {
	t, ok := m.teams[normalizeCode(code)]
	if !ok {
		return Team{}, false
	}
	return *t, true
}

// HeadToHead returns series won by team1 and by team2 against each other.
func (m *Model) HeadToHead(team1, team2 string) (int, int) {
	a, b := normalizeCode(team1), normalizeCode(team2)
	if a == b {
		return 0, 0
	}
	key, team1First := orderedPair(a, b)
	rec := m.h2h[key]
	if team1First {
		return rec[0], rec[1]
	}
	return rec[1], rec[0]
}

// Rankings lists teams by rating, highest first, ties broken by code. A
// limit of 0 or less returns every team.
func (m *Model) Rankings(limit int) []Team {
	out := make([]Team, 0, len(m.teams))
	for _, t := range m.teams {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Code < out[j].Code
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
