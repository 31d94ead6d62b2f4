package event

import (
	"strconv"
	"strings"
	"time"
)

// State is the lifecycle flag reported by the upstream schedule feed.
type State string

const (
	StateUnstarted  State = "unstarted"
	StateInProgress State = "inProgress"
	StateCompleted  State = "completed"
)

// Valid reports whether s is one of the states the store accepts.
func (s State) Valid() bool {
	switch s {
	case StateUnstarted, StateInProgress, StateCompleted:
		return true
	}
	return false
}

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

type Result struct {
	Outcome  Outcome
	GameWins int
}

type Team struct {
	Code   string
	Name   string
	Image  string
	Result *Result
}

// Strategy describes the series format, e.g. {Type: "bestOf", Count: 3}.
type Strategy struct {
	Type  string
	Count int
}

type Match struct {
	ID       string
	Teams    []Team
	Strategy Strategy
}

// Event is one scheduled slot from the upstream feed. Match is nil for
// placeholder events that carry no series.
type Event struct {
	ID         string
	StartTime  time.Time
	State      State
	BlockName  string
	LeagueName string
	LeagueSlug string
	Match      *Match
}

func (e Event) MatchID() string {
	if e.Match == nil {
		return ""
	}
	return e.Match.ID
}

// Teams returns the ordered participants, or nil when the event has no match.
func (e Event) Teams() []Team {
	if e.Match == nil {
		return nil
	}
	return e.Match.Teams
}

// HasTeam reports whether code belongs to one of the first two participants.
func (e Event) HasTeam(code string) bool {
	teams := e.Teams()
	if len(teams) < 2 || strings.TrimSpace(code) == "" {
		return false
	}
	return strings.EqualFold(teams[0].Code, code) || strings.EqualFold(teams[1].Code, code)
}

// PlaceholderTeamCode is what the feed shows until a bracket slot is decided.
const PlaceholderTeamCode = "TBD"

// HasConfirmedOpponents reports whether the first two participants are real,
// distinct teams.
func (e Event) HasConfirmedOpponents() bool {
	teams := e.Teams()
	if len(teams) < 2 {
		return false
	}
	a, b := strings.TrimSpace(teams[0].Code), strings.TrimSpace(teams[1].Code)
	if a == "" || b == "" || strings.EqualFold(a, b) {
		return false
	}
	return !strings.EqualFold(a, PlaceholderTeamCode) && !strings.EqualFold(b, PlaceholderTeamCode)
}

// BestOf returns the series length, or 0 when unknown.
func (e Event) BestOf() int {
	if e.Match == nil || e.Match.Strategy.Count <= 0 {
		return 0
	}
	return e.Match.Strategy.Count
}

// ActualResult derives the winner code and the positional "team1-team2" score.
// ok is false when fewer than two teams are present or nobody won.
func ActualResult(e Event) (winner string, score string, ok bool) {
	teams := e.Teams()
	if len(teams) < 2 {
		return "", "", false
	}
	for _, team := range teams {
		if team.Result != nil && team.Result.Outcome == OutcomeWin {
			winner = team.Code
			break
		}
	}
	if winner == "" {
		return "", "", false
	}
	return winner, strconv.Itoa(gameWins(teams[0])) + "-" + strconv.Itoa(gameWins(teams[1])), true
}

func gameWins(t Team) int {
	if t.Result == nil {
		return 0
	}
	return t.Result.GameWins
}
