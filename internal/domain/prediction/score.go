package prediction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidScore  = errors.New("invalid score")
	ErrInvalidWinner = errors.New("predicted winner is not playing in this match")
	ErrSameTeams     = errors.New("both sides of the match share one team code")
)

// NormalizeScore turns a score typed from the winner's perspective ("3-1", or
// "1-3" in either order) into the positional "team1-team2" form used by
// actual results. bestOf of 0 skips the series-length check.
func NormalizeScore(team1, team2, winner, raw string, bestOf int) (string, error) {
	if strings.EqualFold(strings.TrimSpace(team1), strings.TrimSpace(team2)) {
		return "", ErrSameTeams
	}

	var winnerIsTeam1 bool
	switch {
	case winner != "" && strings.EqualFold(winner, team1):
		winnerIsTeam1 = true
	case winner != "" && strings.EqualFold(winner, team2):
		winnerIsTeam1 = false
	default:
		return "", ErrInvalidWinner
	}

	a, b, err := parseScore(raw)
	if err != nil {
		return "", err
	}
	if a == b {
		return "", fmt.Errorf("%w: %q has no winner", ErrInvalidScore, raw)
	}
	winnerWins, loserWins := max(a, b), min(a, b)

	if bestOf > 0 {
		needed := bestOf/2 + 1
		if winnerWins != needed {
			return "", fmt.Errorf("%w: best of %d is won with %d games", ErrInvalidScore, bestOf, needed)
		}
		if loserWins >= needed {
			return "", fmt.Errorf("%w: %q", ErrInvalidScore, raw)
		}
	}

	if winnerIsTeam1 {
		return strconv.Itoa(winnerWins) + "-" + strconv.Itoa(loserWins), nil
	}
	return strconv.Itoa(loserWins) + "-" + strconv.Itoa(winnerWins), nil
}

func parseScore(raw string) (int, int, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q must look like 2-1", ErrInvalidScore, raw)
	}
	a, errA := strconv.Atoi(strings.TrimSpace(left))
	b, errB := strconv.Atoi(strings.TrimSpace(right))
	if errA != nil || errB != nil || a < 0 || b < 0 {
		return 0, 0, fmt.Errorf("%w: %q must look like 2-1", ErrInvalidScore, raw)
	}
	return a, b, nil
}
