package event

import (
	"sort"
	"time"
)

// CompletionGrace is how far past now a start time may be while a completed
// flag is still believed.
const CompletionGrace = time.Hour

// IsTrulyCompleted reports whether a completed flag is backed by evidence:
// the event has started (within grace), has two teams and a declared winner.
func IsTrulyCompleted(e Event, now time.Time) bool {
	if e.State != StateCompleted {
		return false
	}
	if e.StartTime.After(now.Add(CompletionGrace)) {
		return false
	}
	teams := e.Teams()
	if len(teams) < 2 {
		return false
	}
	for _, team := range teams {
		if team.Result != nil && team.Result.Outcome == OutcomeWin {
			return true
		}
	}
	return false
}

// CorrectedState downgrades a completed flag that lacks evidence. Every other
// reported state is returned unchanged.
func CorrectedState(e Event, now time.Time) State {
	if e.State != StateCompleted || IsTrulyCompleted(e, now) {
		return e.State
	}
	if e.StartTime.After(now.Add(CompletionGrace)) {
		return StateUnstarted
	}
	return StateInProgress
}

// WithCorrectedState returns a copy of events whose State is CorrectedState.
func WithCorrectedState(events []Event, now time.Time) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		e.State = CorrectedState(e, now)
		out[i] = e
	}
	return out
}

func displayRank(s State) int {
	switch s {
	case StateInProgress:
		return 0
	case StateUnstarted:
		return 1
	default:
		return 2
	}
}

// SortForDisplay orders live events first, then upcoming by start time, then
// completed most recent first. Ranking uses the corrected state.
func SortForDisplay(events []Event, now time.Time) {
	sort.SliceStable(events, func(i, j int) bool {
		ri, rj := displayRank(CorrectedState(events[i], now)), displayRank(CorrectedState(events[j], now))
		if ri != rj {
			return ri < rj
		}
		if ri == 2 {
			return events[i].StartTime.After(events[j].StartTime)
		}
		return events[i].StartTime.Before(events[j].StartTime)
	})
}
