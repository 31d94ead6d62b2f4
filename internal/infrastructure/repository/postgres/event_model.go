package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/esports-pickem/internal/domain/event"
)

type eventTableModel struct {
	ID         string         `db:"id"`
	MatchID    sql.NullString `db:"match_id"`
	LeagueSlug string         `db:"league_slug"`
	State      string         `db:"state"`
	StartTime  time.Time      `db:"start_time"`
	Payload    string         `db:"payload"`
	CachedAt   time.Time      `db:"cached_at"`
}

// eventPayload is the JSONB snapshot kept for display. Field names follow the
// upstream feed so rows stay readable in psql.
type eventPayload struct {
	ID        string        `json:"id"`
	StartTime time.Time     `json:"startTime"`
	State     string        `json:"state"`
	BlockName string        `json:"blockName,omitempty"`
	League    payloadLeague `json:"league"`
	Match     *payloadMatch `json:"match,omitempty"`
}

type payloadLeague struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type payloadMatch struct {
	ID       string          `json:"id"`
	Teams    []payloadTeam   `json:"teams"`
	Strategy payloadStrategy `json:"strategy"`
}

type payloadTeam struct {
	Code   string         `json:"code"`
	Name   string         `json:"name"`
	Image  string         `json:"image,omitempty"`
	Result *payloadResult `json:"result,omitempty"`
}

type payloadResult struct {
	Outcome  string `json:"outcome,omitempty"`
	GameWins int    `json:"gameWins"`
}

type payloadStrategy struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func toEventTableModel(ev event.Event, cachedAt time.Time) (eventTableModel, error) {
	payload := eventPayload{
		ID:        ev.ID,
		StartTime: ev.StartTime.UTC(),
		State:     string(ev.State),
		BlockName: ev.BlockName,
		League:    payloadLeague{Name: ev.LeagueName, Slug: ev.LeagueSlug},
	}
	if ev.Match != nil {
		m := &payloadMatch{
			ID:       ev.Match.ID,
			Teams:    make([]payloadTeam, 0, len(ev.Match.Teams)),
			Strategy: payloadStrategy{Type: ev.Match.Strategy.Type, Count: ev.Match.Strategy.Count},
		}
		for _, team := range ev.Match.Teams {
			pt := payloadTeam{Code: team.Code, Name: team.Name, Image: team.Image}
			if team.Result != nil {
				pt.Result = &payloadResult{Outcome: string(team.Result.Outcome), GameWins: team.Result.GameWins}
			}
			m.Teams = append(m.Teams, pt)
		}
		payload.Match = m
	}

	raw, err := sonic.MarshalString(payload)
	if err != nil {
		return eventTableModel{}, fmt.Errorf("encode event %s payload: %w", ev.ID, err)
	}

	return eventTableModel{
		ID:         ev.ID,
		MatchID:    nullString(ev.MatchID()),
		LeagueSlug: ev.LeagueSlug,
		State:      string(ev.State),
		StartTime:  ev.StartTime.UTC(),
		Payload:    raw,
		CachedAt:   cachedAt.UTC(),
	}, nil
}

func (m eventTableModel) toDomain() (event.Event, error) {
	var payload eventPayload
	if err := sonic.UnmarshalString(m.Payload, &payload); err != nil {
		return event.Event{}, fmt.Errorf("decode event %s payload: %w", m.ID, err)
	}

	ev := event.Event{
		ID:         m.ID,
		StartTime:  m.StartTime.UTC(),
		State:      event.State(m.State),
		BlockName:  payload.BlockName,
		LeagueName: payload.League.Name,
		LeagueSlug: m.LeagueSlug,
	}
	if payload.Match != nil {
		match := &event.Match{
			ID:       payload.Match.ID,
			Teams:    make([]event.Team, 0, len(payload.Match.Teams)),
			Strategy: event.Strategy{Type: payload.Match.Strategy.Type, Count: payload.Match.Strategy.Count},
		}
		for _, pt := range payload.Match.Teams {
			team := event.Team{Code: pt.Code, Name: pt.Name, Image: pt.Image}
			if pt.Result != nil {
				team.Result = &event.Result{Outcome: event.Outcome(pt.Result.Outcome), GameWins: pt.Result.GameWins}
			}
			match.Teams = append(match.Teams, team)
		}
		ev.Match = match
	}
	return ev, nil
}
