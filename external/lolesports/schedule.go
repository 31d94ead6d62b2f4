package lolesports

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	"github.com/riskibarqy/esports-pickem/internal/domain/league"
	"github.com/riskibarqy/esports-pickem/internal/usecase"
)

type scheduleResponse struct {
	Data struct {
		Schedule struct {
			Pages  schedulePages `json:"pages"`
			Events []wireEvent   `json:"events"`
		} `json:"schedule"`
	} `json:"data"`
}

type schedulePages struct {
	Older string `json:"older"`
	Newer string `json:"newer"`
}

type wireEvent struct {
	ID        string     `json:"id"`
	StartTime string     `json:"startTime"`
	State     string     `json:"state"`
	Type      string     `json:"type"`
	BlockName string     `json:"blockName"`
	League    wireLeague `json:"league"`
	Match     *wireMatch `json:"match"`
}

type wireMatch struct {
	ID       string       `json:"id"`
	Teams    []wireTeam   `json:"teams"`
	Strategy wireStrategy `json:"strategy"`
}

type wireTeam struct {
	Name   string      `json:"name"`
	Code   string      `json:"code"`
	Image  string      `json:"image"`
	Result *wireResult `json:"result"`
}

type wireResult struct {
	Outcome  *string `json:"outcome"`
	GameWins int     `json:"gameWins"`
}

type wireStrategy struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type wireLeague struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Region   string `json:"region"`
	Image    string `json:"image"`
	Priority int    `json:"priority"`
}

type leaguesResponse struct {
	Data struct {
		Leagues []wireLeague `json:"leagues"`
	} `json:"data"`
}

// FetchSchedule walks the schedule forward from the current page. It stops when
// there is no newer page, when MaxPages requests were made, or once the latest
// page already starts past the horizon.
func (c *Client) FetchSchedule(ctx context.Context) ([]event.Event, error) {
	horizon := c.now().Add(c.horizon)

	var (
		out   []event.Event
		token string
	)
	for page := 1; ; page++ {
		query := url.Values{}
		if token != "" {
			query.Set("pageToken", token)
		}

		var resp scheduleResponse
		if err := c.doJSON(ctx, "getSchedule", query, &resp); err != nil {
			return nil, err
		}

		events, err := c.mapEvents(ctx, resp.Data.Schedule.Events)
		if err != nil {
			return nil, fmt.Errorf("%w: getSchedule page %d: %w", usecase.ErrUpstream, page, err)
		}
		out = append(out, events...)

		newer := strings.TrimSpace(resp.Data.Schedule.Pages.Newer)
		latest := latestStart(events)
		c.logger.DebugContext(ctx, "fetched schedule page", "page", page, "events", len(events), "latest_start", latest)

		if newer == "" || page >= c.maxPages || latest.After(horizon) {
			break
		}
		token = newer
	}

	return out, nil
}

func (c *Client) FetchLeagues(ctx context.Context) ([]league.League, error) {
	var resp leaguesResponse
	if err := c.doJSON(ctx, "getLeagues", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]league.League, 0, len(resp.Data.Leagues))
	for _, item := range resp.Data.Leagues {
		lg := league.League{
			ID:       strings.TrimSpace(item.ID),
			Slug:     strings.TrimSpace(item.Slug),
			Name:     strings.TrimSpace(item.Name),
			Image:    item.Image,
			Region:   item.Region,
			Priority: item.Priority,
		}
		if err := lg.Validate(); err != nil {
			c.logger.WarnContext(ctx, "skip invalid league from feed", "league_id", item.ID, "error", err)
			continue
		}
		out = append(out, lg)
	}
	return out, nil
}

// mapEvents drops events whose state the store would reject; one unknown state
// must not block the rest of the page.
func (c *Client) mapEvents(ctx context.Context, items []wireEvent) ([]event.Event, error) {
	out := make([]event.Event, 0, len(items))
	for _, item := range items {
		state := event.State(strings.TrimSpace(item.State))
		if !state.Valid() {
			c.logger.WarnContext(ctx, "skip event with unknown state", "event_id", item.ID, "state", item.State)
			continue
		}

		start, err := time.Parse(time.RFC3339, strings.TrimSpace(item.StartTime))
		if err != nil {
			return nil, fmt.Errorf("event %q has invalid startTime %q", item.ID, item.StartTime)
		}

		ev := event.Event{
			ID:         strings.TrimSpace(item.ID),
			StartTime:  start.UTC(),
			State:      state,
			BlockName:  item.BlockName,
			LeagueName: item.League.Name,
			LeagueSlug: item.League.Slug,
		}
		if item.Match != nil {
			ev.Match = mapMatch(*item.Match)
		}
		if ev.ID == "" {
			// Older feed revisions omit the event id on match slots.
			ev.ID = ev.MatchID()
		}
		if ev.ID == "" {
			return nil, fmt.Errorf("event starting %s has no id", item.StartTime)
		}
		out = append(out, ev)
	}
	return out, nil
}

func mapMatch(item wireMatch) *event.Match {
	teams := make([]event.Team, 0, len(item.Teams))
	for _, team := range item.Teams {
		mapped := event.Team{Code: team.Code, Name: team.Name, Image: team.Image}
		if team.Result != nil {
			mapped.Result = &event.Result{GameWins: team.Result.GameWins}
			if team.Result.Outcome != nil {
				mapped.Result.Outcome = event.Outcome(*team.Result.Outcome)
			}
		}
		teams = append(teams, mapped)
	}
	return &event.Match{
		ID:       strings.TrimSpace(item.ID),
		Teams:    teams,
		Strategy: event.Strategy{Type: item.Strategy.Type, Count: item.Strategy.Count},
	}
}

func latestStart(events []event.Event) time.Time {
	var latest time.Time
	for _, ev := range events {
		if ev.StartTime.After(latest) {
			latest = ev.StartTime
		}
	}
	return latest
}
