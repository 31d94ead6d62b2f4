package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-pickem/internal/domain/league"
	qb "github.com/riskibarqy/esports-pickem/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) UpsertAll(ctx context.Context, leagues []league.League, cachedAt time.Time) (int, error) {
	if len(leagues) == 0 {
		return 0, nil
	}

	written := 0
	err := withTx(ctx, r.db, "upsert leagues", func(tx *sqlx.Tx) error {
		for _, item := range leagues {
			row := leagueTableModel{
				ID:       item.ID,
				Slug:     item.Slug,
				Name:     item.Name,
				Image:    item.Image,
				Region:   item.Region,
				Priority: item.Priority,
				CachedAt: cachedAt.UTC(),
			}
			query, args, err := qb.UpsertModel("leagues", row, []string{"id"})
			if err != nil {
				return fmt.Errorf("build upsert league query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert league id=%s: %w", item.ID, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("id", "slug", "name", "image", "region", "priority", "cached_at").
		From("leagues").
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.League{
			ID:       row.ID,
			Slug:     row.Slug,
			Name:     row.Name,
			Image:    row.Image,
			Region:   row.Region,
			Priority: row.Priority,
		})
	}
	return out, nil
}
