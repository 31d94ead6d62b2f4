package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-pickem/internal/domain/prediction"
	qb "github.com/riskibarqy/esports-pickem/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Get(ctx context.Context, userID, matchID string) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select(predictionColumns...).
		From("predictions").
		Where(qb.Eq("user_id", userID), qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction user=%s match=%s: %w", userID, matchID, err)
	}
	return row.toDomain(), true, nil
}

// The WHERE on the conflict branch leaves scored rows untouched, so a zero
// row count means the pick is already locked in.
const upsertPredictionQuery = `
INSERT INTO predictions (
    id, user_id, match_id, event_start_time, league_slug,
    team1_code, team2_code, predicted_winner, predicted_score
) VALUES (
    :id, :user_id, :match_id, :event_start_time, :league_slug,
    :team1_code, :team2_code, :predicted_winner, :predicted_score
)
ON CONFLICT (user_id, match_id) DO UPDATE SET
    event_start_time = EXCLUDED.event_start_time,
    league_slug = EXCLUDED.league_slug,
    team1_code = EXCLUDED.team1_code,
    team2_code = EXCLUDED.team2_code,
    predicted_winner = EXCLUDED.predicted_winner,
    predicted_score = EXCLUDED.predicted_score,
    updated_at = NOW()
WHERE predictions.actual_winner IS NULL`

func (r *PredictionRepository) Upsert(ctx context.Context, p prediction.Prediction) (bool, error) {
	query, args, err := sqlx.Named(upsertPredictionQuery, map[string]any{
		"id":               p.ID,
		"user_id":          p.UserID,
		"match_id":         p.MatchID,
		"event_start_time": p.EventStartTime.UTC(),
		"league_slug":      p.LeagueSlug,
		"team1_code":       p.Team1Code,
		"team2_code":       p.Team2Code,
		"predicted_winner": p.PredictedWinner,
		"predicted_score":  p.PredictedScore,
	})
	if err != nil {
		return false, fmt.Errorf("bind upsert prediction query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return false, predictionWriteError(p, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected upsert prediction: %w", err)
	}
	return affected > 0, nil
}

// predictionWriteError maps a primary key clash to prediction.ErrDuplicateID.
// The (user_id, match_id) key never clashes because of ON CONFLICT.
func predictionWriteError(p prediction.Prediction, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: id=%s: %w", prediction.ErrDuplicateID, p.ID, err)
	}
	return fmt.Errorf("upsert prediction user=%s match=%s: %w", p.UserID, p.MatchID, err)
}

func (r *PredictionRepository) Delete(ctx context.Context, userID, matchID string) (bool, error) {
	query, args, err := qb.DeleteFrom("predictions").
		Where(qb.Eq("user_id", userID), qb.Eq("match_id", matchID), qb.IsNull("actual_winner")).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete prediction query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete prediction user=%s match=%s: %w", userID, matchID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected delete prediction: %w", err)
	}
	return affected > 0, nil
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select(predictionColumns...).
		From("predictions").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions by user query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *PredictionRepository) ListUnscoredByMatch(ctx context.Context, matchID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select(predictionColumns...).
		From("predictions").
		Where(qb.Eq("match_id", matchID), qb.IsNull("actual_winner")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list unscored predictions query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *PredictionRepository) list(ctx context.Context, query string, args []any) ([]prediction.Prediction, error) {
	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select predictions: %w", err)
	}
	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PredictionRepository) ApplyResult(ctx context.Context, predictionID string, res prediction.Result) (bool, error) {
	scored := false
	err := withTx(ctx, r.db, "apply prediction result", func(tx *sqlx.Tx) error {
		ownerQuery, ownerArgs, err := qb.Select("user_id").
			From("predictions").
			Where(qb.Eq("id", predictionID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build prediction owner query: %w", err)
		}
		var userID string
		if err := tx.GetContext(ctx, &userID, ownerQuery, ownerArgs...); err != nil {
			if isNotFound(err) {
				return nil
			}
			return fmt.Errorf("get prediction owner id=%s: %w", predictionID, err)
		}

		// Lock the owner first so concurrent scoring of the same user's picks
		// recomputes the total one transaction at a time.
		ensureQuery, ensureArgs, err := ensureUserQuery(userID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, ensureQuery, ensureArgs...); err != nil {
			return fmt.Errorf("ensure user id=%s: %w", userID, err)
		}
		lockQuery, lockArgs, err := qb.Select("id").
			From("users").
			Where(qb.Eq("id", userID)).
			Suffix("FOR UPDATE").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build lock user query: %w", err)
		}
		var lockedID string
		if err := tx.GetContext(ctx, &lockedID, lockQuery, lockArgs...); err != nil {
			return fmt.Errorf("lock user id=%s: %w", userID, err)
		}

		updateQuery, updateArgs, err := qb.Update("predictions").
			Set("actual_winner", res.ActualWinner).
			Set("actual_score", res.ActualScore).
			Set("winner_correct", res.WinnerCorrect).
			Set("score_correct", res.ScoreCorrect).
			Set("points_earned", res.PointsEarned).
			Set("scored_at", res.ScoredAt.UTC()).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", predictionID), qb.IsNull("actual_winner")).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build score prediction query: %w", err)
		}
		result, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("score prediction id=%s: %w", predictionID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected score prediction: %w", err)
		}
		if affected == 0 {
			return nil
		}

		totalQuery, totalArgs, err := qb.Update("users").
			SetExpr("total_points", "(SELECT COALESCE(SUM(points_earned), 0) FROM predictions WHERE user_id = ? AND actual_winner IS NOT NULL)", userID).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", userID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build recompute total points query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, totalQuery, totalArgs...); err != nil {
			return fmt.Errorf("recompute total points user=%s: %w", userID, err)
		}

		scored = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return scored, nil
}
