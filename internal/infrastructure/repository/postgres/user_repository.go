package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-pickem/internal/domain/user"
	qb "github.com/riskibarqy/esports-pickem/internal/platform/querybuilder"
)

type userTableModel struct {
	ID          string    `db:"id"`
	TotalPoints int       `db:"total_points"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (m userTableModel) toDomain() user.Account {
	return user.Account{
		UserID:      m.ID,
		TotalPoints: m.TotalPoints,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// userInsertModel carries the columns a first sighting writes; timestamps
// come from column defaults.
type userInsertModel struct {
	ID          string `db:"id"`
	TotalPoints int    `db:"total_points"`
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Ensure(ctx context.Context, userID string) error {
	query, args, err := ensureUserQuery(userID)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("ensure user id=%s: %w", userID, err)
	}
	return nil
}

func ensureUserQuery(userID string) (string, []any, error) {
	query, args, err := qb.InsertModel("users", userInsertModel{ID: userID}, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		return "", nil, fmt.Errorf("build ensure user query: %w", err)
	}
	return query, args, nil
}

func (r *UserRepository) Get(ctx context.Context, userID string) (user.Account, bool, error) {
	query, args, err := qb.Select("id", "total_points", "created_at", "updated_at").
		From("users").
		Where(qb.Eq("id", userID)).
		ToSQL()
	if err != nil {
		return user.Account{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.Account{}, false, nil
		}
		return user.Account{}, false, fmt.Errorf("get user id=%s: %w", userID, err)
	}
	return row.toDomain(), true, nil
}

func (r *UserRepository) ListTop(ctx context.Context, limit int) ([]user.Account, error) {
	query, args, err := qb.Select("id", "total_points", "created_at", "updated_at").
		From("users").
		OrderBy("total_points DESC", "created_at ASC", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list top users query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list top users: %w", err)
	}

	out := make([]user.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
