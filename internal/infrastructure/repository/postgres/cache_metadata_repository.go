package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-pickem/internal/domain/cachemeta"
	qb "github.com/riskibarqy/esports-pickem/internal/platform/querybuilder"
)

type cacheMetadataTableModel struct {
	CacheKey    string         `db:"cache_key"`
	LastFetched *time.Time     `db:"last_fetched"`
	LastSuccess *time.Time     `db:"last_success"`
	FetchCount  int64          `db:"fetch_count"`
	LastError   sql.NullString `db:"last_error"`
}

type CacheMetadataRepository struct {
	db *sqlx.DB
}

func NewCacheMetadataRepository(db *sqlx.DB) *CacheMetadataRepository {
	return &CacheMetadataRepository{db: db}
}

func (r *CacheMetadataRepository) Get(ctx context.Context, key string) (cachemeta.Meta, bool, error) {
	query, args, err := qb.Select("cache_key", "last_fetched", "last_success", "fetch_count", "last_error").
		From("cache_metadata").
		Where(qb.Eq("cache_key", key)).
		ToSQL()
	if err != nil {
		return cachemeta.Meta{}, false, fmt.Errorf("build get cache metadata query: %w", err)
	}

	var row cacheMetadataTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return cachemeta.Meta{}, false, nil
		}
		return cachemeta.Meta{}, false, fmt.Errorf("get cache metadata key=%s: %w", key, err)
	}

	return cachemeta.Meta{
		Key:         row.CacheKey,
		LastFetched: row.LastFetched,
		LastSuccess: row.LastSuccess,
		FetchCount:  row.FetchCount,
		LastError:   row.LastError.String,
	}, true, nil
}

const recordCacheSuccessQuery = `
INSERT INTO cache_metadata (cache_key, last_fetched, last_success, fetch_count, last_error)
VALUES (:cache_key, :at, :at, 1, NULL)
ON CONFLICT (cache_key) DO UPDATE SET
    last_fetched = EXCLUDED.last_fetched,
    last_success = EXCLUDED.last_success,
    fetch_count = cache_metadata.fetch_count + 1,
    last_error = NULL`

func (r *CacheMetadataRepository) RecordSuccess(ctx context.Context, key string, at time.Time) error {
	return r.exec(ctx, recordCacheSuccessQuery, map[string]any{
		"cache_key": key,
		"at":        at.UTC(),
	})
}

const recordCacheFailureQuery = `
INSERT INTO cache_metadata (cache_key, last_fetched, last_success, fetch_count, last_error)
VALUES (:cache_key, :at, NULL, 1, :last_error)
ON CONFLICT (cache_key) DO UPDATE SET
    last_fetched = EXCLUDED.last_fetched,
    fetch_count = cache_metadata.fetch_count + 1,
    last_error = EXCLUDED.last_error`

func (r *CacheMetadataRepository) RecordFailure(ctx context.Context, key string, at time.Time, message string) error {
	return r.exec(ctx, recordCacheFailureQuery, map[string]any{
		"cache_key":  key,
		"at":         at.UTC(),
		"last_error": message,
	})
}

func (r *CacheMetadataRepository) exec(ctx context.Context, namedQuery string, params map[string]any) error {
	query, args, err := sqlx.Named(namedQuery, params)
	if err != nil {
		return fmt.Errorf("bind cache metadata query: %w", err)
	}
	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert cache metadata key=%v: %w", params["cache_key"], err)
	}
	return nil
}
