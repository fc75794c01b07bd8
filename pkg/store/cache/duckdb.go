package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/spend-atlas/pkg/adapters"
	"github.com/de-tools/spend-atlas/pkg/models/api"
	"github.com/de-tools/spend-atlas/pkg/models/domain"
	"github.com/de-tools/spend-atlas/pkg/models/store"
)

// SQLStore keeps analyses in the analysis_cache table, so they survive restarts.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &SQLStore{
		db:  db,
		now: time.Now,
	}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]domain.AnalysisResult, bool, error) {
	query := `
		SELECT cache_key, payload, expires_at
		FROM analysis_cache
		WHERE cache_key = ? AND expires_at > ?
	`
	var (
		row     store.CachedAnalysis
		payload string
	)
	err := s.db.QueryRowContext(ctx, query, key, s.now().UTC()).Scan(&row.Key, &payload, &row.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cached analysis: %w", err)
	}
	row.Payload = []byte(payload)

	var results []api.AnalysisResult
	if err := json.Unmarshal(row.Payload, &results); err != nil {
		return nil, false, fmt.Errorf("decode cached analysis: %w", err)
	}
	return adapters.MapAnalysisResultsApiToDomain(results), true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, results []domain.AnalysisResult, ttl time.Duration) error {
	payload, err := json.Marshal(adapters.MapAnalysisResultsDomainToApi(results))
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	row := store.CachedAnalysis{
		Key:       key,
		Payload:   payload,
		ExpiresAt: s.now().Add(ttl).UTC(),
	}

	query := `
		INSERT INTO analysis_cache (cache_key, payload, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at
	`
	if _, err := s.db.ExecContext(ctx, query, row.Key, string(row.Payload), row.ExpiresAt); err != nil {
		return fmt.Errorf("store analysis: %w", err)
	}
	return nil
}

// Evict deletes rows expired at `now`.
func (s *SQLStore) Evict(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analysis_cache WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("evict cached analyses: %w", err)
	}
	return res.RowsAffected()
}
