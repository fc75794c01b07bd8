package cache

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/spend-atlas/pkg/store/duckdb"
)

type fixture struct {
	db    *sql.DB
	store *SQLStore
	now   time.Time
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	s, err := NewSQLStore(db)
	require.NoError(t, err)

	f := &fixture{
		db:    db,
		store: s,
		now:   time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	s.now = func() time.Time { return f.now }

	t.Cleanup(func() {
		db.Close()
	})
	return f
}

func TestSQLStore_GetSet(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	t.Run("miss on empty table", func(t *testing.T) {
		_, ok, err := f.store.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, f.store.Set(ctx, "k", sampleResults, time.Hour))

		got, ok, err := f.store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, sampleResults, got)
	})

	t.Run("set overwrites existing key", func(t *testing.T) {
		require.NoError(t, f.store.Set(ctx, "k", sampleResults[:1], time.Hour))

		got, ok, err := f.store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, sampleResults[:1], got)

		var count int
		require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM analysis_cache").Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("expired row is a miss", func(t *testing.T) {
		f.now = f.now.Add(2 * time.Hour)
		_, ok, err := f.store.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestSQLStore_Evict(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Set(ctx, "short", sampleResults, time.Minute))
	require.NoError(t, f.store.Set(ctx, "long", sampleResults, time.Hour))

	removed, err := f.store.Evict(ctx, f.now.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok, err := f.store.Get(ctx, "long")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLStore_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("nil db", func(t *testing.T) {
		_, err := NewSQLStore(nil)
		assert.Error(t, err)
	})

	t.Run("query failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM analysis_cache")).
			WithArgs("k", sqlmock.AnyArg()).
			WillReturnError(errors.New("disk I/O error"))

		s, err := NewSQLStore(db)
		require.NoError(t, err)

		_, ok, err := s.Get(ctx, "k")
		assert.Error(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt payload", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"cache_key", "payload", "expires_at"}).
			AddRow("k", "{not json", time.Now().Add(time.Hour))
		mock.ExpectQuery(regexp.QuoteMeta("FROM analysis_cache")).
			WithArgs("k", sqlmock.AnyArg()).
			WillReturnRows(rows)

		s, err := NewSQLStore(db)
		require.NoError(t, err)

		_, ok, err := s.Get(ctx, "k")
		assert.ErrorContains(t, err, "decode cached analysis")
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analysis_cache")).
			WithArgs("k", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(errors.New("read-only database"))

		s, err := NewSQLStore(db)
		require.NoError(t, err)

		err = s.Set(ctx, "k", sampleResults, time.Hour)
		assert.ErrorContains(t, err, "store analysis")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
