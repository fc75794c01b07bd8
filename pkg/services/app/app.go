package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/spend-atlas/pkg/models/domain"
	"github.com/de-tools/spend-atlas/pkg/services/analysis"
	"github.com/de-tools/spend-atlas/pkg/services/config"
	"github.com/de-tools/spend-atlas/pkg/services/spending"
	"github.com/de-tools/spend-atlas/pkg/store/cache"
	"github.com/de-tools/spend-atlas/pkg/store/client"
	"github.com/de-tools/spend-atlas/pkg/store/duckdb"
)

const evictionInterval = time.Minute

// App holds the analysis service built from a Config and the resources it owns.
type App struct {
	Analyzer analysis.Service
	db       *sql.DB
	cancel   context.CancelFunc
}

// New wires client, fetcher, cache and analysis service. Close releases the cache backend.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := zerolog.Ctx(ctx)

	spendingClient := client.NewSpendingClient(client.Settings{
		BaseURL:       cfg.Upstream.BaseURL,
		Timeout:       cfg.Upstream.Timeout,
		RecipientType: cfg.Upstream.RecipientType,
	})
	fetcher := spending.NewFetcher(spendingClient, spending.Options{
		Parallelism: cfg.Upstream.ParallelPages,
	})

	a := &App{}
	resultCache, err := a.newCache(ctx, cfg.Cache)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Analyzer = analysis.NewService(fetcher, resultCache, analysis.Settings{
		BaseYear:       domain.FiscalYear(cfg.Analysis.BaseYear),
		ComparisonYear: domain.FiscalYear(cfg.Analysis.ComparisonYear),
		MaxPages:       cfg.Upstream.MaxPages,
		CacheTTL:       cfg.Cache.TTL,
	})

	logger.Info().
		Str("upstream", cfg.Upstream.BaseURL).
		Str("cache", cfg.Cache.Backend).
		Int("base_year", cfg.Analysis.BaseYear).
		Int("comparison_year", cfg.Analysis.ComparisonYear).
		Msg("analysis service configured")

	return a, nil
}

func (a *App) newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case cache.BackendNone:
		return cache.NewNoop(), nil
	case cache.BackendDuckDB:
		db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.DuckDBPath})
		if err != nil {
			return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
		}
		a.db = db

		store, err := cache.NewSQLStore(db)
		if err != nil {
			return nil, fmt.Errorf("failed to create analysis cache store: %w", err)
		}
		if n, err := store.Evict(ctx, time.Now()); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to evict expired analyses")
		} else if n > 0 {
			zerolog.Ctx(ctx).Debug().Int64("count", n).Msg("evicted expired analyses")
		}
		return store, nil
	default:
		mem := cache.NewMemory()
		runCtx, cancel := context.WithCancel(ctx)
		a.cancel = cancel
		go mem.Run(runCtx, evictionInterval)
		return mem, nil
	}
}

func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
