package analysis

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/spend-atlas/pkg/models/domain"
	"github.com/de-tools/spend-atlas/pkg/services/spending"
	"github.com/de-tools/spend-atlas/pkg/store/cache"
	"github.com/de-tools/spend-atlas/pkg/store/client"
)

const (
	DefaultMaxPages = 10
	DefaultCacheTTL = time.Hour
	MaxTopN         = client.MaxPageSize
)

type Settings struct {
	BaseYear       domain.FiscalYear
	ComparisonYear domain.FiscalYear
	MaxPages       int
	CacheTTL       time.Duration
}

// Service finds top recipients of the base year whose obligations declined in the comparison year.
type Service interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) ([]domain.AnalysisResult, error)
	Years() (base, comparison domain.FiscalYear)
}

type analyzer struct {
	fetcher  spending.Fetcher
	cache    cache.Cache
	settings Settings
}

func NewService(fetcher spending.Fetcher, resultCache cache.Cache, settings Settings) Service {
	if settings.ComparisonYear == 0 {
		settings.ComparisonYear = settings.BaseYear + 1
	}
	if settings.MaxPages < 1 {
		settings.MaxPages = DefaultMaxPages
	}
	if settings.CacheTTL <= 0 {
		settings.CacheTTL = DefaultCacheTTL
	}
	if resultCache == nil {
		resultCache = cache.NewNoop()
	}

	return &analyzer{
		fetcher:  fetcher,
		cache:    resultCache,
		settings: settings,
	}
}

func (a *analyzer) Years() (domain.FiscalYear, domain.FiscalYear) {
	return a.settings.BaseYear, a.settings.ComparisonYear
}

func (a *analyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) ([]domain.AnalysisResult, error) {
	logger := zerolog.Ctx(ctx)
	if err := Validate(req); err != nil {
		return nil, err
	}

	key := CacheKey(req, a.settings.BaseYear, a.settings.ComparisonYear)
	cached, ok, err := a.cache.Get(ctx, key)
	switch {
	case err != nil:
		logger.Warn().Err(err).Str("key", key).Msg("cache lookup failed")
	case ok:
		logger.Debug().Str("key", key).Int("results", len(cached)).Msg("analysis cache hit")
		return cached, nil
	}

	results, err := a.compute(ctx, req)
	if err != nil {
		return nil, Classify(err)
	}

	if err := a.cache.Set(ctx, key, results, a.settings.CacheTTL); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("failed to store analysis in cache")
	}

	logger.Info().
		Int("top_n", req.TopN).
		Float64("decline_pct", req.DeclinePct).
		Int("results", len(results)).
		Msg("analysis completed")
	return results, nil
}

func (a *analyzer) compute(ctx context.Context, req domain.AnalysisRequest) ([]domain.AnalysisResult, error) {
	base, err := a.fetcher.FetchTop(ctx, a.settings.BaseYear, req.TopN)
	if err != nil {
		return nil, fmt.Errorf("fetch %s recipients: %w", a.settings.BaseYear, err)
	}
	if len(base) == 0 {
		return []domain.AnalysisResult{}, nil
	}

	comparison, err := a.fetcher.FetchPages(ctx, a.settings.ComparisonYear, a.settings.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("fetch %s recipients: %w", a.settings.ComparisonYear, err)
	}

	return Combine(base, comparison, req.DeclinePct), nil
}

func Validate(req domain.AnalysisRequest) error {
	if req.TopN <= 0 || req.TopN > MaxTopN {
		return InvalidInput("'topN' must be a positive integer no greater than %d", MaxTopN)
	}
	if req.DeclinePct < 0 || math.IsNaN(req.DeclinePct) || math.IsInf(req.DeclinePct, 0) {
		return InvalidInput("'declinePct' must be a non-negative number")
	}
	return nil
}

// CacheKey depends only on the request and the configured fiscal years.
func CacheKey(req domain.AnalysisRequest, base, comparison domain.FiscalYear) string {
	return fmt.Sprintf("analysis:v1:top=%d:decline=%s:fy=%d-%d",
		req.TopN,
		strconv.FormatFloat(req.DeclinePct, 'g', -1, 64),
		int(base),
		int(comparison),
	)
}
