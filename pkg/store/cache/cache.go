package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/spend-atlas/pkg/models/domain"
)

const (
	BackendMemory = "memory"
	BackendDuckDB = "duckdb"
	BackendNone   = "none"
)

// Cache memoizes computed analyses by key until their TTL elapses.
type Cache interface {
	Get(ctx context.Context, key string) ([]domain.AnalysisResult, bool, error)
	Set(ctx context.Context, key string, results []domain.AnalysisResult, ttl time.Duration) error
}

type noop struct{}

// NewNoop returns a cache that never stores anything.
func NewNoop() Cache {
	return noop{}
}

func (noop) Get(context.Context, string) ([]domain.AnalysisResult, bool, error) {
	return nil, false, nil
}

func (noop) Set(context.Context, string, []domain.AnalysisResult, time.Duration) error {
	return nil
}

func ValidateBackend(backend string) error {
	switch backend {
	case BackendMemory, BackendDuckDB, BackendNone:
		return nil
	default:
		return fmt.Errorf("unsupported cache backend %q", backend)
	}
}

func clone(results []domain.AnalysisResult) []domain.AnalysisResult {
	out := make([]domain.AnalysisResult, len(results))
	copy(out, results)
	return out
}
