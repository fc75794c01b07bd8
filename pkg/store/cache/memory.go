package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/spend-atlas/pkg/models/domain"
)

type entry struct {
	results   []domain.AnalysisResult
	expiresAt time.Time
}

// Memory is a process-local cache. Expired entries are misses until Evict removes them.
type Memory struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]domain.AnalysisResult, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return clone(e.results), true, nil
}

func (m *Memory) Set(_ context.Context, key string, results []domain.AnalysisResult, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = entry{
		results:   clone(results),
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Evict drops entries expired at `now` and returns how many were removed.
func (m *Memory) Evict(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, e := range m.data {
		if !now.Before(e.expiresAt) {
			delete(m.data, key)
			removed++
		}
	}
	return removed
}

// Run evicts expired entries every interval until ctx is cancelled.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	logger := zerolog.Ctx(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := m.Evict(now); n > 0 {
				logger.Debug().Int("count", n).Msg("evicted expired analyses")
			}
		}
	}
}
