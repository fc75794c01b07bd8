package spending

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/de-tools/spend-atlas/pkg/adapters"
	"github.com/de-tools/spend-atlas/pkg/models/domain"
	"github.com/de-tools/spend-atlas/pkg/models/store"
	"github.com/de-tools/spend-atlas/pkg/store/client"
)

// RecipientSource returns one raw page of ranked recipients.
type RecipientSource interface {
	FetchRecipients(ctx context.Context, fy domain.FiscalYear, limit, page int) ([]store.RecipientEntry, error)
}

// Fetcher assembles ranked recipient lists for a fiscal year.
type Fetcher interface {
	// FetchTop returns the first `limit` recipients in a single ranked page.
	FetchTop(ctx context.Context, fy domain.FiscalYear, limit int) (domain.RankedList, error)
	// FetchPages concatenates up to maxPages full pages, stopping at the first empty one.
	FetchPages(ctx context.Context, fy domain.FiscalYear, maxPages int) (domain.RankedList, error)
}

type Options struct {
	// Parallelism is the number of pages requested concurrently. Values below 2 fetch sequentially.
	Parallelism int
}

type rankedFetcher struct {
	source      RecipientSource
	parallelism int
}

func NewFetcher(source RecipientSource, opts Options) Fetcher {
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	return &rankedFetcher{
		source:      source,
		parallelism: parallelism,
	}
}

func (f *rankedFetcher) FetchTop(ctx context.Context, fy domain.FiscalYear, limit int) (domain.RankedList, error) {
	if limit < 1 || limit > client.MaxPageSize {
		return nil, fmt.Errorf("limit must be between 1 and %d, got %d", client.MaxPageSize, limit)
	}

	entries, err := f.source.FetchRecipients(ctx, fy, limit, 1)
	if err != nil {
		return nil, err
	}
	return adapters.MapRecipientEntriesToDomain(entries)
}

func (f *rankedFetcher) FetchPages(ctx context.Context, fy domain.FiscalYear, maxPages int) (domain.RankedList, error) {
	if maxPages < 1 {
		return nil, fmt.Errorf("page cap must be positive, got %d", maxPages)
	}
	if f.parallelism > 1 {
		return f.fetchPagesWindowed(ctx, fy, maxPages)
	}

	logger := zerolog.Ctx(ctx)
	list := make(domain.RankedList, 0, client.MaxPageSize)
	for page := 1; page <= maxPages; page++ {
		entries, err := f.source.FetchRecipients(ctx, fy, client.MaxPageSize, page)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			logger.Debug().Int("fiscal_year", int(fy)).Int("page", page).Msg("reached end of spending data")
			break
		}

		records, err := adapters.MapRecipientEntriesToDomain(entries)
		if err != nil {
			return nil, err
		}
		list = append(list, records...)
	}
	return list, nil
}

// fetchPagesWindowed requests pages in windows of f.parallelism and assembles them in page
// order, so the result and the error reported match the sequential loop.
func (f *rankedFetcher) fetchPagesWindowed(
	ctx context.Context,
	fy domain.FiscalYear,
	maxPages int,
) (domain.RankedList, error) {
	list := make(domain.RankedList, 0, client.MaxPageSize)

	for first := 1; first <= maxPages; first += f.parallelism {
		size := min(f.parallelism, maxPages-first+1)
		pages := make([][]store.RecipientEntry, size)
		errs := make([]error, size)

		var g errgroup.Group
		for i := 0; i < size; i++ {
			g.Go(func() error {
				pages[i], errs[i] = f.source.FetchRecipients(ctx, fy, client.MaxPageSize, first+i)
				return nil
			})
		}
		_ = g.Wait()

		for i, entries := range pages {
			if errs[i] != nil {
				return nil, errs[i]
			}
			if len(entries) == 0 {
				return list, nil
			}

			records, err := adapters.MapRecipientEntriesToDomain(entries)
			if err != nil {
				return nil, err
			}
			list = append(list, records...)
		}
	}
	return list, nil
}
