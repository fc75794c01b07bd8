package analysis

import (
	"math"

	"github.com/de-tools/spend-atlas/pkg/models/domain"
)

// ComparisonIndex maps recipient id to its comparison-year amount.
type ComparisonIndex map[string]float64

// NewComparisonIndex indexes the list; a later duplicate id overwrites an earlier one.
func NewComparisonIndex(list domain.RankedList) ComparisonIndex {
	index := make(ComparisonIndex, len(list))
	for _, r := range list {
		index[r.ID] = r.Amount
	}
	return index
}

// Amount returns zero for recipients absent from the comparison year.
func (idx ComparisonIndex) Amount(id string) float64 {
	return idx[id]
}

// Combine keeps base-year recipients whose change is below -declinePct, in base order.
func Combine(base, comparison domain.RankedList, declinePct float64) []domain.AnalysisResult {
	results := make([]domain.AnalysisResult, 0)
	if len(base) == 0 {
		return results
	}

	index := NewComparisonIndex(comparison)
	for _, r := range base {
		if r.Amount <= 0 {
			continue
		}

		compared := index.Amount(r.ID)
		change := PercentChange(r.Amount, compared)
		if change >= -declinePct {
			continue
		}

		results = append(results, domain.AnalysisResult{
			ID:               r.ID,
			Name:             r.Name,
			BaseAmount:       r.Amount,
			ComparisonAmount: compared,
			PercentChange:    round2(change),
		})
	}
	return results
}

// PercentChange expects a positive base.
func PercentChange(base, compared float64) float64 {
	return (compared - base) / base * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
