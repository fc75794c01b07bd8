package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/de-tools/spend-atlas/pkg/models/domain"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		name       string
		base       domain.RankedList
		comparison domain.RankedList
		declinePct float64
		expected   []domain.AnalysisResult
	}{
		{
			name: "missing comparison recipient counts as full decline",
			base: domain.RankedList{
				{ID: "A", Name: "Alpha", Amount: 1000},
				{ID: "B", Name: "Beta", Amount: 500},
			},
			comparison: domain.RankedList{
				{ID: "A", Name: "Alpha", Amount: 400},
			},
			declinePct: 50,
			expected: []domain.AnalysisResult{
				{ID: "A", Name: "Alpha", BaseAmount: 1000, ComparisonAmount: 400, PercentChange: -60},
				{ID: "B", Name: "Beta", BaseAmount: 500, ComparisonAmount: 0, PercentChange: -100},
			},
		},
		{
			name: "zero threshold keeps any decline",
			base: domain.RankedList{
				{ID: "A", Name: "Alpha", Amount: 1000},
				{ID: "B", Name: "Beta", Amount: 800},
				{ID: "C", Name: "Gamma", Amount: 600},
			},
			comparison: domain.RankedList{
				{ID: "A", Amount: 999.99},
				{ID: "B", Amount: 800},
				{ID: "C", Amount: 700},
			},
			declinePct: 0,
			expected: []domain.AnalysisResult{
				{ID: "A", Name: "Alpha", BaseAmount: 1000, ComparisonAmount: 999.99, PercentChange: 0},
			},
		},
		{
			name: "decline equal to threshold is excluded",
			base: domain.RankedList{
				{ID: "A", Name: "Alpha", Amount: 1000},
			},
			comparison: domain.RankedList{
				{ID: "A", Amount: 500},
			},
			declinePct: 50,
			expected:   []domain.AnalysisResult{},
		},
		{
			// -49.996 rounds to -50.00 but is not below -49.999.
			name: "filter uses unrounded change",
			base: domain.RankedList{
				{ID: "A", Name: "Alpha", Amount: 100},
			},
			comparison: domain.RankedList{
				{ID: "A", Amount: 50.004},
			},
			declinePct: 49.999,
			expected:   []domain.AnalysisResult{},
		},
		{
			name: "rounded output below the threshold",
			base: domain.RankedList{
				{ID: "A", Name: "Alpha", Amount: 100},
			},
			comparison: domain.RankedList{
				{ID: "A", Amount: 49.996},
			},
			declinePct: 50.001,
			expected: []domain.AnalysisResult{
				{ID: "A", Name: "Alpha", BaseAmount: 100, ComparisonAmount: 49.996, PercentChange: -50},
			},
		},
		{
			name: "non-positive base amounts are skipped",
			base: domain.RankedList{
				{ID: "A", Name: "Alpha", Amount: 0},
				{ID: "B", Name: "Beta", Amount: -10},
				{ID: "C", Name: "Gamma", Amount: 10},
			},
			comparison: domain.RankedList{},
			declinePct: 10,
			expected: []domain.AnalysisResult{
				{ID: "C", Name: "Gamma", BaseAmount: 10, ComparisonAmount: 0, PercentChange: -100},
			},
		},
		{
			name: "duplicate comparison ids keep the last amount",
			base: domain.RankedList{
				{ID: "A", Name: "Alpha", Amount: 100},
			},
			comparison: domain.RankedList{
				{ID: "A", Amount: 90},
				{ID: "A", Amount: 10},
			},
			declinePct: 50,
			expected: []domain.AnalysisResult{
				{ID: "A", Name: "Alpha", BaseAmount: 100, ComparisonAmount: 10, PercentChange: -90},
			},
		},
		{
			name: "growth is never retained",
			base: domain.RankedList{
				{ID: "A", Name: "Alpha", Amount: 100},
			},
			comparison: domain.RankedList{
				{ID: "A", Amount: 250},
			},
			declinePct: 0,
			expected:   []domain.AnalysisResult{},
		},
		{
			name:       "empty base",
			base:       domain.RankedList{},
			comparison: domain.RankedList{{ID: "A", Amount: 1}},
			declinePct: 0,
			expected:   []domain.AnalysisResult{},
		},
		{
			name: "rounds to two decimals",
			base: domain.RankedList{
				{ID: "A", Name: "Alpha", Amount: 3},
			},
			comparison: domain.RankedList{
				{ID: "A", Amount: 1},
			},
			declinePct: 10,
			expected: []domain.AnalysisResult{
				{ID: "A", Name: "Alpha", BaseAmount: 3, ComparisonAmount: 1, PercentChange: -66.67},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Combine(tt.base, tt.comparison, tt.declinePct)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCombine_PreservesBaseOrder(t *testing.T) {
	base := domain.RankedList{
		{ID: "E", Amount: 500},
		{ID: "D", Amount: 400},
		{ID: "C", Amount: 300},
		{ID: "B", Amount: 200},
		{ID: "A", Amount: 100},
	}
	// Deeper declines further down the list must not reorder the output.
	comparison := domain.RankedList{
		{ID: "A", Amount: 1},
		{ID: "C", Amount: 150},
		{ID: "E", Amount: 100},
	}

	got := Combine(base, comparison, 20)

	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
		assert.Greater(t, r.BaseAmount, 0.0)
		assert.Less(t, r.PercentChange, -20.0)
	}
	assert.Equal(t, []string{"E", "D", "C", "B", "A"}, ids)
}

func TestComparisonIndex_Amount(t *testing.T) {
	idx := NewComparisonIndex(domain.RankedList{{ID: "A", Amount: 42}})
	assert.Equal(t, 42.0, idx.Amount("A"))
	assert.Equal(t, 0.0, idx.Amount("missing"))

	var empty ComparisonIndex
	assert.Equal(t, 0.0, empty.Amount("A"))
}
