package adapters

import (
	"errors"
	"fmt"
	"math"

	"github.com/de-tools/spend-atlas/pkg/models/api"
	"github.com/de-tools/spend-atlas/pkg/models/domain"
	"github.com/de-tools/spend-atlas/pkg/models/store"
)

var ErrMalformedEntry = errors.New("malformed recipient entry")

// MapRecipientEntriesToDomain drops entries without an identifier and keeps upstream order.
func MapRecipientEntriesToDomain(entries []store.RecipientEntry) (domain.RankedList, error) {
	list := make(domain.RankedList, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		if entry.Amount == nil {
			return nil, fmt.Errorf("%w: recipient %s has no obligated_amount", ErrMalformedEntry, entry.ID)
		}
		amount := float64(*entry.Amount)
		if math.IsNaN(amount) || math.IsInf(amount, 0) {
			return nil, fmt.Errorf("%w: recipient %s has non-finite obligated_amount", ErrMalformedEntry, entry.ID)
		}
		list = append(list, domain.RecipientRecord{
			ID:     entry.ID,
			Name:   entry.Name,
			Amount: amount,
		})
	}
	return list, nil
}

func MapAnalysisResultDomainToApi(result domain.AnalysisResult) api.AnalysisResult {
	return api.AnalysisResult{
		ID:               result.ID,
		Name:             result.Name,
		BaseAmount:       result.BaseAmount,
		ComparisonAmount: result.ComparisonAmount,
		PercentChange:    result.PercentChange,
	}
}

func MapAnalysisResultsDomainToApi(results []domain.AnalysisResult) []api.AnalysisResult {
	out := make([]api.AnalysisResult, 0, len(results))
	for _, r := range results {
		out = append(out, MapAnalysisResultDomainToApi(r))
	}
	return out
}

func MapAnalysisResultApiToDomain(result api.AnalysisResult) domain.AnalysisResult {
	return domain.AnalysisResult{
		ID:               result.ID,
		Name:             result.Name,
		BaseAmount:       result.BaseAmount,
		ComparisonAmount: result.ComparisonAmount,
		PercentChange:    result.PercentChange,
	}
}

func MapAnalysisResultsApiToDomain(results []api.AnalysisResult) []domain.AnalysisResult {
	out := make([]domain.AnalysisResult, 0, len(results))
	for _, r := range results {
		out = append(out, MapAnalysisResultApiToDomain(r))
	}
	return out
}

func MapReportDomainToApi(report *domain.Report) api.AnalysisReport {
	return api.AnalysisReport{
		Title:           report.Title,
		BaseYear:        int(report.BaseYear),
		ComparisonYear:  int(report.ComparisonYear),
		TopN:            report.Request.TopN,
		DeclinePct:      report.Request.DeclinePct,
		TotalBase:       report.TotalBase,
		TotalComparison: report.TotalCompared,
		Currency:        report.Currency,
		Results:         MapAnalysisResultsDomainToApi(report.Results),
	}
}
