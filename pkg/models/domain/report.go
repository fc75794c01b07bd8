package domain

import "time"

// TimePeriod represents a closed date range
type TimePeriod struct {
	Start    time.Time
	End      time.Time
	Duration int // in days
}

// Report is the printable form of a finished analysis
type Report struct {
	Title          string
	BaseYear       FiscalYear
	ComparisonYear FiscalYear
	Request        AnalysisRequest
	Results        []AnalysisResult
	TotalBase      float64
	TotalCompared  float64
	Currency       string
}

func NewReport(base, comparison FiscalYear, req AnalysisRequest, results []AnalysisResult) *Report {
	report := &Report{
		Title:          "Federal Spend Decline",
		BaseYear:       base,
		ComparisonYear: comparison,
		Request:        req,
		Results:        results,
		Currency:       "USD",
	}
	for _, r := range results {
		report.TotalBase += r.BaseAmount
		report.TotalCompared += r.ComparisonAmount
	}
	return report
}
