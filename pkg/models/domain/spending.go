package domain

import (
	"fmt"
	"time"
)

// FiscalYear runs from October 1 of the previous calendar year through September 30.
type FiscalYear int

func (fy FiscalYear) Period() TimePeriod {
	start := time.Date(int(fy)-1, time.October, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(int(fy), time.September, 30, 0, 0, 0, 0, time.UTC)
	return TimePeriod{
		Start:    start,
		End:      end,
		Duration: int(end.Sub(start).Hours()/24) + 1,
	}
}

func (fy FiscalYear) String() string {
	return fmt.Sprintf("FY%d", int(fy))
}

// RecipientRecord is one recipient's obligated amount within a single fiscal year.
type RecipientRecord struct {
	ID     string  // recipient code, e.g. DUNS
	Name   string  // display name
	Amount float64 // obligated amount, USD
}

// RankedList keeps the order imposed by the upstream ranking (descending by amount).
type RankedList []RecipientRecord

// AnalysisResult is one recipient whose obligations declined past the requested threshold.
type AnalysisResult struct {
	ID               string
	Name             string
	BaseAmount       float64
	ComparisonAmount float64
	PercentChange    float64 // signed, rounded to 2 decimals
}

// AnalysisRequest holds validated input parameters.
type AnalysisRequest struct {
	TopN       int
	DeclinePct float64
}
