package api

import "encoding/json"

// AnalyzeRequest accepts numbers or numeric strings for both fields.
type AnalyzeRequest struct {
	TopN       json.RawMessage `json:"topN"`
	DeclinePct json.RawMessage `json:"declinePct"`
}

type AnalysisResult struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	BaseAmount       float64 `json:"baseAmount"`
	ComparisonAmount float64 `json:"comparisonAmount"`
	PercentChange    float64 `json:"percentChange"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// AnalysisReport is the exported document of a finished analysis.
type AnalysisReport struct {
	Title           string           `json:"title"`
	BaseYear        int              `json:"baseYear"`
	ComparisonYear  int              `json:"comparisonYear"`
	TopN            int              `json:"topN"`
	DeclinePct      float64          `json:"declinePct"`
	TotalBase       float64          `json:"totalBaseAmount"`
	TotalComparison float64          `json:"totalComparisonAmount"`
	Currency        string           `json:"currency"`
	Results         []AnalysisResult `json:"results"`
}
