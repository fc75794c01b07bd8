package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TimePeriodFilter matches the upstream `time_period` filter item.
type TimePeriodFilter struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type SpendingFilters struct {
	TimePeriod    []TimePeriodFilter `json:"time_period"`
	RecipientType string             `json:"recipient_type,omitempty"`
}

// SpendingQuery is the POST body of spending_by_recipient.
type SpendingQuery struct {
	Filters SpendingFilters `json:"filters"`
	Fields  []string        `json:"fields"`
	Sort    string          `json:"sort"`
	Order   string          `json:"order"`
	Limit   int             `json:"limit"`
	Page    int             `json:"page"`
}

type SpendingResponse struct {
	Results []RecipientEntry `json:"results"`
}

// RecipientEntry is a raw result row. Amount is nil when the field is absent or null.
type RecipientEntry struct {
	ID     string  `json:"recipient_duns"`
	Name   string  `json:"recipient_name"`
	Amount *Amount `json:"obligated_amount"`
}

// Amount accepts both JSON numbers and numeric strings.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", string(data), err)
	}
	*a = Amount(v)
	return nil
}

// CachedAnalysis is a row of the analysis_cache table.
type CachedAnalysis struct {
	Key       string
	Payload   []byte
	ExpiresAt time.Time
}
