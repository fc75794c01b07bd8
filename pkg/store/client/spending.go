package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/de-tools/spend-atlas/pkg/models/domain"
	"github.com/de-tools/spend-atlas/pkg/models/store"
)

const (
	DefaultBaseURL       = "https://api.usaspending.gov/api/v2/search/spending_by_recipient/"
	DefaultTimeout       = 60 * time.Second
	DefaultRecipientType = "business"

	// MaxPageSize is the largest limit the upstream honors in a single call.
	MaxPageSize = 100
)

var ErrMalformedResponse = errors.New("malformed USAspending response")

// UpstreamError reports a transport failure or a non-success status from USAspending.
// Payload holds the decoded error body when it was valid JSON, Raw holds it otherwise.
type UpstreamError struct {
	StatusCode int
	Payload    any
	Raw        string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to connect to USAspending API: %v", e.Err)
	}
	return fmt.Sprintf("USAspending API responded with status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Details returns whatever the upstream sent back, structured if possible.
func (e *UpstreamError) Details() any {
	if e.Payload != nil {
		return e.Payload
	}
	if e.Raw != "" {
		return e.Raw
	}
	return nil
}

type Settings struct {
	BaseURL       string
	Timeout       time.Duration
	RecipientType string
}

type SpendingClient struct {
	client   *resty.Client
	settings Settings
}

func NewSpendingClient(settings Settings) *SpendingClient {
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultBaseURL
	}
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetTimeout(settings.Timeout)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")

	return &SpendingClient{
		client:   client,
		settings: settings,
	}
}

// FetchRecipients requests one page of recipients for the fiscal year, ranked by obligated amount.
func (c *SpendingClient) FetchRecipients(
	ctx context.Context,
	fy domain.FiscalYear,
	limit, page int,
) ([]store.RecipientEntry, error) {
	logger := zerolog.Ctx(ctx)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(c.buildQuery(fy, limit, page)).
		Post(c.settings.BaseURL)
	if err != nil {
		logger.Warn().Err(err).Int("fiscal_year", int(fy)).Int("page", page).Msg("spending request failed")
		return nil, &UpstreamError{Err: err}
	}

	if !resp.IsSuccess() {
		logger.Warn().
			Int("status", resp.StatusCode()).
			Int("fiscal_year", int(fy)).
			Int("page", page).
			Msg("spending request rejected")
		return nil, newStatusError(resp.StatusCode(), resp.Body())
	}

	var body store.SpendingResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	logger.Debug().
		Int("fiscal_year", int(fy)).
		Int("page", page).
		Int("limit", limit).
		Int("results", len(body.Results)).
		Msg("fetched spending page")

	return body.Results, nil
}

func (c *SpendingClient) buildQuery(fy domain.FiscalYear, limit, page int) store.SpendingQuery {
	period := fy.Period()
	return store.SpendingQuery{
		Filters: store.SpendingFilters{
			TimePeriod: []store.TimePeriodFilter{{
				StartDate: period.Start.Format(time.DateOnly),
				EndDate:   period.End.Format(time.DateOnly),
			}},
			RecipientType: c.settings.RecipientType,
		},
		Fields: []string{"recipient_name", "recipient_duns", "obligated_amount"},
		Sort:   "obligated_amount",
		Order:  "desc",
		Limit:  limit,
		Page:   page,
	}
}

func newStatusError(status int, body []byte) *UpstreamError {
	upstreamErr := &UpstreamError{StatusCode: status}
	if len(body) == 0 {
		upstreamErr.Raw = http.StatusText(status)
		return upstreamErr
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err == nil {
		upstreamErr.Payload = payload
	} else {
		upstreamErr.Raw = string(body)
	}
	return upstreamErr
}
