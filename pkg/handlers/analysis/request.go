package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/de-tools/spend-atlas/pkg/models/api"
	"github.com/de-tools/spend-atlas/pkg/models/domain"
	svc "github.com/de-tools/spend-atlas/pkg/services/analysis"
)

const (
	msgRequired = "Both 'topN' and 'declinePct' are required."
	msgInvalid  = "Invalid input. 'topN' must be a positive integer and 'declinePct' must be a non-negative number."
)

var errNotNumeric = errors.New("not numeric")

// parseRequest coerces numbers or numeric strings into a validated request.
func parseRequest(req api.AnalyzeRequest) (domain.AnalysisRequest, error) {
	if isMissing(req.TopN) || isMissing(req.DeclinePct) {
		return domain.AnalysisRequest{}, svc.InvalidInput(msgRequired)
	}

	topN, err := parseNumber(req.TopN)
	if err != nil || topN != math.Trunc(topN) || topN <= 0 {
		return domain.AnalysisRequest{}, svc.InvalidInput(msgInvalid)
	}
	declinePct, err := parseNumber(req.DeclinePct)
	if err != nil || declinePct < 0 {
		return domain.AnalysisRequest{}, svc.InvalidInput(msgInvalid)
	}
	if topN > svc.MaxTopN {
		return domain.AnalysisRequest{}, svc.InvalidInput("Invalid input. 'topN' must not exceed %d.", svc.MaxTopN)
	}

	parsed := domain.AnalysisRequest{TopN: int(topN), DeclinePct: declinePct}
	if err := svc.Validate(parsed); err != nil {
		return domain.AnalysisRequest{}, err
	}
	return parsed, nil
}

func isMissing(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`))
}

func parseNumber(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(raw)
	default:
		return 0, errNotNumeric
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotNumeric
	}
	return v, nil
}
