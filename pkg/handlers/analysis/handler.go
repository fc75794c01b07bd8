package analysis

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/de-tools/spend-atlas/pkg/adapters"
	"github.com/de-tools/spend-atlas/pkg/models/api"
	svc "github.com/de-tools/spend-atlas/pkg/services/analysis"
)

const maxBodyBytes = 1 << 16

type Handler struct {
	analyzer svc.Service
}

func NewHandler(analyzer svc.Service) *Handler {
	return &Handler{
		analyzer: analyzer,
	}
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var body api.AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		logger.Debug().Err(err).Msg("failed to decode analyze request")
		writeError(w, r, svc.InvalidInput("Invalid request body. Expected a JSON object with 'topN' and 'declinePct'."))
		return
	}

	req, err := parseRequest(body)
	if err != nil {
		writeError(w, r, svc.Classify(err))
		return
	}

	results, err := h.analyzer.Analyze(ctx, req)
	if err != nil {
		writeError(w, r, svc.Classify(err))
		return
	}

	writeJSON(w, r, http.StatusOK, adapters.MapAnalysisResultsDomainToApi(results))
}

func statusFor(kind svc.ErrorKind) int {
	switch kind {
	case svc.KindInvalidInput:
		return http.StatusBadRequest
	case svc.KindUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err *svc.Error) {
	logger := zerolog.Ctx(r.Context())
	status := statusFor(err.Kind)

	event := logger.Warn()
	if status == http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Str("kind", err.Kind.String()).Int("status", status).Msg("analysis request failed")

	writeJSON(w, r, status, api.ErrorResponse{
		Error:   err.Error(),
		Details: err.Details,
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
