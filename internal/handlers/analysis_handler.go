package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilio/internal/eodhd"
	"github.com/ternarybob/consilio/internal/models"
	"github.com/ternarybob/consilio/internal/services/analysis"
)

// AnalysisHandler handles stock analysis HTTP requests
type AnalysisHandler struct {
	analysisService *analysis.Service
	logger          arbor.ILogger
}

// NewAnalysisHandler creates a new analysis handler with dependencies
func NewAnalysisHandler(analysisService *analysis.Service, logger arbor.ILogger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          logger,
	}
}

// AnalyzeHandler handles POST /api/analyze requests
func (h *AnalysisHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.AnalysisRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if h.logger != nil {
		h.logger.Info().
			Str("ticker", req.Ticker).
			Str("base_currency", req.BaseCurrency).
			Msg("Analysis request received")
	}

	response, err := h.analysisService.Analyze(r.Context(), &req)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn().
				Err(err).
				Str("ticker", req.Ticker).
				Msg("Analysis failed")
		}
		WriteError(w, analysisErrorStatus(err), err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, response)
}

// RecommendationHandler handles GET /api/recommendations/{ticker} requests.
// The response always carries a currency view; base_currency overrides the
// configured default.
func (h *AnalysisHandler) RecommendationHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := strings.TrimPrefix(r.URL.Path, "/api/recommendations/")
	ticker = strings.Trim(ticker, "/")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	baseCurrency := r.URL.Query().Get("base_currency")

	response, err := h.analysisService.GetRecommendation(r.Context(), ticker, baseCurrency)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn().
				Err(err).
				Str("ticker", ticker).
				Msg("Recommendation failed")
		}
		WriteError(w, analysisErrorStatus(err), err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, response)
}

// CurrencyImpactHandler handles POST /api/currency-impact requests
func (h *AnalysisHandler) CurrencyImpactHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.CurrencyImpactRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	impact, err := h.analysisService.CurrencyImpact(r.Context(), &req)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn().
				Err(err).
				Str("ticker", req.Ticker).
				Msg("Currency impact failed")
		}
		WriteError(w, analysisErrorStatus(err), err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, impact)
}

// analysisErrorStatus maps pipeline errors to HTTP status codes. Request
// validation problems are client errors; upstream data failures are 502.
func analysisErrorStatus(err error) int {
	// An unknown ticker surfaces as a 404 from the market data API
	var apiErr *eodhd.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return http.StatusBadRequest
	}

	message := err.Error()
	if strings.Contains(message, "invalid") || strings.Contains(message, "required") {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
