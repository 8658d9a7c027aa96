package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilio/internal/common"
	"github.com/ternarybob/consilio/internal/models"
	"github.com/ternarybob/consilio/internal/services/currency"
	"github.com/ternarybob/consilio/internal/services/llm"
	"github.com/ternarybob/consilio/internal/services/market"
)

// Generator abstracts the LLM provider factory so the service can run
// without one (fallback-only mode) and tests can stub responses.
type Generator interface {
	GenerateContent(ctx context.Context, request *llm.ContentRequest) (*llm.ContentResponse, error)
}

// Service orchestrates the analysis pipeline: snapshot retrieval, context
// building, AI recommendation, parsing, validation, and fallback.
type Service struct {
	market    *market.Service
	currency  *currency.Service
	generator Generator // nil when no AI provider is configured
	validator *RecommendationValidator
	config    *common.Config
	logger    arbor.ILogger
}

// NewService creates a new analysis service. generator may be nil, in which
// case every recommendation comes from the rule-based fallback.
func NewService(
	marketSvc *market.Service,
	currencySvc *currency.Service,
	generator Generator,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		market:    marketSvc,
		currency:  currencySvc,
		generator: generator,
		validator: NewRecommendationValidator(),
		config:    config,
		logger:    logger,
	}
}

// Analyze runs the full pipeline for one ticker.
// A snapshot failure aborts the run; every downstream failure degrades the
// response instead (missing currency view, fallback recommendation).
func (s *Service) Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis request: %w", err)
	}

	ticker := common.ParseTicker(req.Ticker)
	if ticker.Code == "" {
		return nil, fmt.Errorf("invalid ticker %q", req.Ticker)
	}

	log := s.logger.WithCorrelationId(common.NewAnalysisID())
	log.Info().
		Str("ticker", ticker.String()).
		Msg("Starting analysis")

	snapshot, warnings, err := s.market.GetSnapshot(ctx, ticker)
	if err != nil {
		return nil, err
	}

	var currencyView *models.CurrencyImpact
	if req.IncludeCurrency || req.BaseCurrency != "" {
		baseCurrency := req.BaseCurrency
		if baseCurrency == "" {
			baseCurrency = s.config.Analysis.BaseCurrency
		}

		rate, rateErr := s.currency.GetRate(ctx, snapshot.Currency, baseCurrency)
		if rateErr != nil {
			log.Warn().
				Err(rateErr).
				Str("ticker", ticker.String()).
				Msg("Exchange rate unavailable, currency view degraded")
			warnings = append(warnings, "exchange rate unavailable")
			rate = nil
		}
		currencyView = currency.AssessImpact(snapshot, baseCurrency, rate)
	}

	analysisContext := BuildContext(snapshot, currencyView)
	recommendation := s.recommend(ctx, log, analysisContext)

	return &models.AnalysisResponse{
		Ticker:         ticker.String(),
		Snapshot:       snapshot,
		Indicators:     analysisContext.Indicators,
		Sentiment:      analysisContext.Sentiment,
		CurrencyImpact: currencyView,
		Recommendation: recommendation,
		Warnings:       warnings,
		AnalyzedAt:     time.Now().UTC(),
	}, nil
}

// GetRecommendation runs an analysis for a bare ticker string. The currency
// view is always attached; an empty baseCurrency uses the configured default.
func (s *Service) GetRecommendation(ctx context.Context, tickerStr, baseCurrency string) (*models.AnalysisResponse, error) {
	return s.Analyze(ctx, &models.AnalysisRequest{
		Ticker:          tickerStr,
		BaseCurrency:    baseCurrency,
		IncludeCurrency: true,
	})
}

// CurrencyImpact assesses currency risk for a ticker without running the
// recommendation pipeline.
func (s *Service) CurrencyImpact(ctx context.Context, req *models.CurrencyImpactRequest) (*models.CurrencyImpact, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid currency impact request: %w", err)
	}

	ticker := common.ParseTicker(req.Ticker)
	if ticker.Code == "" {
		return nil, fmt.Errorf("invalid ticker %q", req.Ticker)
	}

	snapshot, _, err := s.market.GetSnapshot(ctx, ticker)
	if err != nil {
		return nil, err
	}

	rate, rateErr := s.currency.GetRate(ctx, snapshot.Currency, req.BaseCurrency)
	if rateErr != nil {
		s.logger.Warn().
			Err(rateErr).
			Str("ticker", ticker.String()).
			Msg("Exchange rate unavailable for currency impact")
		rate = nil
	}

	return currency.AssessImpact(snapshot, req.BaseCurrency, rate), nil
}

// recommend produces a recommendation for the context. A failed AI call
// yields the conservative hold; unusable AI output yields the rule-based
// recommendation. An AI failure is never fatal to the request.
func (s *Service) recommend(ctx context.Context, log arbor.ILogger, c *Context) *models.Recommendation {
	if s.generator == nil {
		log.Debug().
			Str("ticker", c.Snapshot.Ticker).
			Msg("No AI provider configured, using rule-based recommendation")
		return FallbackRecommendation(c.Snapshot)
	}

	prompt := BuildPrompt(c)

	response, err := s.generator.GenerateContent(ctx, &llm.ContentRequest{
		Messages: []llm.Message{
			{Role: "user", Content: prompt},
		},
		MaxTokens: s.config.Claude.MaxTokens,
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("ticker", c.Snapshot.Ticker).
			Msg("AI generation failed, using conservative fallback")
		return ErrorFallback(c.Snapshot.Ticker)
	}

	recommendation, err := ParseResponse(c.Snapshot.Ticker, response.Model, response.Text)
	if err != nil {
		log.Warn().
			Err(err).
			Str("ticker", c.Snapshot.Ticker).
			Msg("Failed to parse AI response, using fallback recommendation")
		return FallbackRecommendation(c.Snapshot)
	}

	validation := s.validator.Validate(recommendation, c.Snapshot)
	if !validation.Valid {
		log.Warn().
			Strs("errors", validation.Errors).
			Str("ticker", c.Snapshot.Ticker).
			Msg("AI recommendation failed validation, using fallback")
		return FallbackRecommendation(c.Snapshot)
	}
	for _, warning := range validation.Warnings {
		log.Debug().
			Str("ticker", c.Snapshot.Ticker).
			Str("warning", warning).
			Msg("Recommendation validation warning")
	}

	return recommendation
}
