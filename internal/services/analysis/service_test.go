package analysis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilio/internal/common"
	"github.com/ternarybob/consilio/internal/eodhd"
	"github.com/ternarybob/consilio/internal/models"
	"github.com/ternarybob/consilio/internal/services/currency"
	"github.com/ternarybob/consilio/internal/services/llm"
	"github.com/ternarybob/consilio/internal/services/market"
)

// stubGenerator returns a canned response or error.
type stubGenerator struct {
	response *llm.ContentResponse
	err      error
	requests []*llm.ContentRequest
}

func (g *stubGenerator) GenerateContent(_ context.Context, request *llm.ContentRequest) (*llm.ContentResponse, error) {
	g.requests = append(g.requests, request)
	if g.err != nil {
		return nil, g.err
	}
	return g.response, nil
}

// newMarketTestServer serves quote, fundamentals and EOD history for a
// low P/E stock with a mild price gain, which the fallback rules score
// as a BUY.
func newMarketTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, ".FOREX"):
			w.Write([]byte(`{"code": "USDAUD.FOREX", "close": 1.52}`))
		case strings.HasPrefix(r.URL.Path, "/real-time/"):
			w.Write([]byte(`{
				"code": "VALU.US",
				"close": 51.0,
				"previousClose": 50.0,
				"volume": 1200000
			}`))
		case strings.HasPrefix(r.URL.Path, "/fundamentals/"):
			w.Write([]byte(`{
				"General": {
					"Name": "Value Corp",
					"CurrencyCode": "USD",
					"Sector": "Industrials",
					"Industry": "Machinery"
				},
				"Highlights": {
					"MarketCapitalization": 8000000000,
					"PERatio": 11.5
				}
			}`))
		case strings.HasPrefix(r.URL.Path, "/eod/"):
			w.Write([]byte(`[
				{"date": "2026-08-27", "close": 49.5, "volume": 1000000},
				{"date": "2026-08-28", "close": 50.0, "volume": 1100000}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestService(t *testing.T, serverURL string, generator Generator) *Service {
	t.Helper()
	logger := arbor.NewLogger()
	client := eodhd.NewClient("test-key", eodhd.WithBaseURL(serverURL), eodhd.WithLogger(logger))
	config := common.NewDefaultConfig()
	return NewService(
		market.NewService(client, logger),
		currency.NewService(client, logger),
		generator,
		config,
		logger,
	)
}

const aiResponse = `RECOMMENDATION: BUY
CONFIDENCE: 0.8
RISK_LEVEL: MEDIUM
TARGET_PRICE: $58.00
STOP_LOSS: $46.00
REASONING: P/E of 11.5 is well below sector norms and the price gained 2.0% on above-average volume.
SIMPLE_EXPLANATION: The stock looks cheap relative to earnings and buyers are stepping in.`

func TestAnalyze_AIRecommendation(t *testing.T) {
	server := newMarketTestServer(t)
	defer server.Close()

	generator := &stubGenerator{
		response: &llm.ContentResponse{
			Text:     aiResponse,
			Provider: "claude",
			Model:    "claude-haiku-3-5-20241022",
		},
	}
	service := newTestService(t, server.URL, generator)

	response, err := service.Analyze(context.Background(), &models.AnalysisRequest{Ticker: "VALU"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	rec := response.Recommendation
	if rec.Source != "ai" {
		t.Fatalf("Source = %q, want ai", rec.Source)
	}
	if rec.Action != models.ActionBuy {
		t.Errorf("Action = %q, want BUY", rec.Action)
	}
	if rec.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", rec.Confidence)
	}
	if rec.TargetPrice == nil || *rec.TargetPrice != 58.0 {
		t.Errorf("TargetPrice = %v, want 58.0", rec.TargetPrice)
	}
	if rec.Model != "claude-haiku-3-5-20241022" {
		t.Errorf("Model = %q", rec.Model)
	}
	if len(generator.requests) != 1 {
		t.Fatalf("generator called %d times, want 1", len(generator.requests))
	}
	prompt := generator.requests[0].Messages[0].Content
	if !strings.Contains(prompt, "US:VALU") {
		t.Errorf("prompt missing ticker:\n%s", prompt)
	}
	if response.Indicators == nil || response.Indicators.PECategory != "Low" {
		t.Errorf("Indicators = %+v, want Low PE", response.Indicators)
	}
}

func TestAnalyze_GeneratorErrorFallsBack(t *testing.T) {
	server := newMarketTestServer(t)
	defer server.Close()

	generator := &stubGenerator{err: errors.New("rate limited")}
	service := newTestService(t, server.URL, generator)

	response, err := service.Analyze(context.Background(), &models.AnalysisRequest{Ticker: "VALU"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	rec := response.Recommendation
	if rec.Source != "fallback" {
		t.Fatalf("Source = %q, want fallback", rec.Source)
	}
	// AI errors produce the conservative hold, not the value rules
	if rec.Action != models.ActionHold {
		t.Errorf("Action = %q, want HOLD", rec.Action)
	}
	if !strings.Contains(rec.Reasoning, "AI analysis unavailable") {
		t.Errorf("Reasoning = %q", rec.Reasoning)
	}
}

func TestAnalyze_UnparseableResponseFallsBack(t *testing.T) {
	server := newMarketTestServer(t)
	defer server.Close()

	generator := &stubGenerator{
		response: &llm.ContentResponse{Text: "I cannot analyze this stock right now."},
	}
	service := newTestService(t, server.URL, generator)

	response, err := service.Analyze(context.Background(), &models.AnalysisRequest{Ticker: "VALU"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if response.Recommendation.Source != "fallback" {
		t.Errorf("Source = %q, want fallback", response.Recommendation.Source)
	}
}

func TestAnalyze_InvalidRecommendationFallsBack(t *testing.T) {
	server := newMarketTestServer(t)
	defer server.Close()

	// Generic unquantified reasoning fails validation
	generator := &stubGenerator{
		response: &llm.ContentResponse{
			Text: "RECOMMENDATION: BUY\nCONFIDENCE: 0.9\nREASONING: Solid fundamentals and a quality company.",
		},
	}
	service := newTestService(t, server.URL, generator)

	response, err := service.Analyze(context.Background(), &models.AnalysisRequest{Ticker: "VALU"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if response.Recommendation.Source != "fallback" {
		t.Errorf("Source = %q, want fallback", response.Recommendation.Source)
	}
}

func TestAnalyze_NilGeneratorUsesFallback(t *testing.T) {
	server := newMarketTestServer(t)
	defer server.Close()

	service := newTestService(t, server.URL, nil)

	response, err := service.Analyze(context.Background(), &models.AnalysisRequest{Ticker: "VALU"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if response.Recommendation.Source != "fallback" {
		t.Errorf("Source = %q, want fallback", response.Recommendation.Source)
	}
}

func TestAnalyze_WithCurrencyView(t *testing.T) {
	server := newMarketTestServer(t)
	defer server.Close()

	service := newTestService(t, server.URL, nil)

	response, err := service.Analyze(context.Background(), &models.AnalysisRequest{
		Ticker:       "VALU",
		BaseCurrency: "AUD",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	impact := response.CurrencyImpact
	if impact == nil {
		t.Fatal("expected currency analysis")
	}
	if impact.StockCurrency != "USD" || impact.BaseCurrency != "AUD" {
		t.Errorf("currencies = %s/%s", impact.StockCurrency, impact.BaseCurrency)
	}
	if impact.ExchangeRate != 1.52 {
		t.Errorf("ExchangeRate = %v, want 1.52", impact.ExchangeRate)
	}
}

func TestAnalyze_RateFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, ".FOREX"):
			http.Error(w, `{"message": "unavailable"}`, http.StatusBadGateway)
		case strings.HasPrefix(r.URL.Path, "/real-time/"):
			w.Write([]byte(`{"code": "VALU.US", "close": 51.0, "previousClose": 50.0}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	service := newTestService(t, server.URL, nil)

	response, err := service.Analyze(context.Background(), &models.AnalysisRequest{
		Ticker:       "VALU",
		BaseCurrency: "AUD",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if response.CurrencyImpact == nil {
		t.Fatal("expected degraded currency analysis")
	}

	found := false
	for _, warning := range response.Warnings {
		if strings.Contains(warning, "exchange rate unavailable") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want exchange rate warning", response.Warnings)
	}
}

func TestAnalyze_InvalidTicker(t *testing.T) {
	service := newTestService(t, "http://127.0.0.1:1", nil)

	if _, err := service.Analyze(context.Background(), &models.AnalysisRequest{Ticker: ""}); err == nil {
		t.Error("expected error for empty ticker")
	}
}

func TestCurrencyImpact(t *testing.T) {
	server := newMarketTestServer(t)
	defer server.Close()

	service := newTestService(t, server.URL, nil)

	impact, err := service.CurrencyImpact(context.Background(), &models.CurrencyImpactRequest{
		Ticker:       "VALU",
		BaseCurrency: "AUD",
	})
	if err != nil {
		t.Fatalf("CurrencyImpact failed: %v", err)
	}
	if impact.ExchangeRate != 1.52 {
		t.Errorf("ExchangeRate = %v, want 1.52", impact.ExchangeRate)
	}
	if impact.ConvertedPrice < 77.51 || impact.ConvertedPrice > 77.53 {
		t.Errorf("ConvertedPrice = %v, want ~77.52", impact.ConvertedPrice)
	}
}
