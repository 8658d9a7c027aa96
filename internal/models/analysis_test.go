package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	assert.Equal(t, ActionBuy, ParseAction("BUY"))
	assert.Equal(t, ActionBuy, ParseAction(" buy "))
	assert.Equal(t, ActionSell, ParseAction("Sell"))
	assert.Equal(t, ActionHold, ParseAction("HOLD"))
	assert.Equal(t, ActionHold, ParseAction("strong buy maybe"))
	assert.Equal(t, ActionHold, ParseAction(""))
}

func TestParseRiskLevel(t *testing.T) {
	assert.Equal(t, RiskLow, ParseRiskLevel("low"))
	assert.Equal(t, RiskMedium, ParseRiskLevel("MEDIUM"))
	assert.Equal(t, RiskHigh, ParseRiskLevel(" High "))
	assert.Equal(t, RiskMedium, ParseRiskLevel("unknown"))
	assert.Equal(t, RiskMedium, ParseRiskLevel(""))
}

func TestRecommendation_Validate(t *testing.T) {
	rec := &Recommendation{
		ID:          "anl_test",
		Ticker:      "US:AAPL",
		Action:      ActionBuy,
		Confidence:  0.8,
		RiskLevel:   RiskMedium,
		Reasoning:   "P/E of 12 below sector average",
		Source:      "ai",
		GeneratedAt: time.Now(),
	}
	require.NoError(t, rec.Validate())

	rec.Confidence = 1.5
	assert.Error(t, rec.Validate(), "confidence above 1 must fail")

	rec.Confidence = 0.8
	rec.Action = "MAYBE"
	assert.Error(t, rec.Validate(), "unknown action must fail")

	rec.Action = ActionHold
	rec.RiskLevel = "EXTREME"
	assert.Error(t, rec.Validate(), "unknown risk level must fail")
}

func TestAnalysisRequest_Validate(t *testing.T) {
	require.NoError(t, (&AnalysisRequest{Ticker: "AAPL"}).Validate())
	require.NoError(t, (&AnalysisRequest{Ticker: "AAPL", BaseCurrency: "AUD"}).Validate())

	assert.Error(t, (&AnalysisRequest{}).Validate(), "ticker is required")
	assert.Error(t, (&AnalysisRequest{Ticker: "AAPL", BaseCurrency: "AUDX"}).Validate(), "base currency must be 3 letters")
}

func TestCurrencyImpactRequest_Validate(t *testing.T) {
	require.NoError(t, (&CurrencyImpactRequest{Ticker: "AAPL", BaseCurrency: "AUD"}).Validate())

	assert.Error(t, (&CurrencyImpactRequest{Ticker: "AAPL"}).Validate(), "base currency is required")
	assert.Error(t, (&CurrencyImpactRequest{BaseCurrency: "AUD"}).Validate(), "ticker is required")
}

func TestStockSnapshot_PriceChangePercent(t *testing.T) {
	snapshot := &StockSnapshot{CurrentPrice: 102.5, PreviousClose: 100.0}
	assert.InDelta(t, 2.5, snapshot.PriceChangePercent(), 0.0001)

	snapshot.PreviousClose = 0
	assert.Equal(t, 0.0, snapshot.PriceChangePercent())
}
