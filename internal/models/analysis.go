// -----------------------------------------------------------------------
// Analysis models - Typed structures for the stock analysis pipeline
// Recommendations are validated using go-playground/validator tags
// -----------------------------------------------------------------------

package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Action is the recommendation class for a stock.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// ParseAction normalizes a free-form action string to a known Action.
// Returns ActionHold for anything unrecognized.
func ParseAction(s string) Action {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return ActionBuy
	case "SELL":
		return ActionSell
	case "HOLD":
		return ActionHold
	default:
		return ActionHold
	}
}

// RiskLevel is the qualitative risk bucket for a recommendation.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ParseRiskLevel normalizes a free-form risk string to a known RiskLevel.
// Returns RiskMedium for anything unrecognized.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return RiskLow
	case "MEDIUM":
		return RiskMedium
	case "HIGH":
		return RiskHigh
	default:
		return RiskMedium
	}
}

// StockSnapshot holds the market data inputs for a single analysis run.
// Optional fields are pointers so "unavailable" is distinguishable from zero.
type StockSnapshot struct {
	Ticker        string   `json:"ticker" validate:"required"`
	Symbol        string   `json:"symbol"` // EODHD symbol, e.g. "AAPL.US"
	CompanyName   string   `json:"company_name,omitempty"`
	CurrentPrice  float64  `json:"current_price" validate:"gt=0"`
	PreviousClose float64  `json:"previous_close"`
	Currency      string   `json:"currency"`
	Volume        *int64   `json:"volume,omitempty"`
	AvgVolume     *int64   `json:"avg_volume,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	ProfitMargin  *float64 `json:"profit_margin,omitempty"`
	ReturnOnEq    *float64 `json:"return_on_equity,omitempty"`
	DebtToEquity  *float64 `json:"debt_to_equity,omitempty"`
	Beta          *float64 `json:"beta,omitempty"`
	High52Week    *float64 `json:"high_52_week,omitempty"`
	Low52Week     *float64 `json:"low_52_week,omitempty"`
	Sector        string   `json:"sector,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	Country       string   `json:"country,omitempty"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// PriceChangePercent returns the percent change from previous close.
// Returns 0 when previous close is unavailable.
func (s *StockSnapshot) PriceChangePercent() float64 {
	if s.PreviousClose <= 0 {
		return 0
	}
	return (s.CurrentPrice - s.PreviousClose) / s.PreviousClose * 100
}

// CurrencyRate holds an exchange rate between the stock currency and the
// requester's base currency.
type CurrencyRate struct {
	FromCurrency string    `json:"from_currency" validate:"required,len=3"`
	ToCurrency   string    `json:"to_currency" validate:"required,len=3"`
	Rate         float64   `json:"rate" validate:"gt=0"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// CurrencyImpact is the currency-risk view attached to a recommendation.
type CurrencyImpact struct {
	StockCurrency     string    `json:"stock_currency"`
	BaseCurrency      string    `json:"base_currency"`
	ExchangeRate      float64   `json:"exchange_rate,omitempty"`
	CurrencyRisk      string    `json:"currency_risk"`      // MINIMAL, MEDIUM, HIGH
	RiskLevel         RiskLevel `json:"risk_level"`         // LOW, MEDIUM, HIGH
	CurrencyTrend     string    `json:"currency_trend"`     // STRENGTHENING, WEAKENING, STABLE
	ImpactOnInvestor  string    `json:"impact_on_investor"` // POSITIVE, NEGATIVE, NEUTRAL
	ConvertedPrice    float64   `json:"converted_price,omitempty"`
	InternationalFlag bool      `json:"international_exposure"`
	Recommendations   []string  `json:"recommendations,omitempty"`
}

// TechnicalIndicators are derived metrics computed from the snapshot.
type TechnicalIndicators struct {
	PriceChangePercent float64 `json:"price_change_percent"`
	PECategory         string  `json:"pe_category"`         // Low, Medium, High, Unknown
	MarketCapCategory  string  `json:"market_cap_category"` // Mega/Large/Mid/Small/Micro Cap, Unknown
	LeverageLevel      string  `json:"leverage_level"`      // Low, Medium, High, Unknown
	VolumeRatio        float64 `json:"volume_ratio,omitempty"`
}

// MarketSentiment is a coarse rule-based sentiment signal.
type MarketSentiment struct {
	Score int    `json:"score"`
	Label string `json:"label"` // Very Bullish, Bullish, Neutral, Bearish, Very Bearish
}

// Recommendation is the final structured output of an analysis.
type Recommendation struct {
	ID         string    `json:"id"`
	Ticker     string    `json:"ticker" validate:"required"`
	Action     Action    `json:"action" validate:"required,oneof=BUY SELL HOLD"`
	Confidence float64   `json:"confidence" validate:"gte=0,lte=1"`
	RiskLevel  RiskLevel `json:"risk_level" validate:"required,oneof=LOW MEDIUM HIGH"`

	// Optional trade levels extracted from the model output
	TargetPrice *float64 `json:"target_price,omitempty"`
	StopLoss    *float64 `json:"stop_loss,omitempty"`

	Reasoning         string `json:"reasoning"`
	SimpleExplanation string `json:"simple_explanation,omitempty"`
	CurrencyImpact    string `json:"currency_impact,omitempty"`

	// Source is "ai" when parsed from model output, "fallback" otherwise
	Source      string    `json:"source"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Validate validates the recommendation using go-playground/validator.
func (r *Recommendation) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// AnalysisRequest is the request body for POST /api/analyze.
type AnalysisRequest struct {
	Ticker          string `json:"ticker" validate:"required"`
	BaseCurrency    string `json:"base_currency,omitempty" validate:"omitempty,len=3"`
	IncludeCurrency bool   `json:"include_currency_analysis,omitempty"`
}

// Validate validates the request using go-playground/validator.
func (r *AnalysisRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// AnalysisResponse is the full response for an analysis run.
type AnalysisResponse struct {
	Ticker         string               `json:"ticker"`
	Snapshot       *StockSnapshot       `json:"snapshot"`
	Indicators     *TechnicalIndicators `json:"technical_indicators,omitempty"`
	Sentiment      *MarketSentiment     `json:"market_sentiment,omitempty"`
	CurrencyImpact *CurrencyImpact      `json:"currency_analysis,omitempty"`
	Recommendation *Recommendation      `json:"recommendation"`

	// Warnings lists non-fatal data gaps (fundamentals missing, rate unavailable)
	Warnings []string `json:"warnings,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// CurrencyImpactRequest is the request body for POST /api/currency-impact.
type CurrencyImpactRequest struct {
	Ticker       string `json:"ticker" validate:"required"`
	BaseCurrency string `json:"base_currency" validate:"required,len=3"`
}

// Validate validates the request using go-playground/validator.
func (r *CurrencyImpactRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
