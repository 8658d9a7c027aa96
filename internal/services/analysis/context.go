package analysis

import (
	"github.com/ternarybob/consilio/internal/models"
)

// Context holds everything the prompt builder needs for one analysis run.
type Context struct {
	Snapshot   *models.StockSnapshot
	Indicators *models.TechnicalIndicators
	Sentiment  *models.MarketSentiment
	Currency   *models.CurrencyImpact
}

// BuildContext assembles the analysis context from a snapshot.
// The currency view is optional.
func BuildContext(snapshot *models.StockSnapshot, currency *models.CurrencyImpact) *Context {
	return &Context{
		Snapshot:   snapshot,
		Indicators: ComputeIndicators(snapshot),
		Sentiment:  ComputeSentiment(snapshot),
		Currency:   currency,
	}
}

// promptData flattens the context into an ordered-agnostic map for YAML
// serialization into the prompt. Unavailable metrics are omitted so the
// model never sees fabricated zeros.
func (c *Context) promptData() map[string]interface{} {
	s := c.Snapshot

	data := map[string]interface{}{
		"ticker":               s.Ticker,
		"company_name":         s.CompanyName,
		"current_price":        s.CurrentPrice,
		"currency":             s.Currency,
		"price_change_percent": c.Indicators.PriceChangePercent,
		"pe_category":          c.Indicators.PECategory,
		"market_cap_category":  c.Indicators.MarketCapCategory,
		"leverage_level":       c.Indicators.LeverageLevel,
		"market_sentiment":     c.Sentiment.Label,
		"sentiment_score":      c.Sentiment.Score,
	}

	if s.Sector != "" {
		data["sector"] = s.Sector
	}
	if s.Industry != "" {
		data["industry"] = s.Industry
	}
	if s.Country != "" {
		data["country"] = s.Country
	}
	if s.PreviousClose > 0 {
		data["previous_close"] = s.PreviousClose
	}
	if s.PERatio != nil {
		data["pe_ratio"] = *s.PERatio
	}
	if s.MarketCap != nil {
		data["market_cap"] = *s.MarketCap
	}
	if s.DividendYield != nil {
		data["dividend_yield"] = *s.DividendYield
	}
	if s.ProfitMargin != nil {
		data["profit_margin"] = *s.ProfitMargin
	}
	if s.ReturnOnEq != nil {
		data["return_on_equity"] = *s.ReturnOnEq
	}
	if s.Beta != nil {
		data["beta"] = *s.Beta
	}
	if s.High52Week != nil {
		data["high_52_week"] = *s.High52Week
	}
	if s.Low52Week != nil {
		data["low_52_week"] = *s.Low52Week
	}
	if s.Volume != nil {
		data["volume"] = *s.Volume
	}
	if s.AvgVolume != nil {
		data["avg_volume"] = *s.AvgVolume
	}
	if c.Indicators.VolumeRatio > 0 {
		data["volume_ratio"] = c.Indicators.VolumeRatio
	}

	if c.Currency != nil {
		data["currency_analysis"] = map[string]interface{}{
			"stock_currency":     c.Currency.StockCurrency,
			"base_currency":      c.Currency.BaseCurrency,
			"currency_risk":      c.Currency.CurrencyRisk,
			"currency_trend":     c.Currency.CurrencyTrend,
			"impact_on_investor": c.Currency.ImpactOnInvestor,
		}
	}

	return data
}
