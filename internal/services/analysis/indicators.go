// Package analysis implements the stock analysis pipeline: derived
// indicators, prompt construction, response parsing, and rule-based
// fallback recommendations.
package analysis

import (
	"math"

	"github.com/ternarybob/consilio/internal/models"
)

// Market cap category boundaries in USD.
const (
	megaCapFloor  = 200_000_000_000
	largeCapFloor = 10_000_000_000
	midCapFloor   = 2_000_000_000
	smallCapFloor = 300_000_000
)

// ComputeIndicators derives technical indicator categories from a snapshot.
// Missing inputs produce "Unknown" categories rather than errors.
func ComputeIndicators(snapshot *models.StockSnapshot) *models.TechnicalIndicators {
	indicators := &models.TechnicalIndicators{
		PriceChangePercent: round2(snapshot.PriceChangePercent()),
		PECategory:         peCategory(snapshot.PERatio),
		MarketCapCategory:  MarketCapCategory(snapshot.MarketCap),
		LeverageLevel:      leverageLevel(snapshot.DebtToEquity),
	}

	if snapshot.Volume != nil && snapshot.AvgVolume != nil && *snapshot.AvgVolume > 0 {
		indicators.VolumeRatio = round2(float64(*snapshot.Volume) / float64(*snapshot.AvgVolume))
	}

	return indicators
}

// peCategory buckets the P/E ratio: Low < 15, High > 25, Medium between.
func peCategory(pe *float64) string {
	if pe == nil || *pe <= 0 {
		return "Unknown"
	}
	switch {
	case *pe < 15:
		return "Low"
	case *pe > 25:
		return "High"
	default:
		return "Medium"
	}
}

// MarketCapCategory buckets market capitalization into the standard tiers.
func MarketCapCategory(marketCap *float64) string {
	if marketCap == nil || *marketCap <= 0 {
		return "Unknown"
	}
	switch {
	case *marketCap >= megaCapFloor:
		return "Mega Cap"
	case *marketCap >= largeCapFloor:
		return "Large Cap"
	case *marketCap >= midCapFloor:
		return "Mid Cap"
	case *marketCap >= smallCapFloor:
		return "Small Cap"
	default:
		return "Micro Cap"
	}
}

// leverageLevel buckets debt-to-equity: Low < 0.3, High > 0.7, Medium between.
func leverageLevel(debtToEquity *float64) string {
	if debtToEquity == nil {
		return "Unknown"
	}
	switch {
	case *debtToEquity < 0.3:
		return "Low"
	case *debtToEquity > 0.7:
		return "High"
	default:
		return "Medium"
	}
}

// ComputeSentiment derives a coarse rule-based sentiment signal from price
// action, volume, and profitability.
func ComputeSentiment(snapshot *models.StockSnapshot) *models.MarketSentiment {
	score := 0

	change := snapshot.PriceChangePercent()
	switch {
	case change > 2:
		score += 2
	case change > 0:
		score++
	case change < -2:
		score -= 2
	case change < 0:
		score--
	}

	// Heavy volume confirms the price direction; flat price on heavy
	// volume reads as distribution
	if snapshot.Volume != nil && snapshot.AvgVolume != nil && *snapshot.AvgVolume > 0 {
		if float64(*snapshot.Volume) > 1.5*float64(*snapshot.AvgVolume) {
			if change > 0 {
				score++
			} else {
				score--
			}
		}
	}

	if snapshot.ProfitMargin != nil && *snapshot.ProfitMargin > 0.1 {
		score++
	}
	if snapshot.ReturnOnEq != nil && *snapshot.ReturnOnEq > 0.15 {
		score++
	}

	return &models.MarketSentiment{
		Score: score,
		Label: sentimentLabel(score),
	}
}

func sentimentLabel(score int) string {
	switch {
	case score >= 3:
		return "Very Bullish"
	case score >= 1:
		return "Bullish"
	case score <= -3:
		return "Very Bearish"
	case score <= -1:
		return "Bearish"
	default:
		return "Neutral"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
