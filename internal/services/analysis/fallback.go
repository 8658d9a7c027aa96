package analysis

import (
	"time"

	"github.com/ternarybob/consilio/internal/common"
	"github.com/ternarybob/consilio/internal/models"
)

// FallbackRecommendation produces a deterministic rule-based recommendation
// from the snapshot when no AI provider is available or its output could
// not be used.
//
// Rules:
//   - P/E below 15 with a stable price (above -2%) is a value BUY
//   - P/E above 25 or a drop beyond -5% is a SELL
//   - everything else is a HOLD
func FallbackRecommendation(snapshot *models.StockSnapshot) *models.Recommendation {
	rec := &models.Recommendation{
		ID:          common.NewAnalysisID(),
		Ticker:      snapshot.Ticker,
		Action:      models.ActionHold,
		Confidence:  0.5,
		RiskLevel:   models.RiskMedium,
		Source:      "fallback",
		GeneratedAt: time.Now().UTC(),
	}

	priceChange := snapshot.PriceChangePercent()
	pe := 0.0
	if snapshot.PERatio != nil {
		pe = *snapshot.PERatio
	}

	switch {
	case pe > 0 && pe < 15 && priceChange > -2:
		rec.Action = models.ActionBuy
		rec.Confidence = 0.7
		rec.Reasoning = "Low P/E ratio and stable price suggests good value"
		rec.SimpleExplanation = "The stock looks cheap relative to its earnings and the price is holding up, which makes it a reasonable buy."
	case pe > 25 || priceChange < -5:
		rec.Action = models.ActionSell
		rec.Confidence = 0.6
		rec.Reasoning = "High P/E ratio or significant price decline suggests overvaluation or negative momentum"
		rec.SimpleExplanation = "The stock is either expensive relative to its earnings or falling sharply, so selling reduces risk."
	default:
		rec.Reasoning = "Mixed signals suggest holding current position"
		rec.SimpleExplanation = "There is no strong signal either way, so holding is the safest choice."
	}

	return rec
}

// ErrorFallback produces the conservative HOLD used when the AI call fails
// and the snapshot-based rules cannot be applied.
func ErrorFallback(ticker string) *models.Recommendation {
	return &models.Recommendation{
		ID:                common.NewAnalysisID(),
		Ticker:            ticker,
		Action:            models.ActionHold,
		Confidence:        0.5,
		RiskLevel:         models.RiskMedium,
		Reasoning:         "AI analysis unavailable - conservative HOLD",
		SimpleExplanation: "The analysis service could not evaluate this stock right now, so the safe default is to hold.",
		Source:            "fallback",
		GeneratedAt:       time.Now().UTC(),
	}
}
