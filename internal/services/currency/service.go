// Package currency provides exchange rate retrieval and currency risk
// assessment for cross-currency stock positions.
package currency

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilio/internal/eodhd"
	"github.com/ternarybob/consilio/internal/models"
)

const (
	// DefaultCacheTTL is the default time-to-live for cached exchange rates.
	DefaultCacheTTL = 5 * time.Minute

	// Currency risk buckets
	RiskMinimal = "MINIMAL"
	RiskMedium  = "MEDIUM"
	RiskHigh    = "HIGH"

	// Currency trend values
	TrendStrengthening = "STRENGTHENING"
	TrendWeakening     = "WEAKENING"
	TrendStable        = "STABLE"

	// Investor impact values
	ImpactPositive = "POSITIVE"
	ImpactNegative = "NEGATIVE"
	ImpactNeutral  = "NEUTRAL"
)

// internationalSectors are sectors with significant cross-border revenue.
var internationalSectors = map[string]bool{
	"technology":             true,
	"telecommunications":     true,
	"energy":                 true,
	"materials":              true,
	"industrials":            true,
	"consumer discretionary": true,
}

// exportIndustries are industries dominated by export revenue.
var exportIndustries = []string{
	"semiconductors",
	"software",
	"oil & gas",
	"mining",
	"automotive",
	"aerospace",
	"pharmaceuticals",
}

// emergingCurrencies carry elevated volatility risk regardless of sector.
var emergingCurrencies = map[string]bool{
	"BRL": true,
	"INR": true,
	"RUB": true,
	"ZAR": true,
	"TRY": true,
	"MXN": true,
}

// currencyStrength is a coarse relative-strength score per major currency.
// Used to derive a trend between the stock currency and base currency.
var currencyStrength = map[string]float64{
	"USD": 0.8,
	"EUR": 0.6,
	"GBP": 0.5,
	"JPY": 0.3,
	"CHF": 0.9,
	"CAD": 0.6,
	"AUD": 0.4,
}

const defaultStrength = 0.5

// Service provides exchange rates with caching and currency risk assessment.
type Service struct {
	eodhd    *eodhd.Client
	logger   arbor.ILogger
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]rateEntry
}

type rateEntry struct {
	rate      float64
	expiresAt time.Time
}

// NewService creates a new currency service.
func NewService(eodhdClient *eodhd.Client, logger arbor.ILogger) *Service {
	return &Service{
		eodhd:    eodhdClient,
		logger:   logger,
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]rateEntry),
	}
}

// WithCacheTTL sets a custom cache TTL.
func (s *Service) WithCacheTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
	return s
}

// GetRate retrieves the exchange rate from one currency to another.
// Same-currency requests return 1.0 without touching the API.
func (s *Service) GetRate(ctx context.Context, fromCurrency, toCurrency string) (*models.CurrencyRate, error) {
	from := strings.ToUpper(strings.TrimSpace(fromCurrency))
	to := strings.ToUpper(strings.TrimSpace(toCurrency))

	if from == to {
		return &models.CurrencyRate{
			FromCurrency: from,
			ToCurrency:   to,
			Rate:         1.0,
			FetchedAt:    time.Now().UTC(),
		}, nil
	}

	key := from + "/" + to
	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return &models.CurrencyRate{
			FromCurrency: from,
			ToCurrency:   to,
			Rate:         entry.rate,
			FetchedAt:    time.Now().UTC(),
		}, nil
	}

	rate, err := s.eodhd.GetForexRate(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rate %s: %w", key, err)
	}

	s.mu.Lock()
	s.cache[key] = rateEntry{rate: rate, expiresAt: time.Now().Add(s.cacheTTL)}
	s.mu.Unlock()

	s.logger.Debug().
		Str("pair", key).
		Float64("rate", rate).
		Msg("Fetched exchange rate")

	return &models.CurrencyRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         rate,
		FetchedAt:    time.Now().UTC(),
	}, nil
}

// AssessImpact builds the currency risk view for a snapshot against a base
// currency. rate may be nil when unavailable; the assessment still runs on
// sector/industry/currency classification alone.
func AssessImpact(snapshot *models.StockSnapshot, baseCurrency string, rate *models.CurrencyRate) *models.CurrencyImpact {
	stockCurrency := strings.ToUpper(strings.TrimSpace(snapshot.Currency))
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))

	impact := &models.CurrencyImpact{
		StockCurrency: stockCurrency,
		BaseCurrency:  base,
	}

	if stockCurrency == base {
		impact.CurrencyRisk = RiskMinimal
		impact.RiskLevel = models.RiskLow
		impact.CurrencyTrend = TrendStable
		impact.ImpactOnInvestor = ImpactNeutral
		impact.ExchangeRate = 1.0
		impact.ConvertedPrice = snapshot.CurrentPrice
		impact.Recommendations = []string{
			"Stock trades in your base currency - no conversion risk",
		}
		return impact
	}

	impact.CurrencyRisk = classifyRisk(snapshot, stockCurrency, base)
	impact.RiskLevel = riskToLevel(impact.CurrencyRisk)
	impact.InternationalFlag = isInternational(snapshot)
	impact.CurrencyTrend, impact.ImpactOnInvestor = assessTrend(stockCurrency, base)

	if rate != nil && rate.Rate > 0 {
		impact.ExchangeRate = rate.Rate
		impact.ConvertedPrice = snapshot.CurrentPrice * rate.Rate
	}

	impact.Recommendations = buildRecommendations(impact)
	return impact
}

// classifyRisk buckets the currency exposure of a snapshot.
func classifyRisk(snapshot *models.StockSnapshot, stockCurrency, baseCurrency string) string {
	risk := RiskMinimal
	if isInternational(snapshot) {
		risk = RiskMedium
	}

	// Smaller companies absorb currency swings poorly
	if smallCap(snapshot) {
		if risk == RiskMinimal {
			risk = RiskMedium
		} else {
			risk = RiskHigh
		}
	}

	// Emerging-market currencies carry elevated volatility on either side
	// of the conversion
	if emergingCurrencies[stockCurrency] || emergingCurrencies[baseCurrency] {
		risk = RiskHigh
	}

	return risk
}

// isInternational reports whether the company likely has significant
// cross-border revenue based on sector and industry.
func isInternational(snapshot *models.StockSnapshot) bool {
	sector := strings.ToLower(strings.TrimSpace(snapshot.Sector))
	if internationalSectors[sector] {
		return true
	}

	industry := strings.ToLower(strings.TrimSpace(snapshot.Industry))
	for _, export := range exportIndustries {
		if strings.Contains(industry, export) {
			return true
		}
	}
	return false
}

// smallCap reports whether the company is Small Cap or below.
func smallCap(snapshot *models.StockSnapshot) bool {
	if snapshot.MarketCap == nil {
		return false
	}
	return *snapshot.MarketCap < 2_000_000_000
}

// assessTrend derives a trend and investor impact from relative currency
// strength. A materially stronger stock currency benefits the investor on
// conversion; a weaker one erodes returns.
func assessTrend(stockCurrency, baseCurrency string) (string, string) {
	stockStrength := strengthOf(stockCurrency)
	baseStrength := strengthOf(baseCurrency)

	switch {
	case stockStrength > baseStrength+0.2:
		return TrendStrengthening, ImpactPositive
	case stockStrength < baseStrength-0.2:
		return TrendWeakening, ImpactNegative
	default:
		return TrendStable, ImpactNeutral
	}
}

func strengthOf(currency string) float64 {
	if s, ok := currencyStrength[currency]; ok {
		return s
	}
	return defaultStrength
}

// riskToLevel maps a currency risk bucket to the shared RiskLevel scale.
func riskToLevel(risk string) models.RiskLevel {
	switch risk {
	case RiskHigh:
		return models.RiskHigh
	case RiskMedium:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// buildRecommendations produces investor guidance strings for the assessment.
func buildRecommendations(impact *models.CurrencyImpact) []string {
	var recommendations []string

	switch impact.CurrencyRisk {
	case RiskHigh:
		recommendations = append(recommendations,
			fmt.Sprintf("High currency risk: %s positions can swing significantly against %s", impact.StockCurrency, impact.BaseCurrency),
			"Consider currency-hedged funds or limiting position size")
	case RiskMedium:
		recommendations = append(recommendations,
			fmt.Sprintf("Moderate currency exposure between %s and %s", impact.StockCurrency, impact.BaseCurrency),
			"Monitor exchange rate movements alongside the stock price")
	default:
		recommendations = append(recommendations,
			"Currency exposure is limited for this position")
	}

	switch impact.ImpactOnInvestor {
	case ImpactPositive:
		recommendations = append(recommendations,
			fmt.Sprintf("A strengthening %s boosts returns when converted to %s", impact.StockCurrency, impact.BaseCurrency))
	case ImpactNegative:
		recommendations = append(recommendations,
			fmt.Sprintf("A weakening %s erodes returns when converted to %s", impact.StockCurrency, impact.BaseCurrency))
	}

	return recommendations
}
