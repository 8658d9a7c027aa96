// Package market provides stock snapshot retrieval with caching.
// It combines EODHD real-time quotes, fundamentals, and recent EOD history
// into a single snapshot for the analysis pipeline.
package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilio/internal/common"
	"github.com/ternarybob/consilio/internal/eodhd"
	"github.com/ternarybob/consilio/internal/models"
)

const (
	// DefaultCacheTTL is the default time-to-live for cached snapshots.
	DefaultCacheTTL = 5 * time.Minute

	// historyDays is the EOD lookback window for average volume.
	historyDays = 30
)

// Service provides stock snapshot retrieval with caching.
type Service struct {
	eodhd    *eodhd.Client
	logger   arbor.ILogger
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	snapshot  *models.StockSnapshot
	warnings  []string
	expiresAt time.Time
}

// NewService creates a new market snapshot service.
func NewService(eodhdClient *eodhd.Client, logger arbor.ILogger) *Service {
	return &Service{
		eodhd:    eodhdClient,
		logger:   logger,
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cacheEntry),
	}
}

// WithCacheTTL sets a custom cache TTL.
func (s *Service) WithCacheTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
	return s
}

// GetSnapshot retrieves a stock snapshot, using cache if available and fresh.
// A quote failure is fatal; fundamentals and history failures degrade the
// snapshot and are reported as warnings.
func (s *Service) GetSnapshot(ctx context.Context, ticker common.Ticker) (*models.StockSnapshot, []string, error) {
	symbol := ticker.EODHDSymbol()
	if symbol == "" {
		return nil, nil, fmt.Errorf("invalid ticker %q", ticker.Raw)
	}

	// Try cache first
	s.mu.RLock()
	entry, ok := s.cache[symbol]
	s.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		s.logger.Debug().
			Str("symbol", symbol).
			Msg("Using cached snapshot")
		return entry.snapshot, entry.warnings, nil
	}

	snapshot, warnings, err := s.fetchSnapshot(ctx, ticker, symbol)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	s.cache[symbol] = cacheEntry{
		snapshot:  snapshot,
		warnings:  warnings,
		expiresAt: time.Now().Add(s.cacheTTL),
	}
	s.mu.Unlock()

	return snapshot, warnings, nil
}

// fetchSnapshot builds a snapshot from the EODHD API.
func (s *Service) fetchSnapshot(ctx context.Context, ticker common.Ticker, symbol string) (*models.StockSnapshot, []string, error) {
	var warnings []string

	quote, err := s.eodhd.GetRealTimeQuote(ctx, symbol)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	if quote.Close <= 0 {
		return nil, nil, fmt.Errorf("no price data available for %s", symbol)
	}

	snapshot := &models.StockSnapshot{
		Ticker:        ticker.String(),
		Symbol:        symbol,
		CurrentPrice:  quote.Close,
		PreviousClose: quote.PreviousClose,
		Currency:      ticker.Currency(),
		FetchedAt:     time.Now().UTC(),
	}
	if quote.Volume > 0 {
		volume := quote.Volume
		snapshot.Volume = &volume
	}

	// Fundamentals enrich the snapshot but are not required
	fundamentals, err := s.eodhd.GetFundamentals(ctx, symbol)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("symbol", symbol).
			Msg("Failed to fetch fundamentals, snapshot degraded")
		warnings = append(warnings, "fundamentals unavailable")
	} else {
		applyFundamentals(snapshot, fundamentals)
	}

	// Recent EOD history provides average volume
	from := time.Now().AddDate(0, 0, -historyDays)
	history, err := s.eodhd.GetEOD(ctx, symbol, eodhd.WithDateRange(from, time.Now()))
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("symbol", symbol).
			Msg("Failed to fetch EOD history")
		warnings = append(warnings, "volume history unavailable")
	} else if avg := averageVolume(history); avg > 0 {
		snapshot.AvgVolume = &avg
	}

	s.logger.Debug().
		Str("symbol", symbol).
		Float64("price", snapshot.CurrentPrice).
		Int("warnings", len(warnings)).
		Msg("Fetched snapshot")

	return snapshot, warnings, nil
}

// applyFundamentals copies the fields the analysis pipeline uses from an
// EODHD fundamentals response onto the snapshot.
func applyFundamentals(snapshot *models.StockSnapshot, f *eodhd.FundamentalsResponse) {
	if f.General != nil {
		snapshot.CompanyName = f.General.Name
		snapshot.Sector = f.General.Sector
		snapshot.Industry = f.General.Industry
		snapshot.Country = f.General.CountryName
		if f.General.CurrencyCode != "" {
			snapshot.Currency = f.General.CurrencyCode
		}
	}

	if f.Highlights != nil {
		h := f.Highlights
		if h.MarketCapitalization > 0 {
			v := h.MarketCapitalization
			snapshot.MarketCap = &v
		}
		if h.PERatio > 0 {
			v := h.PERatio
			snapshot.PERatio = &v
		}
		if h.DividendYield > 0 {
			v := h.DividendYield
			snapshot.DividendYield = &v
		}
		if h.ProfitMargin != 0 {
			v := h.ProfitMargin
			snapshot.ProfitMargin = &v
		}
		if h.ReturnOnEquityTTM != 0 {
			v := h.ReturnOnEquityTTM
			snapshot.ReturnOnEq = &v
		}
	}

	if f.Valuation != nil && snapshot.PERatio == nil && f.Valuation.TrailingPE > 0 {
		v := f.Valuation.TrailingPE
		snapshot.PERatio = &v
	}

	if f.Technicals != nil {
		t := f.Technicals
		if t.Beta != 0 {
			v := t.Beta
			snapshot.Beta = &v
		}
		if t.FiftyTwoWeekHigh > 0 {
			v := t.FiftyTwoWeekHigh
			snapshot.High52Week = &v
		}
		if t.FiftyTwoWeekLow > 0 {
			v := t.FiftyTwoWeekLow
			snapshot.Low52Week = &v
		}
	}
}

// averageVolume computes the mean daily volume over the history window.
func averageVolume(history eodhd.EODResponse) int64 {
	if len(history) == 0 {
		return 0
	}
	var total int64
	var count int64
	for _, day := range history {
		if day.Volume > 0 {
			total += day.Volume
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / count
}

// ClearCache drops all cached snapshots.
func (s *Service) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]cacheEntry)
	s.mu.Unlock()
}
