package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilio/internal/common"
	"github.com/ternarybob/consilio/internal/eodhd"
)

// createTestLogger creates a logger for testing
func createTestLogger() arbor.ILogger {
	return arbor.NewLogger()
}

// newTestServer returns an httptest server serving quote, fundamentals
// and EOD history for AAPL.US, counting quote requests.
func newTestServer(t *testing.T, quoteRequests *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/real-time/"):
			atomic.AddInt64(quoteRequests, 1)
			w.Write([]byte(`{
				"code": "AAPL.US",
				"close": 184.1,
				"previousClose": 180.0,
				"volume": 55000000
			}`))
		case strings.HasPrefix(r.URL.Path, "/fundamentals/"):
			w.Write([]byte(`{
				"General": {
					"Name": "Apple Inc",
					"CurrencyCode": "USD",
					"CountryName": "USA",
					"Sector": "Technology",
					"Industry": "Consumer Electronics"
				},
				"Highlights": {
					"MarketCapitalization": 2800000000000,
					"PERatio": 28.5,
					"ProfitMargin": 0.253,
					"ReturnOnEquityTTM": 1.479
				},
				"Technicals": {
					"Beta": 1.28,
					"52WeekHigh": 199.62,
					"52WeekLow": 164.08
				}
			}`))
		case strings.HasPrefix(r.URL.Path, "/eod/"):
			w.Write([]byte(`[
				{"date": "2026-08-27", "close": 181.0, "volume": 48000000},
				{"date": "2026-08-28", "close": 180.0, "volume": 52000000}
			]`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestGetSnapshot(t *testing.T) {
	var quoteRequests int64
	server := newTestServer(t, &quoteRequests)
	defer server.Close()

	client := eodhd.NewClient("test-key", eodhd.WithBaseURL(server.URL))
	service := NewService(client, createTestLogger())

	ticker := common.ParseTicker("NASDAQ:AAPL")
	snapshot, warnings, err := service.GetSnapshot(context.Background(), ticker)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}

	if snapshot.CurrentPrice != 184.1 {
		t.Errorf("CurrentPrice = %v, want 184.1", snapshot.CurrentPrice)
	}
	if snapshot.PreviousClose != 180.0 {
		t.Errorf("PreviousClose = %v, want 180.0", snapshot.PreviousClose)
	}
	if snapshot.CompanyName != "Apple Inc" {
		t.Errorf("CompanyName = %q, want Apple Inc", snapshot.CompanyName)
	}
	if snapshot.Sector != "Technology" {
		t.Errorf("Sector = %q, want Technology", snapshot.Sector)
	}
	if snapshot.PERatio == nil || *snapshot.PERatio != 28.5 {
		t.Errorf("PERatio = %v, want 28.5", snapshot.PERatio)
	}
	if snapshot.AvgVolume == nil || *snapshot.AvgVolume != 50000000 {
		t.Errorf("AvgVolume = %v, want 50000000", snapshot.AvgVolume)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}

	change := snapshot.PriceChangePercent()
	if change < 2.27 || change > 2.28 {
		t.Errorf("PriceChangePercent = %v, want ~2.278", change)
	}
}

func TestGetSnapshot_UsesCache(t *testing.T) {
	var quoteRequests int64
	server := newTestServer(t, &quoteRequests)
	defer server.Close()

	client := eodhd.NewClient("test-key", eodhd.WithBaseURL(server.URL))
	service := NewService(client, createTestLogger())

	ticker := common.ParseTicker("NASDAQ:AAPL")
	ctx := context.Background()

	if _, _, err := service.GetSnapshot(ctx, ticker); err != nil {
		t.Fatalf("first GetSnapshot failed: %v", err)
	}
	if _, _, err := service.GetSnapshot(ctx, ticker); err != nil {
		t.Fatalf("second GetSnapshot failed: %v", err)
	}

	if got := atomic.LoadInt64(&quoteRequests); got != 1 {
		t.Errorf("quote requests = %d, want 1 (second call should hit cache)", got)
	}

	// After clearing the cache a new fetch happens
	service.ClearCache()
	if _, _, err := service.GetSnapshot(ctx, ticker); err != nil {
		t.Fatalf("third GetSnapshot failed: %v", err)
	}
	if got := atomic.LoadInt64(&quoteRequests); got != 2 {
		t.Errorf("quote requests = %d, want 2 after cache clear", got)
	}
}

func TestGetSnapshot_CacheExpiry(t *testing.T) {
	var quoteRequests int64
	server := newTestServer(t, &quoteRequests)
	defer server.Close()

	client := eodhd.NewClient("test-key", eodhd.WithBaseURL(server.URL))
	service := NewService(client, createTestLogger()).WithCacheTTL(10 * time.Millisecond)

	ticker := common.ParseTicker("NASDAQ:AAPL")
	ctx := context.Background()

	if _, _, err := service.GetSnapshot(ctx, ticker); err != nil {
		t.Fatalf("first GetSnapshot failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, _, err := service.GetSnapshot(ctx, ticker); err != nil {
		t.Fatalf("second GetSnapshot failed: %v", err)
	}
	if got := atomic.LoadInt64(&quoteRequests); got != 2 {
		t.Errorf("quote requests = %d, want 2 after TTL expiry", got)
	}
}

func TestGetSnapshot_QuoteFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "unknown symbol"}`))
	}))
	defer server.Close()

	client := eodhd.NewClient("test-key", eodhd.WithBaseURL(server.URL))
	service := NewService(client, createTestLogger())

	ticker := common.ParseTicker("NASDAQ:NOPE")
	if _, _, err := service.GetSnapshot(context.Background(), ticker); err == nil {
		t.Error("expected error when quote fetch fails")
	}
}

func TestGetSnapshot_FundamentalsFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/real-time/"):
			w.Write([]byte(`{"code": "XYZ.US", "close": 10.0, "previousClose": 9.5, "volume": 100000}`))
		case strings.HasPrefix(r.URL.Path, "/eod/"):
			w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write([]byte(`{"error": "subscription required"}`))
		}
	}))
	defer server.Close()

	client := eodhd.NewClient("test-key", eodhd.WithBaseURL(server.URL))
	service := NewService(client, createTestLogger())

	ticker := common.ParseTicker("NYSE:XYZ")
	snapshot, warnings, err := service.GetSnapshot(context.Background(), ticker)
	if err != nil {
		t.Fatalf("GetSnapshot should not fail when fundamentals are unavailable: %v", err)
	}
	if snapshot.CurrentPrice != 10.0 {
		t.Errorf("CurrentPrice = %v, want 10.0", snapshot.CurrentPrice)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning for missing fundamentals")
	}
}
