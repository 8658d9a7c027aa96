package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetRealTimeQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/real-time/AAPL.US" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_token") != "test-key" {
			t.Errorf("missing api_token query param")
		}
		if r.URL.Query().Get("fmt") != "json" {
			t.Errorf("missing fmt=json query param")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": "AAPL.US",
			"timestamp": 1714060800,
			"open": 182.5,
			"high": 185.2,
			"low": 181.9,
			"close": 184.1,
			"previousClose": 180.0,
			"change": 4.1,
			"change_p": 2.2778,
			"volume": 55000000
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	quote, err := client.GetRealTimeQuote(context.Background(), "AAPL.US")
	if err != nil {
		t.Fatalf("GetRealTimeQuote failed: %v", err)
	}

	if quote.Close != 184.1 {
		t.Errorf("Close = %v, want 184.1", quote.Close)
	}
	if quote.PreviousClose != 180.0 {
		t.Errorf("PreviousClose = %v, want 180.0", quote.PreviousClose)
	}
	if quote.Volume != 55000000 {
		t.Errorf("Volume = %v, want 55000000", quote.Volume)
	}
}

func TestGetRealTimeQuote_NAFields(t *testing.T) {
	// Outside trading hours EODHD returns "NA" for some numeric fields
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": "BHP.AU",
			"timestamp": 1714060800,
			"open": "NA",
			"high": "NA",
			"low": "NA",
			"close": 44.85,
			"previousClose": 45.10,
			"change": "NA",
			"change_p": "NA",
			"volume": "NA"
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	quote, err := client.GetRealTimeQuote(context.Background(), "BHP.AU")
	if err != nil {
		t.Fatalf("GetRealTimeQuote failed: %v", err)
	}

	if quote.Close != 44.85 {
		t.Errorf("Close = %v, want 44.85", quote.Close)
	}
	if quote.Open != 0 {
		t.Errorf("Open = %v, want 0 for NA field", quote.Open)
	}
	if quote.Volume != 0 {
		t.Errorf("Volume = %v, want 0 for NA field", quote.Volume)
	}
}

func TestGetFundamentals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fundamentals/AAPL.US" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"General": {
				"Code": "AAPL",
				"Name": "Apple Inc",
				"Exchange": "NASDAQ",
				"CurrencyCode": "USD",
				"CountryName": "USA",
				"Sector": "Technology",
				"Industry": "Consumer Electronics"
			},
			"Highlights": {
				"MarketCapitalization": 2800000000000,
				"PERatio": 28.5,
				"ProfitMargin": 0.253,
				"ReturnOnEquityTTM": 1.479,
				"DividendYield": 0.0055
			},
			"Technicals": {
				"Beta": 1.28,
				"52WeekHigh": 199.62,
				"52WeekLow": 164.08
			}
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	fundamentals, err := client.GetFundamentals(context.Background(), "AAPL.US")
	if err != nil {
		t.Fatalf("GetFundamentals failed: %v", err)
	}

	if fundamentals.General == nil || fundamentals.General.Sector != "Technology" {
		t.Errorf("General.Sector not parsed correctly: %+v", fundamentals.General)
	}
	if fundamentals.Highlights == nil || fundamentals.Highlights.PERatio != 28.5 {
		t.Errorf("Highlights.PERatio not parsed correctly: %+v", fundamentals.Highlights)
	}
	if fundamentals.Technicals == nil || fundamentals.Technicals.FiftyTwoWeekHigh != 199.62 {
		t.Errorf("Technicals.FiftyTwoWeekHigh not parsed correctly: %+v", fundamentals.Technicals)
	}
}

func TestGetForexRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/real-time/EURUSD.FOREX" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": "EURUSD.FOREX", "close": 1.0845}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	rate, err := client.GetForexRate(context.Background(), "EUR", "USD")
	if err != nil {
		t.Fatalf("GetForexRate failed: %v", err)
	}
	if rate != 1.0845 {
		t.Errorf("rate = %v, want 1.0845", rate)
	}
}

func TestGetForexRate_SameCurrency(t *testing.T) {
	// Same-currency conversion must not hit the API
	client := NewClient("test-key", WithBaseURL("http://127.0.0.1:1"))

	rate, err := client.GetForexRate(context.Background(), "USD", "usd")
	if err != nil {
		t.Fatalf("GetForexRate failed: %v", err)
	}
	if rate != 1.0 {
		t.Errorf("rate = %v, want 1.0", rate)
	}
}

func TestGetForexRate_InvalidPair(t *testing.T) {
	client := NewClient("test-key")

	if _, err := client.GetForexRate(context.Background(), "US", "USD"); err == nil {
		t.Error("expected error for invalid currency code")
	}
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "invalid token"}`))
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL))

	_, err := client.GetRealTimeQuote(context.Background(), "AAPL.US")
	if err == nil {
		t.Fatal("expected error for 403 response")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
}
