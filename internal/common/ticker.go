// Package common provides shared utilities across the application.
package common

import (
	"strings"
)

// Ticker represents a parsed exchange-qualified ticker.
// Format: EXCHANGE:CODE (e.g., "NASDAQ:AAPL", "ASX:BHP")
type Ticker struct {
	// Exchange is the exchange code (e.g., "NYSE", "NASDAQ", "ASX")
	Exchange string
	// Code is the stock/security code (e.g., "AAPL", "BHP")
	Code string
	// Raw is the original ticker string
	Raw string
}

// ExchangeToSuffix maps exchange codes to EODHD API suffixes.
var ExchangeToSuffix = map[string]string{
	"NYSE":   ".US",
	"NASDAQ": ".US",
	"AMEX":   ".US",
	"US":     ".US",
	"ASX":    ".AU",
	"LSE":    ".LSE",
	"TSX":    ".TO",
	"XETRA":  ".XETRA",
	"PA":     ".PA",
	"HK":     ".HK",
	"TYO":    ".TYO",
}

// ExchangeCurrency maps exchange codes to their trading currency.
// Used when the fundamentals response omits a currency code.
var ExchangeCurrency = map[string]string{
	"NYSE":   "USD",
	"NASDAQ": "USD",
	"AMEX":   "USD",
	"US":     "USD",
	"ASX":    "AUD",
	"LSE":    "GBP",
	"TSX":    "CAD",
	"XETRA":  "EUR",
	"PA":     "EUR",
	"HK":     "HKD",
	"TYO":    "JPY",
}

// DefaultExchange is the default exchange used when parsing tickers without an exchange prefix.
// Can be overridden via [analysis] default_exchange config in TOML.
var DefaultExchange = "US"

// SetDefaultExchange sets the default exchange for parsing tickers.
// Called during app initialization from config.
func SetDefaultExchange(exchange string) {
	if exchange != "" {
		DefaultExchange = strings.ToUpper(exchange)
	}
}

// ParseTicker parses an exchange-qualified ticker string.
// Supports formats:
//   - "NASDAQ:AAPL" -> Exchange="NASDAQ", Code="AAPL" (colon separator)
//   - "NASDAQ.AAPL" -> Exchange="NASDAQ", Code="AAPL" (dot separator)
//   - "AAPL.US" -> Exchange="US", Code="AAPL" (EODHD suffix form)
//   - "AAPL" -> Exchange=DefaultExchange, Code="AAPL"
//   - "aapl" -> Exchange=DefaultExchange, Code="AAPL" (normalized to uppercase)
//
// Note: EODHD uses CODE.EXCHANGE (e.g., "AAPL.US"), while our format uses EXCHANGE.CODE.
// Use EODHDSymbol() to convert to EODHD format.
func ParseTicker(ticker string) Ticker {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return Ticker{}
	}

	// Check for exchange prefix with colon separator (EXCHANGE:CODE)
	if idx := strings.Index(ticker, ":"); idx > 0 {
		exchange := strings.ToUpper(ticker[:idx])
		code := strings.ToUpper(ticker[idx+1:])
		return Ticker{
			Exchange: exchange,
			Code:     code,
			Raw:      ticker,
		}
	}

	// Check for a dot separator. Accepts both EXCHANGE.CODE and the
	// EODHD-style CODE.EXCHANGE ("AAPL.US"). Only match known exchanges
	// to avoid conflicts with codes containing dots.
	if idx := strings.Index(ticker, "."); idx > 0 {
		prefix := strings.ToUpper(ticker[:idx])
		suffix := strings.ToUpper(ticker[idx+1:])
		if _, ok := ExchangeToSuffix[prefix]; ok {
			return Ticker{
				Exchange: prefix,
				Code:     suffix,
				Raw:      ticker,
			}
		}
		if _, ok := ExchangeToSuffix[suffix]; ok {
			return Ticker{
				Exchange: suffix,
				Code:     prefix,
				Raw:      ticker,
			}
		}
	}

	// No exchange prefix - use default exchange
	return Ticker{
		Exchange: DefaultExchange,
		Code:     strings.ToUpper(ticker),
		Raw:      ticker,
	}
}

// String returns the full exchange-qualified ticker string.
func (t Ticker) String() string {
	if t.Exchange == "" || t.Code == "" {
		return t.Code
	}
	return t.Exchange + ":" + t.Code
}

// EODHDSymbol returns the EODHD API symbol format.
// Example: "NASDAQ:AAPL" -> "AAPL.US"
func (t Ticker) EODHDSymbol() string {
	if t.Code == "" {
		return ""
	}
	suffix, ok := ExchangeToSuffix[t.Exchange]
	if !ok {
		// Default to US for unknown exchanges
		suffix = ".US"
	}
	return t.Code + suffix
}

// Currency returns the trading currency for the ticker's exchange.
// Falls back to USD for unknown exchanges.
func (t Ticker) Currency() string {
	if currency, ok := ExchangeCurrency[t.Exchange]; ok {
		return currency
	}
	return "USD"
}
