package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the EODHD API.
	DefaultBaseURL = "https://eodhd.com/api"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10
)

// Client is an EODHD API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new EODHD API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request to the API.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return &RateLimitError{RetryAfter: time.Second}
	}

	// Add API token
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	// Build URL
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Log request
	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("EODHD API request")
	}

	// Execute request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// Check status
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	// Parse response
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetEOD retrieves end-of-day price data for a symbol.
// Symbol format: TICKER.EXCHANGE (e.g., "AAPL.US", "BHP.AU")
func (c *Client) GetEOD(ctx context.Context, symbol string, opts ...QueryOption) (EODResponse, error) {
	params := &queryParams{
		Period: "d",
		Order:  "a",
	}
	for _, opt := range opts {
		opt(params)
	}

	queryParams := url.Values{}
	if !params.From.IsZero() {
		queryParams.Set("from", params.From.Format("2006-01-02"))
	}
	if !params.To.IsZero() {
		queryParams.Set("to", params.To.Format("2006-01-02"))
	}
	if params.Period != "" {
		queryParams.Set("period", params.Period)
	}
	if params.Order != "" {
		queryParams.Set("order", params.Order)
	}

	var result EODResponse
	if err := c.get(ctx, "/eod/"+symbol, queryParams, &result); err != nil {
		return nil, err
	}

	// Parse dates
	for i := range result {
		if t, err := time.Parse("2006-01-02", result[i].DateStr); err == nil {
			result[i].Date = t
		}
	}

	return result, nil
}

// GetFundamentals retrieves fundamental data for a symbol.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*FundamentalsResponse, error) {
	var result FundamentalsResponse
	if err := c.get(ctx, "/fundamentals/"+symbol, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRealTimeQuote retrieves a delayed real-time quote for a symbol.
func (c *Client) GetRealTimeQuote(ctx context.Context, symbol string) (*RealTimeQuote, error) {
	var result RealTimeQuote
	if err := c.get(ctx, "/real-time/"+symbol, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetForexRate retrieves the current exchange rate between two currencies
// using EODHD forex symbols (e.g., "EURUSD.FOREX").
// Returns the rate expressed as units of quote currency per unit of base currency.
func (c *Client) GetForexRate(ctx context.Context, fromCurrency, toCurrency string) (float64, error) {
	from := strings.ToUpper(strings.TrimSpace(fromCurrency))
	to := strings.ToUpper(strings.TrimSpace(toCurrency))
	if len(from) != 3 || len(to) != 3 {
		return 0, fmt.Errorf("invalid currency pair %q/%q", fromCurrency, toCurrency)
	}
	if from == to {
		return 1.0, nil
	}

	symbol := from + to + ".FOREX"
	quote, err := c.GetRealTimeQuote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if quote.Close <= 0 {
		return 0, fmt.Errorf("no rate available for %s", symbol)
	}
	return quote.Close, nil
}
