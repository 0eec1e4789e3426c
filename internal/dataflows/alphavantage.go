package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

// AlphaVantageClient fetches the company fundamentals overview. The source
// is optional: construction fails without an API key and the orchestrator
// simply runs without the overview data.
type AlphaVantageClient struct {
	client *resty.Client
	cache  *CacheManager
	apiKey string
}

// NewAlphaVantageClient creates a new Alpha Vantage client. Returns an
// error when no API key is configured.
func NewAlphaVantageClient(config *Config) (*AlphaVantageClient, error) {
	if config.AlphaVantageAPIKey == "" {
		return nil, fmt.Errorf("Alpha Vantage API key not configured")
	}

	cacheDir := filepath.Join(config.DataCacheDir, "alphavantage")
	cache := NewCacheManager(cacheDir, 24*time.Hour, config.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://www.alphavantage.co")
	client.SetTimeout(30 * time.Second)

	return &AlphaVantageClient{
		client: client,
		cache:  cache,
		apiKey: config.AlphaVantageAPIKey,
	}, nil
}

// GetCompanyOverview fetches the OVERVIEW endpoint for a symbol. Alpha
// Vantage returns 200 with an informational body on quota errors, so an
// empty or note-only payload is treated as a failure.
func (av *AlphaVantageClient) GetCompanyOverview(ctx context.Context, symbol string) (map[string]interface{}, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var cached map[string]interface{}
	if av.cache.Get("alphavantage", "overview", symbol, &cached) {
		return cached, nil
	}

	var result map[string]interface{}
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := av.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"function": "OVERVIEW",
				"symbol":   symbol,
				"apikey":   av.apiKey,
			}).
			Get("/query")
		if err != nil {
			return fmt.Errorf("failed to fetch overview for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}

		var overview map[string]interface{}
		if err := json.Unmarshal(resp.Body(), &overview); err != nil {
			return fmt.Errorf("failed to parse overview response: %w", err)
		}
		if len(overview) == 0 {
			return fmt.Errorf("empty overview response for %s", symbol)
		}
		if note, ok := overview["Note"]; ok {
			return fmt.Errorf("Alpha Vantage rate limited: %v", note)
		}
		if msg, ok := overview["Information"]; ok {
			return fmt.Errorf("Alpha Vantage rejected request: %v", msg)
		}

		result = overview
		return nil
	})
	if err != nil {
		return nil, err
	}

	av.cache.Set("alphavantage", "overview", symbol, result)
	return result, nil
}
