package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// FREDClient fetches macro-indicator series from the St. Louis Fed. Like
// Alpha Vantage it is optional and requires an API key.
type FREDClient struct {
	client *resty.Client
	cache  *CacheManager
	apiKey string
}

// NewFREDClient creates a new FRED client. Returns an error when no API key
// is configured.
func NewFREDClient(config *Config) (*FREDClient, error) {
	if config.FREDAPIKey == "" {
		return nil, fmt.Errorf("FRED API key not configured")
	}

	cacheDir := filepath.Join(config.DataCacheDir, "fred")
	cache := NewCacheManager(cacheDir, 12*time.Hour, config.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://api.stlouisfed.org")
	client.SetTimeout(30 * time.Second)

	return &FREDClient{
		client: client,
		cache:  cache,
		apiKey: config.FREDAPIKey,
	}, nil
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type fredResponse struct {
	Observations []fredObservation `json:"observations"`
}

// GetIndicator fetches the most recent observations of a series, newest
// first, and reports the latest numeric value under "latest_value".
func (fc *FREDClient) GetIndicator(ctx context.Context, seriesID string, limit int) (map[string]interface{}, error) {
	if seriesID == "" {
		return nil, fmt.Errorf("series ID cannot be empty")
	}
	if limit <= 0 {
		limit = 5
	}

	cacheKey := map[string]interface{}{"series": seriesID, "limit": limit}
	var cached map[string]interface{}
	if fc.cache.Get("fred", "observations", cacheKey, &cached) {
		return cached, nil
	}

	var result map[string]interface{}
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := fc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"series_id":  seriesID,
				"api_key":    fc.apiKey,
				"file_type":  "json",
				"limit":      strconv.Itoa(limit),
				"sort_order": "desc",
			}).
			Get("/fred/series/observations")
		if err != nil {
			return fmt.Errorf("failed to fetch series %s: %w", seriesID, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}

		var parsed fredResponse
		if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
			return fmt.Errorf("failed to parse series response: %w", err)
		}
		if len(parsed.Observations) == 0 {
			return fmt.Errorf("no observations for series %s", seriesID)
		}

		observations := make([]map[string]interface{}, 0, len(parsed.Observations))
		for _, obs := range parsed.Observations {
			observations = append(observations, map[string]interface{}{
				"date":  obs.Date,
				"value": obs.Value,
			})
		}

		result = map[string]interface{}{
			"series_id":    seriesID,
			"observations": observations,
		}

		// Observations arrive newest first; the latest parseable value
		// becomes the headline number.
		for _, obs := range parsed.Observations {
			if v, err := strconv.ParseFloat(obs.Value, 64); err == nil {
				result["latest_value"] = v
				result["latest_date"] = obs.Date
				break
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	fc.cache.Set("fred", "observations", cacheKey, result)
	return result, nil
}
