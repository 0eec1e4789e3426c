package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

const maxRecentFilings = 20

// SECEdgarClient fetches regulatory filings from SEC EDGAR. It never
// returns an error to callers: failures degrade to an error-marker map so
// the regulatory analysis can report the condition instead of aborting.
type SECEdgarClient struct {
	client *resty.Client
	cache  *CacheManager
}

// NewSECEdgarClient creates a new SEC EDGAR client. EDGAR requires a
// descriptive User-Agent identifying the caller.
func NewSECEdgarClient(config *Config) *SECEdgarClient {
	cacheDir := filepath.Join(config.DataCacheDir, "secedgar")
	cache := NewCacheManager(cacheDir, 12*time.Hour, config.CacheEnabled)

	userAgent := config.EdgarUserAgent
	if userAgent == "" {
		userAgent = "StockSage research@stocksage.local"
	}

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", userAgent)

	return &SECEdgarClient{
		client: client,
		cache:  cache,
	}
}

// GetFilings returns the company's recent filings, or an error-marker map
// when anything in the lookup chain fails.
func (sc *SECEdgarClient) GetFilings(ctx context.Context, symbol string) map[string]interface{} {
	if err := ValidateSymbol(symbol); err != nil {
		return errorMarker(symbol, err)
	}
	symbol = NormalizeSymbol(symbol)

	var cached map[string]interface{}
	if sc.cache.Get("secedgar", "filings", symbol, &cached) {
		return cached
	}

	cik, err := sc.lookupCIK(ctx, symbol)
	if err != nil {
		return errorMarker(symbol, err)
	}

	filings, err := sc.fetchSubmissions(ctx, symbol, cik)
	if err != nil {
		return errorMarker(symbol, err)
	}

	sc.cache.Set("secedgar", "filings", symbol, filings)
	return filings
}

func errorMarker(symbol string, err error) map[string]interface{} {
	return map[string]interface{}{
		"symbol": symbol,
		"error":  err.Error(),
	}
}

type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// lookupCIK resolves a ticker to its SEC Central Index Key via the public
// company-tickers index.
func (sc *SECEdgarClient) lookupCIK(ctx context.Context, symbol string) (int64, error) {
	var cached map[string]tickerEntry
	if !sc.cache.Get("secedgar", "tickers", "all", &cached) {
		resp, err := sc.client.R().
			SetContext(ctx).
			Get("https://www.sec.gov/files/company_tickers.json")
		if err != nil {
			return 0, fmt.Errorf("failed to fetch ticker index: %w", err)
		}
		if resp.StatusCode() != 200 {
			return 0, fmt.Errorf("ticker index error %d", resp.StatusCode())
		}
		if err := json.Unmarshal(resp.Body(), &cached); err != nil {
			return 0, fmt.Errorf("failed to parse ticker index: %w", err)
		}
		sc.cache.Set("secedgar", "tickers", "all", cached)
	}

	for _, entry := range cached {
		if NormalizeSymbol(entry.Ticker) == symbol {
			return entry.CIK, nil
		}
	}
	return 0, fmt.Errorf("no CIK found for %s", symbol)
}

type submissionsResponse struct {
	Name    string `json:"name"`
	Filings struct {
		Recent struct {
			Form            []string `json:"form"`
			FilingDate      []string `json:"filingDate"`
			AccessionNumber []string `json:"accessionNumber"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

func (sc *SECEdgarClient) fetchSubmissions(ctx context.Context, symbol string, cik int64) (map[string]interface{}, error) {
	resp, err := sc.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("https://data.sec.gov/submissions/CIK%010d.json", cik))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("submissions error %d for %s", resp.StatusCode(), symbol)
	}

	var parsed submissionsResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse submissions for %s: %w", symbol, err)
	}

	recent := parsed.Filings.Recent
	count := len(recent.Form)
	if count > maxRecentFilings {
		count = maxRecentFilings
	}

	filings := make([]map[string]interface{}, 0, count)
	for i := 0; i < count; i++ {
		entry := map[string]interface{}{"form": recent.Form[i]}
		if i < len(recent.FilingDate) {
			entry["filing_date"] = recent.FilingDate[i]
		}
		if i < len(recent.AccessionNumber) {
			entry["accession_number"] = recent.AccessionNumber[i]
		}
		if i < len(recent.PrimaryDocument) {
			entry["primary_document"] = recent.PrimaryDocument[i]
		}
		filings = append(filings, entry)
	}

	return map[string]interface{}{
		"symbol":         symbol,
		"cik":            cik,
		"company_name":   parsed.Name,
		"recent_filings": filings,
	}, nil
}
