package dataflows

import (
	"time"

	"github.com/shopspring/decimal"

	"stocksage/internal/config"
)

// Config is an alias for the main application config
type Config = config.Config

// PricePoint represents one bar of daily price data
type PricePoint struct {
	Symbol    string          `json:"symbol"`
	Date      time.Time       `json:"date"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	AdjClose  decimal.Decimal `json:"adj_close"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// HistoricalSummary condenses a price window into the aggregate metrics the
// analysis prompts consume
type HistoricalSummary struct {
	Symbol             string          `json:"symbol"`
	Days               int             `json:"days"`
	DataPoints         int             `json:"data_points"`
	LatestClose        decimal.Decimal `json:"latest_close"`
	PeriodHigh         decimal.Decimal `json:"period_high"`
	PeriodLow          decimal.Decimal `json:"period_low"`
	AverageVolume      int64           `json:"average_volume"`
	PriceChange        decimal.Decimal `json:"price_change"`
	PriceChangePercent decimal.Decimal `json:"price_change_percent"`
}

// NewsItem represents one fetched news article
type NewsItem struct {
	Title         string    `json:"title"`
	Publisher     string    `json:"publisher"`
	Link          string    `json:"link"`
	PublishedDate time.Time `json:"published_date"`
	Snippet       string    `json:"snippet,omitempty"`
}

// Map converts a news item to the loosely-typed shape the orchestrator
// stores in its raw-data snapshot
func (n *NewsItem) Map() map[string]interface{} {
	return map[string]interface{}{
		"title":          n.Title,
		"publisher":      n.Publisher,
		"link":           n.Link,
		"published_date": n.PublishedDate.Format(time.RFC3339),
		"snippet":        n.Snippet,
	}
}
