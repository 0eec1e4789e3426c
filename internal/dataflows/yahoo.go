package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"
)

// YahooClient is the primary quote and fundamentals source. News is
// delegated to the scraper since the quote API carries no articles.
type YahooClient struct {
	cache *CacheManager
	news  *NewsClient
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(config *Config) *YahooClient {
	cacheDir := filepath.Join(config.DataCacheDir, "yahoo")
	cache := NewCacheManager(cacheDir, 1*time.Hour, config.CacheEnabled)

	return &YahooClient{
		cache: cache,
		news:  NewNewsClient(config),
	}
}

// GetStockInfo fetches the comprehensive quote snapshot the specialist
// agents analyze. Missing optional metrics stay absent from the map rather
// than carrying zero values.
func (yc *YahooClient) GetStockInfo(ctx context.Context, symbol string) (map[string]interface{}, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var cached map[string]interface{}
	if yc.cache.Get("yahoo", "stock_info", symbol, &cached) {
		return cached, nil
	}

	var result map[string]interface{}
	err := WithRetry(DefaultRetryConfig(), func() error {
		q, err := equity.Get(symbol)
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", symbol, err)
		}
		if q == nil {
			return fmt.Errorf("no quote data for %s", symbol)
		}

		companyName := q.LongName
		if companyName == "" {
			companyName = q.ShortName
		}

		result = map[string]interface{}{
			"symbol":         symbol,
			"company_name":   companyName,
			"exchange":       q.FullExchangeName,
			"currency":       q.CurrencyID,
			"current_price":  q.RegularMarketPrice,
			"previous_close": q.RegularMarketPreviousClose,
			"open_price":     q.RegularMarketOpen,
			"day_high":       q.RegularMarketDayHigh,
			"day_low":        q.RegularMarketDayLow,
			"volume":         float64(q.RegularMarketVolume),
			"52_week_high":   q.FiftyTwoWeekHigh,
			"52_week_low":    q.FiftyTwoWeekLow,
			"market_cap":     float64(q.MarketCap),
		}

		if q.EpsTrailingTwelveMonths > 0 {
			result["pe_ratio"] = q.RegularMarketPrice / q.EpsTrailingTwelveMonths
		}
		if q.ForwardPE > 0 {
			result["forward_pe"] = q.ForwardPE
		}
		if q.TrailingAnnualDividendYield > 0 {
			result["dividend_yield"] = q.TrailingAnnualDividendYield
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	yc.cache.Set("yahoo", "stock_info", symbol, result)
	return result, nil
}

// GetRecentNews fetches recent articles about the symbol.
func (yc *YahooClient) GetRecentNews(ctx context.Context, symbol string, limit int) ([]map[string]interface{}, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	items, err := yc.news.Search(ctx, fmt.Sprintf("%s stock", symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
	}

	result := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		result = append(result, item.Map())
	}
	return result, nil
}

// GetHistoricalSummary condenses a rolling window of daily bars into the
// aggregate metrics used for trend context.
func (yc *YahooClient) GetHistoricalSummary(ctx context.Context, symbol string, days int) (*HistoricalSummary, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{"symbol": symbol, "days": days}
	var cached HistoricalSummary
	if yc.cache.Get("yahoo", "historical_summary", cacheKey, &cached) {
		return &cached, nil
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	var bars []*PricePoint
	err := WithRetry(DefaultRetryConfig(), func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)

		bars = bars[:0]
		for iter.Next() {
			bar := iter.Bar()
			bars = append(bars, &PricePoint{
				Symbol:    symbol,
				Date:      time.Unix(int64(bar.Timestamp), 0),
				Open:      bar.Open,
				High:      bar.High,
				Low:       bar.Low,
				Close:     bar.Close,
				AdjClose:  bar.AdjClose,
				Volume:    int64(bar.Volume),
				Timestamp: time.Now(),
			})
		}

		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no historical data available for %s", symbol)
	}

	summary := SummarizeBars(symbol, days, bars)
	yc.cache.Set("yahoo", "historical_summary", cacheKey, summary)
	return summary, nil
}

// SummarizeBars computes the aggregate window metrics over daily bars.
// Bars must be in chronological order.
func SummarizeBars(symbol string, days int, bars []*PricePoint) *HistoricalSummary {
	summary := &HistoricalSummary{
		Symbol:     symbol,
		Days:       days,
		DataPoints: len(bars),
	}
	if len(bars) == 0 {
		return summary
	}

	first := bars[0]
	last := bars[len(bars)-1]

	summary.LatestClose = last.Close
	summary.PeriodHigh = first.High
	summary.PeriodLow = first.Low

	var totalVolume int64
	for _, bar := range bars {
		if bar.High.GreaterThan(summary.PeriodHigh) {
			summary.PeriodHigh = bar.High
		}
		if bar.Low.LessThan(summary.PeriodLow) {
			summary.PeriodLow = bar.Low
		}
		totalVolume += bar.Volume
	}
	summary.AverageVolume = totalVolume / int64(len(bars))

	summary.PriceChange = last.Close.Sub(first.Close)
	if !first.Close.IsZero() {
		summary.PriceChangePercent = summary.PriceChange.
			Div(first.Close).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return summary
}
