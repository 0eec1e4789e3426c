// Package agents holds the four specialist analysts. Three are LLM-backed
// (market, fundamentals, economic); the regulatory analyst is rule-based.
// Every agent produces one models.AnalysisResult per cycle.
package agents

import (
	"fmt"
)

// floatField reads a numeric value out of a loosely-typed data payload.
// JSON decoding yields float64, but direct callers may pass ints.
func floatField(data map[string]interface{}, key string) (float64, bool) {
	v, ok := data[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// stringField reads a string value, substituting "N/A" when absent.
func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return "N/A"
}

// numberOrNA formats a numeric field, substituting "N/A" when absent.
func numberOrNA(data map[string]interface{}, key, format string) string {
	if v, ok := floatField(data, key); ok {
		return fmt.Sprintf(format, v)
	}
	return "N/A"
}

// PriceChange computes current price minus previous close. Either value
// missing yields zero, matching the prompt's safe defaults.
func PriceChange(current, previousClose float64) float64 {
	if current == 0 || previousClose == 0 {
		return 0
	}
	return current - previousClose
}

// PriceChangePercent computes the change as a percentage of the previous
// close, zero when the previous close is zero.
func PriceChangePercent(change, previousClose float64) float64 {
	if previousClose == 0 {
		return 0
	}
	return change / previousClose * 100
}

// RangePosition locates the current price inside the 52-week range as a
// percentage. The position is undefined unless high > low.
func RangePosition(current, low, high float64) (float64, bool) {
	if high <= low {
		return 0, false
	}
	return (current - low) / (high - low) * 100, true
}

// normalizeRecommendations extracts a recommendation list from parsed model
// output, tolerating a single string where an array was asked for.
func normalizeRecommendations(v interface{}) []string {
	switch recs := v.(type) {
	case string:
		return []string{recs}
	case []interface{}:
		out := make([]string, 0, len(recs))
		for _, rec := range recs {
			if s, ok := rec.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return recs
	default:
		return nil
	}
}
