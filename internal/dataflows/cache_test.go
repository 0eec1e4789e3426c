package dataflows

import (
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCacheManager(t.TempDir(), time.Hour, true)

	stored := map[string]interface{}{"symbol": "AAPL", "price": 175.43}
	if err := cache.Set("yahoo", "stock_info", "AAPL", stored); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var loaded map[string]interface{}
	if !cache.Get("yahoo", "stock_info", "AAPL", &loaded) {
		t.Fatal("expected cache hit")
	}
	if loaded["symbol"] != "AAPL" || loaded["price"] != 175.43 {
		t.Errorf("unexpected cached data: %v", loaded)
	}
}

func TestCacheMissOnDifferentParams(t *testing.T) {
	cache := NewCacheManager(t.TempDir(), time.Hour, true)
	cache.Set("yahoo", "stock_info", "AAPL", map[string]interface{}{"a": 1})

	var loaded map[string]interface{}
	if cache.Get("yahoo", "stock_info", "MSFT", &loaded) {
		t.Error("expected miss for different params")
	}
	if cache.Get("fred", "stock_info", "AAPL", &loaded) {
		t.Error("expected miss for different source")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCacheManager(t.TempDir(), time.Nanosecond, true)
	cache.Set("yahoo", "stock_info", "AAPL", map[string]interface{}{"a": 1})

	time.Sleep(10 * time.Millisecond)

	var loaded map[string]interface{}
	if cache.Get("yahoo", "stock_info", "AAPL", &loaded) {
		t.Error("expected expired entry to miss")
	}
}

func TestCacheDisabled(t *testing.T) {
	cache := NewCacheManager(t.TempDir(), time.Hour, false)

	if err := cache.Set("yahoo", "stock_info", "AAPL", map[string]interface{}{"a": 1}); err != nil {
		t.Fatalf("disabled Set should be a no-op, got: %v", err)
	}

	var loaded map[string]interface{}
	if cache.Get("yahoo", "stock_info", "AAPL", &loaded) {
		t.Error("disabled cache must never hit")
	}
}
