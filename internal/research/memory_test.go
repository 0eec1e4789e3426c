package research

import (
	"fmt"
	"testing"
	"time"

	"stocksage/internal/models"
)

func TestMemoryStoreEvictsOldest(t *testing.T) {
	store := NewMemoryStore(10)

	for i := 0; i < 15; i++ {
		store.Append(&models.AgentMemory{
			StockSymbol: fmt.Sprintf("SYM%d", i),
			Timestamp:   time.Now(),
		})
	}

	if store.Len() != 10 {
		t.Fatalf("expected 10 entries after eviction, got %d", store.Len())
	}

	entries := store.Entries()
	for i, entry := range entries {
		want := fmt.Sprintf("SYM%d", i+5)
		if entry.StockSymbol != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, entry.StockSymbol)
		}
	}
}

func TestMemoryStoreMostRecentFor(t *testing.T) {
	store := NewMemoryStore(10)

	first := &models.AgentMemory{StockSymbol: "AAPL", AnalysisCount: 1}
	second := &models.AgentMemory{StockSymbol: "AAPL", AnalysisCount: 2}
	store.Append(first)
	store.Append(&models.AgentMemory{StockSymbol: "MSFT"})
	store.Append(second)

	entry, ok := store.MostRecentFor("AAPL")
	if !ok {
		t.Fatal("expected to find AAPL entry")
	}
	if entry.AnalysisCount != 2 {
		t.Errorf("expected newest AAPL entry, got AnalysisCount=%d", entry.AnalysisCount)
	}

	if _, ok := store.MostRecentFor("TSLA"); ok {
		t.Error("expected no entry for TSLA")
	}
}

func TestMemoryStoreDefaultCapacity(t *testing.T) {
	store := NewMemoryStore(0)
	for i := 0; i < 25; i++ {
		store.Append(&models.AgentMemory{StockSymbol: "AAPL"})
	}
	if store.Len() != DefaultMemoryCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultMemoryCapacity, store.Len())
	}
}
