package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestRegulatoryAgentWithFilings(t *testing.T) {
	agent := NewRegulatoryAgent()

	filings := map[string]interface{}{
		"cik":          "0000320193",
		"company_name": "Apple Inc.",
		"recent_filings": []map[string]interface{}{
			{"form": "10-K", "filing_date": "2025-11-01", "accession_number": "0000320193-25-000001"},
			{"form": "10-Q", "filing_date": "2025-08-01", "accession_number": "0000320193-25-000002"},
			{"form": "10-Q", "filing_date": "2025-05-01", "accession_number": "0000320193-25-000003"},
			{"form": "8-K", "filing_date": "2025-04-15", "accession_number": "0000320193-25-000004"},
		},
	}

	result, err := agent.Analyze(context.Background(), "AAPL", filings)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.ConfidenceScore != 0.70 {
		t.Fatalf("expected fixed confidence 0.70, got %.2f", result.ConfidenceScore)
	}
	if result.Findings["compliance_status"] != "Current" {
		t.Fatalf("expected Current status, got %v", result.Findings["compliance_status"])
	}

	formTypes := result.Findings["form_types"].([]string)
	if len(formTypes) != 3 {
		t.Fatalf("expected 3 deduplicated form types, got %v", formTypes)
	}

	if !strings.HasPrefix(result.Recommendations[0], "Latest filing: 10-K on 2025-11-01") {
		t.Fatalf("expected latest-filing recommendation first, got %v", result.Recommendations)
	}
}

func TestRegulatoryAgentCapsFormTypesAtFirstTen(t *testing.T) {
	agent := NewRegulatoryAgent()

	recent := make([]map[string]interface{}, 0, 12)
	for i := 0; i < 12; i++ {
		recent = append(recent, map[string]interface{}{
			"form":        fmt.Sprintf("FORM-%d", i),
			"filing_date": "2025-01-01",
		})
	}

	result, err := agent.Analyze(context.Background(), "AAPL", map[string]interface{}{
		"recent_filings": recent,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	formTypes := result.Findings["form_types"].([]string)
	if len(formTypes) != 10 {
		t.Fatalf("expected form types capped at 10, got %d", len(formTypes))
	}
}

func TestRegulatoryAgentWithErrorMarker(t *testing.T) {
	agent := NewRegulatoryAgent()

	result, err := agent.Analyze(context.Background(), "ZZZZ", map[string]interface{}{
		"error": "EDGAR lookup failed",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.Findings["compliance_status"] != "Unknown" {
		t.Fatalf("expected Unknown status, got %v", result.Findings["compliance_status"])
	}
	if result.Findings["data_error"] != "EDGAR lookup failed" {
		t.Fatalf("expected error marker preserved, got %v", result.Findings["data_error"])
	}
}
