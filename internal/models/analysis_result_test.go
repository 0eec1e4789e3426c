package models

import (
	"errors"
	"strings"
	"testing"
)

func TestNewAnalysisResultValidatesConfidence(t *testing.T) {
	cases := []struct {
		name       string
		confidence float64
		wantErr    bool
	}{
		{"zero", 0.0, false},
		{"one", 1.0, false},
		{"mid", 0.85, false},
		{"negative", -0.01, true},
		{"above one", 1.01, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := NewAnalysisResult("Market Data Agent", "Yahoo Finance",
				map[string]interface{}{"price_trend": "bullish"}, tc.confidence,
				[]string{"Monitor closely"}, "reasoning")
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for confidence %.2f", tc.confidence)
				}
				if !errors.Is(err, ErrConfidenceOutOfRange) {
					t.Fatalf("expected ErrConfidenceOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.ConfidenceScore != tc.confidence {
				t.Fatalf("expected confidence %.2f, got %.2f", tc.confidence, result.ConfidenceScore)
			}
			if result.Timestamp.IsZero() {
				t.Fatalf("timestamp not set")
			}
		})
	}
}

func TestAnalysisResultSummary(t *testing.T) {
	result, err := NewAnalysisResult("Market Data Agent", "Yahoo Finance + LLM",
		map[string]interface{}{"price_trend": "bullish"}, 0.85,
		[]string{"Hold", "Monitor volume"}, "reasoning")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary := result.Summary()
	for _, want := range []string{"Market Data Agent", "0.85", "Recommendations: 2", "Yahoo Finance + LLM"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
