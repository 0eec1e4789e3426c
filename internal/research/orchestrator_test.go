package research

import (
	"context"
	"errors"
	"testing"

	"stocksage/internal/llm"
	"stocksage/internal/llm/llmtest"
)

type fakePrimarySource struct {
	info    map[string]interface{}
	infoErr error
	news    []map[string]interface{}
	newsErr error
}

func (f *fakePrimarySource) GetStockInfo(ctx context.Context, symbol string) (map[string]interface{}, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.info, nil
}

func (f *fakePrimarySource) GetRecentNews(ctx context.Context, symbol string, limit int) ([]map[string]interface{}, error) {
	if f.newsErr != nil {
		return nil, f.newsErr
	}
	return f.news, nil
}

type fakeOverviewSource struct {
	overview map[string]interface{}
	err      error
}

func (f *fakeOverviewSource) GetCompanyOverview(ctx context.Context, symbol string) (map[string]interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.overview, nil
}

type fakeMacroSource struct {
	indicators map[string]map[string]interface{}
	err        error
}

func (f *fakeMacroSource) GetIndicator(ctx context.Context, seriesID string, limit int) (map[string]interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.indicators[seriesID], nil
}

type fakeFilingsSource struct {
	filings map[string]interface{}
}

func (f *fakeFilingsSource) GetFilings(ctx context.Context, symbol string) map[string]interface{} {
	return f.filings
}

// universalResponse satisfies every structured prompt the cycle issues:
// planning, agent analysis, chain stages, routing, evaluation, reflection.
const universalResponse = `{
	"objectives": ["Assess market position", "Evaluate fundamentals"],
	"data_sources": ["Yahoo Finance"],
	"analysis_steps": ["Gather data", "Analyze"],
	"expected_outputs": ["Recommendation"],
	"reasoning": "Focused plan",
	"price_trend": "bullish",
	"insights": ["Momentum is strong", "Margins are healthy", "Valuation is stretched"],
	"summary": "Solid outlook with stretched valuation.",
	"selected_agent": "MarketDataAgent",
	"overall_score": 0.9,
	"dimension_scores": {"completeness": 0.95},
	"strengths": ["Broad data coverage", "Clear recommendations", "Macro context included", "Filings reviewed", "Actionable advice", "Consistent scoring"],
	"improvements": ["Add peer comparison"],
	"recommendations": ["Hold current position"]
}`

func newTestSources() Sources {
	return Sources{
		Primary: &fakePrimarySource{
			info: map[string]interface{}{
				"company_name":   "Apple Inc.",
				"sector":         "Technology",
				"current_price":  175.43,
				"previous_close": 174.22,
				"52_week_high":   199.62,
				"52_week_low":    164.08,
				"market_cap":     2.8e12,
				"volume":         52000000.0,
			},
			news: []map[string]interface{}{{"title": "Apple ships new hardware"}},
		},
		Overview: &fakeOverviewSource{overview: map[string]interface{}{
			"Sector":       "Technology",
			"ProfitMargin": "0.25",
		}},
		Macro: &fakeMacroSource{indicators: map[string]map[string]interface{}{
			"DFF":    {"series_id": "DFF", "latest_value": 5.33},
			"UNRATE": {"series_id": "UNRATE", "latest_value": 3.9},
		}},
		Filings: &fakeFilingsSource{filings: map[string]interface{}{
			"company_name": "Apple Inc.",
			"recent_filings": []map[string]interface{}{
				{"form": "10-K", "filing_date": "2025-11-01"},
				{"form": "10-Q", "filing_date": "2025-08-01"},
			},
		}},
	}
}

func newTestOrchestrator(fake *llmtest.FakeChatModel, sources Sources) *Orchestrator {
	return NewOrchestrator(llm.NewCaller(fake), sources, nil)
}

func TestConductProducesCompleteReport(t *testing.T) {
	fake := &llmtest.FakeChatModel{Responses: []string{universalResponse}}
	o := newTestOrchestrator(fake, newTestSources())

	report, err := o.Conduct(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Conduct failed: %v", err)
	}

	if report.Symbol != "AAPL" {
		t.Errorf("expected normalized symbol AAPL, got %s", report.Symbol)
	}

	if len(report.Plan.Objectives) != 2 || report.Plan.Reasoning != "Focused plan" {
		t.Errorf("unexpected plan: %+v", report.Plan)
	}

	wantConfidence := map[string]float64{
		"market":       0.85,
		"fundamentals": 0.82,
		"economic":     0.85,
		"regulatory":   0.70,
	}
	for key, want := range wantConfidence {
		result, ok := report.Analyses[key]
		if !ok {
			t.Fatalf("missing %s analysis", key)
		}
		if result.ConfidenceScore != want {
			t.Errorf("%s: expected confidence %.2f, got %.2f", key, want, result.ConfidenceScore)
		}
	}

	if report.PromptChain.StepsCompleted != 5 {
		t.Errorf("expected 5 chain steps, got %d", report.PromptChain.StepsCompleted)
	}
	if report.Routing.SelectedAgent != "MarketDataAgent" || report.Routing.RoutingMethod != "LLM-powered" {
		t.Errorf("unexpected routing: %+v", report.Routing)
	}
	if len(report.Optimization.Iterations) != 1 || report.Optimization.OptimizationApplied {
		t.Errorf("expected single-iteration optimization, got %+v", report.Optimization)
	}

	if !report.Reflection.LLMPowered || report.Reflection.OverallScore != 0.9 {
		t.Errorf("unexpected reflection: %+v", report.Reflection)
	}

	if report.Memory.SeenBefore {
		t.Error("first cycle should not report the symbol as seen before")
	}
	if report.Memory.TotalEntries != 1 {
		t.Errorf("expected 1 memory entry, got %d", report.Memory.TotalEntries)
	}

	entry, ok := o.Memory().MostRecentFor("AAPL")
	if !ok {
		t.Fatal("expected learned entry for AAPL")
	}
	if len(entry.Insights) != 5 {
		t.Errorf("expected top-5 strengths as insights, got %d", len(entry.Insights))
	}
	if entry.QualityScores["completeness"] != 0.95 {
		t.Errorf("expected completeness 0.95, got %.2f", entry.QualityScores["completeness"])
	}
	if entry.QualityScores["clarity"] != 0.80 || entry.QualityScores["actionability"] != 0.80 {
		t.Errorf("expected missing dimensions to default to 0.80, got %+v", entry.QualityScores)
	}
	if entry.QualityScores["overall"] != 0.9 {
		t.Errorf("expected overall 0.9, got %.2f", entry.QualityScores["overall"])
	}
}

func TestConductFatalOnPrimaryFailure(t *testing.T) {
	fake := &llmtest.FakeChatModel{Responses: []string{universalResponse}}
	sources := newTestSources()
	sources.Primary = &fakePrimarySource{infoErr: errors.New("quote lookup failed")}
	o := newTestOrchestrator(fake, sources)

	report, err := o.Conduct(context.Background(), "ZZZZ")
	if err == nil {
		t.Fatal("expected error on primary data failure")
	}
	if report != nil {
		t.Error("expected no partial report on fatal failure")
	}
	if o.Memory().Len() != 0 {
		t.Error("failed cycle must not append memory entries")
	}
}

func TestConductDegradesWithoutOptionalSources(t *testing.T) {
	fake := &llmtest.FakeChatModel{Responses: []string{universalResponse}}
	sources := newTestSources()
	sources.Overview = nil
	sources.Macro = nil
	sources.Filings = nil
	o := newTestOrchestrator(fake, sources)

	report, err := o.Conduct(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Conduct failed without optional sources: %v", err)
	}

	if report.RawData["company_overview"] != nil {
		t.Error("expected nil company overview placeholder")
	}
	if report.RawData["interest_rates"] != nil || report.RawData["unemployment"] != nil {
		t.Error("expected nil macro placeholders")
	}

	filings, ok := report.RawData["filings"].(map[string]interface{})
	if !ok || filings["error"] == nil {
		t.Errorf("expected filings error marker, got %v", report.RawData["filings"])
	}

	if _, ok := report.Analyses["regulatory"]; !ok {
		t.Error("regulatory analysis should still run on the error marker")
	}
}

func TestConductMemoryBoundAcrossCycles(t *testing.T) {
	fake := &llmtest.FakeChatModel{Responses: []string{universalResponse}}
	o := newTestOrchestrator(fake, newTestSources())

	var last *ResearchReport
	for i := 0; i < 12; i++ {
		report, err := o.Conduct(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("cycle %d failed: %v", i, err)
		}
		last = report
	}

	if o.Memory().Len() != 10 {
		t.Fatalf("expected memory bounded at 10, got %d", o.Memory().Len())
	}
	if last.Memory.TotalEntries != 10 {
		t.Errorf("expected reported total of 10, got %d", last.Memory.TotalEntries)
	}
	if !last.Memory.SeenBefore || last.Memory.LastAnalyzed.IsZero() {
		t.Errorf("repeat cycles should report prior analysis: %+v", last.Memory)
	}

	entries := o.Memory().Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.Before(entries[i-1].Timestamp) {
			t.Fatal("memory entries out of chronological order")
		}
	}
}

func TestPlanResearchFallback(t *testing.T) {
	fake := &llmtest.FakeChatModel{Err: errors.New("backend unavailable")}
	o := newTestOrchestrator(fake, Sources{})

	plan := o.planResearch(context.Background(), "AAPL")

	if len(plan.Objectives) != 4 {
		t.Errorf("expected 4 fallback objectives, got %d", len(plan.Objectives))
	}
	if plan.Reasoning != "Standard comprehensive financial analysis plan" {
		t.Errorf("unexpected fallback reasoning: %q", plan.Reasoning)
	}
	if len(plan.DataSources) != 4 || plan.DataSources[0] != "Yahoo Finance" {
		t.Errorf("unexpected fallback data sources: %v", plan.DataSources)
	}
}

func TestFallbackReflectionCapped(t *testing.T) {
	r := fallbackReflection(4, 3)
	if r.OverallScore != 0.92 {
		t.Errorf("expected capped score 0.92, got %.2f", r.OverallScore)
	}
	if r.LLMPowered {
		t.Error("fallback reflection must not claim LLM provenance")
	}

	r = fallbackReflection(1, 1)
	if r.OverallScore < 0.82 || r.OverallScore > 0.84 {
		t.Errorf("expected score near 0.83, got %.2f", r.OverallScore)
	}
}
