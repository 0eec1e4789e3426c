package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"stocksage/internal/dataflows"
	"stocksage/internal/models"
	"stocksage/internal/research"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Background(lipgloss.Color("#1F2937")).
		Padding(0, 1).
		MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6")).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 2).
		Width(78)

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	valueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B")).
		Bold(true)

	summaryStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#10B981")).
		Padding(1, 2).
		Width(78)
)

// DisplayResearchHeader shows the research banner for a symbol
func DisplayResearchHeader(symbol string) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("StockSage — Autonomous Research: %s", symbol)))
}

// DisplayReport renders the full research report to the terminal
func DisplayReport(report *research.ResearchReport) {
	fmt.Println()
	fmt.Println(sectionStyle.Render("Research Plan"))
	fmt.Println(labelStyle.Render(report.Plan.Summary()))
	fmt.Printf("%s %s\n", labelStyle.Render("Reasoning:"), report.Plan.Reasoning)
	for i, objective := range report.Plan.Objectives {
		fmt.Printf("  %d. %s\n", i+1, objective)
	}

	fmt.Println()
	fmt.Println(sectionStyle.Render("Specialist Analyses"))
	for _, key := range []string{"market", "fundamentals", "economic", "regulatory"} {
		result, ok := report.Analyses[key]
		if !ok {
			continue
		}
		displayAnalysis(result)
	}

	fmt.Println()
	fmt.Println(sectionStyle.Render("Workflow Patterns"))
	fmt.Printf("%s %d steps completed\n",
		labelStyle.Render("Prompt chain:"), report.PromptChain.StepsCompleted)
	if summary := chainSummary(report.PromptChain); summary != "" {
		fmt.Println(summaryStyle.Render(summary))
	}
	fmt.Printf("%s %s (%s)\n",
		labelStyle.Render("Routing:"),
		valueStyle.Render(report.Routing.SelectedAgent),
		report.Routing.RoutingMethod)
	fmt.Printf("%s %.2f after %d iteration(s)\n",
		labelStyle.Render("Optimization:"),
		report.Optimization.FinalQualityScore,
		len(report.Optimization.Iterations))

	fmt.Println()
	fmt.Println(sectionStyle.Render("Self-Reflection"))
	scoreLine := fmt.Sprintf("Overall quality: %.2f", report.Reflection.OverallScore)
	if report.Reflection.LLMPowered {
		fmt.Println(valueStyle.Render(scoreLine))
	} else {
		fmt.Println(warnStyle.Render(scoreLine + " (heuristic)"))
	}
	displayScores(report.Reflection.DimensionScores)
	for _, strength := range report.Reflection.Strengths {
		fmt.Printf("  + %s\n", strength)
	}
	for _, improvement := range report.Reflection.Improvements {
		fmt.Printf("  - %s\n", improvement)
	}

	fmt.Println()
	fmt.Println(sectionStyle.Render("Memory"))
	fmt.Printf("%s %d entries\n", labelStyle.Render("Store:"), report.Memory.TotalEntries)
	if report.Memory.SeenBefore {
		fmt.Printf("%s previously analyzed on %s\n",
			labelStyle.Render("History:"),
			report.Memory.LastAnalyzed.Format("2006-01-02 15:04"))
	} else {
		fmt.Printf("%s first analysis of this symbol\n", labelStyle.Render("History:"))
	}
	fmt.Println()
}

// DisplayHistoricalSummary renders a recent price-history digest
func DisplayHistoricalSummary(history *dataflows.HistoricalSummary) {
	fmt.Println(sectionStyle.Render(fmt.Sprintf("Price History (%d days)", history.Days)))
	changeLine := fmt.Sprintf("%s (%s%%)",
		history.PriceChange.StringFixed(2), history.PriceChangePercent.StringFixed(2))
	if history.PriceChange.IsNegative() {
		fmt.Printf("%s %s\n", labelStyle.Render("Change:"), warnStyle.Render(changeLine))
	} else {
		fmt.Printf("%s %s\n", labelStyle.Render("Change:"), valueStyle.Render(changeLine))
	}
	fmt.Printf("%s %s\n", labelStyle.Render("Latest close:"), history.LatestClose.StringFixed(2))
	fmt.Printf("%s %s / %s\n", labelStyle.Render("Period high/low:"),
		history.PeriodHigh.StringFixed(2), history.PeriodLow.StringFixed(2))
	fmt.Printf("%s %d (%d sessions)\n", labelStyle.Render("Average volume:"),
		history.AverageVolume, history.DataPoints)
	fmt.Println()
}

func displayAnalysis(result *models.AnalysisResult) {
	fmt.Printf("\n%s (%s, confidence %.2f)\n",
		valueStyle.Render(result.AgentName), result.DataSource, result.ConfidenceScore)
	if verdict := headlineFinding(result.Findings); verdict != "" {
		fmt.Printf("  %s\n", verdict)
	}

	if raw, ok := result.Findings["raw_analysis"].(string); ok {
		fmt.Printf("  %s %s\n", warnStyle.Render("raw:"), truncate(raw, 200))
	}
	for _, recommendation := range result.Recommendations {
		fmt.Printf("  • %s\n", recommendation)
	}
}

// headlineFinding picks the leading per-agent verdict field when present.
func headlineFinding(findings map[string]interface{}) string {
	for _, key := range []string{"price_trend", "profitability", "sector_outlook", "compliance_status"} {
		if v, ok := findings[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func displayScores(scores map[string]float64) {
	if len(scores) == 0 {
		return
	}
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.2f\n", name, scores[name])
	}
}

func chainSummary(result *models.WorkflowResult) string {
	summary, _ := result.FinalOutput.(string)
	return strings.TrimSpace(summary)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
