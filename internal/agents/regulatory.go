package agents

import (
	"context"
	"fmt"
	"log"

	"stocksage/internal/models"
)

const regulatoryConfidence = 0.70

// RegulatoryAgent synthesizes compliance posture from SEC EDGAR filings.
// It is pure rule-based and never calls the model.
type RegulatoryAgent struct {
	name string
}

func NewRegulatoryAgent() *RegulatoryAgent {
	return &RegulatoryAgent{name: "Regulatory Agent"}
}

func (a *RegulatoryAgent) Name() string { return a.name }

// Analyze derives compliance status and observed form types from the filings
// payload. An error-marker payload (from a failed fetch) yields an "Unknown"
// status rather than an error.
func (a *RegulatoryAgent) Analyze(ctx context.Context, symbol string, filings map[string]interface{}) (*models.AnalysisResult, error) {
	log.Printf("[%s] Analyzing %s filings", a.name, symbol)

	recent := recentFilings(filings)

	complianceStatus := "Unknown"
	if len(recent) > 0 {
		complianceStatus = "Current"
	}

	// Deduplicated form types, looking at the first ten filings only.
	formTypes := make([]string, 0)
	seen := make(map[string]bool)
	for i, filing := range recent {
		if i >= 10 {
			break
		}
		form, _ := filing["form"].(string)
		if form == "" || seen[form] {
			continue
		}
		seen[form] = true
		formTypes = append(formTypes, form)
	}

	recommendations := []string{
		"Review recent filings for material disclosures",
		"Monitor upcoming filing deadlines",
	}
	if len(recent) > 0 {
		latest := recent[0]
		form, _ := latest["form"].(string)
		date, _ := latest["filing_date"].(string)
		recommendations = append([]string{
			fmt.Sprintf("Latest filing: %s on %s", form, date),
		}, recommendations...)
	}

	findings := map[string]interface{}{
		"compliance_status": complianceStatus,
		"recent_filings":    len(recent),
		"form_types":        formTypes,
	}
	if cik, ok := filings["cik"]; ok {
		findings["cik"] = cik
	}
	if errMsg, ok := filings["error"].(string); ok {
		findings["data_error"] = errMsg
	}

	return models.NewAnalysisResult(a.name, "SEC EDGAR",
		findings, regulatoryConfidence, recommendations,
		"Rule-based synthesis of regulatory filings")
}

func recentFilings(filings map[string]interface{}) []map[string]interface{} {
	raw, ok := filings["recent_filings"]
	if !ok {
		return nil
	}
	switch list := raw.(type) {
	case []map[string]interface{}:
		return list
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}
