package workflows

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"stocksage/internal/llm"
)

// RoutingDecision records which specialist agent a query was routed to and
// how the decision was made. RoutingMethod distinguishes model-derived
// decisions ("LLM-powered") from the deterministic fallback ("fallback").
type RoutingDecision struct {
	Query           string    `json:"query"`
	SelectedAgent   string    `json:"selected_agent"`
	Reasoning       string    `json:"reasoning"`
	AvailableAgents []string  `json:"available_agents"`
	RoutingMethod   string    `json:"routing_method"`
	Timestamp       time.Time `json:"timestamp"`
}

// RoutingWorkflow asks the model to pick the most suitable specialist agent
// for a query. It only returns the decision; it never invokes the agent.
type RoutingWorkflow struct {
	name   string
	caller *llm.Caller
}

func NewRoutingWorkflow(caller *llm.Caller) *RoutingWorkflow {
	return &RoutingWorkflow{
		name:   "Routing Workflow",
		caller: caller,
	}
}

var agentDescriptions = map[string]string{
	"MarketDataAgent":      "Analyzes price trends, volatility, market conditions",
	"FundamentalsAgent":    "Analyzes profitability, growth, financial health",
	"EconomicContextAgent": "Analyzes macroeconomic factors, sector outlook",
	"RegulatoryAgent":      "Analyzes SEC filings, compliance status",
}

// Route selects one agent from the candidates. Any model failure, or a
// response naming no candidate, falls back to the first candidate with the
// provenance marked accordingly.
func (w *RoutingWorkflow) Route(ctx context.Context, query string, availableAgents []string) *RoutingDecision {
	log.Printf("[%s] Routing query: %.60s", w.name, query)

	decision := &RoutingDecision{
		Query:           query,
		AvailableAgents: availableAgents,
		Timestamp:       time.Now(),
	}
	if len(availableAgents) == 0 {
		decision.Reasoning = "No agents available"
		decision.RoutingMethod = "fallback"
		return decision
	}

	result, err := w.caller.Call(ctx,
		"You are a query routing expert.",
		w.buildPrompt(query, availableAgents), 0.3, 150)
	if err != nil {
		log.Printf("[%s] Routing error: %v", w.name, err)
		decision.SelectedAgent = availableAgents[0]
		decision.Reasoning = "Fallback routing"
		decision.RoutingMethod = "fallback"
		return decision
	}

	selected, _ := result["selected_agent"].(string)
	if selected == "" {
		decision.SelectedAgent = availableAgents[0]
		decision.Reasoning = "Fallback routing"
		decision.RoutingMethod = "fallback"
		return decision
	}

	decision.SelectedAgent = selected
	decision.RoutingMethod = "LLM-powered"
	if reasoning, ok := result["reasoning"].(string); ok && reasoning != "" {
		decision.Reasoning = reasoning
	} else {
		decision.Reasoning = "Agent selected"
	}

	log.Printf("[%s] Routed to %s", w.name, decision.SelectedAgent)
	return decision
}

func (w *RoutingWorkflow) buildPrompt(query string, agents []string) string {
	var agentsInfo strings.Builder
	for _, agent := range agents {
		desc, ok := agentDescriptions[agent]
		if !ok {
			desc = "Financial analysis"
		}
		fmt.Fprintf(&agentsInfo, "- %s: %s\n", agent, desc)
	}

	return fmt.Sprintf(`Route this financial analysis query to the most appropriate specialist agent:

Query: "%s"

Available agents:
%s
Select ONE agent and provide reasoning in JSON format:
{
    "selected_agent": "AgentName",
    "reasoning": "brief explanation why this agent is most suitable"
}`, query, agentsInfo.String())
}
