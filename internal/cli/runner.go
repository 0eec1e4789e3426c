package cli

import (
	"context"
	"fmt"
	"log"

	"stocksage/internal/config"
	"stocksage/internal/dataflows"
	"stocksage/internal/llm"
	"stocksage/internal/research"
)

// runResearchCommand wires the model backend and data sources together and
// runs one full research cycle for the symbol. The memory store is owned by
// the caller so learnings survive across cycles in one session.
func runResearchCommand(cfg *config.Config, memory *research.MemoryStore, symbol string) error {
	if err := dataflows.ValidateSymbol(symbol); err != nil {
		return err
	}
	symbol = dataflows.NormalizeSymbol(symbol)

	ctx := context.Background()

	chatModel, err := llm.NewChatModel(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize model backend: %w", err)
	}
	caller := llm.NewCaller(chatModel)

	yahoo := dataflows.NewYahooClient(cfg)
	orchestrator := research.NewOrchestrator(caller, buildSources(cfg, yahoo), memory)

	DisplayResearchHeader(symbol)

	report, err := orchestrator.Conduct(ctx, symbol)
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}

	DisplayReport(report)

	// 30-day trend digest is best-effort.
	if history, err := yahoo.GetHistoricalSummary(ctx, symbol, 30); err != nil {
		log.Printf("Historical summary unavailable for %s: %v", symbol, err)
	} else {
		DisplayHistoricalSummary(history)
	}

	return nil
}

// buildSources constructs the data-source bundle. Optional sources that
// fail to construct are left nil and the cycle degrades gracefully.
func buildSources(cfg *config.Config, yahoo *dataflows.YahooClient) research.Sources {
	sources := research.Sources{
		Primary: yahoo,
		Filings: dataflows.NewSECEdgarClient(cfg),
	}

	if av, err := dataflows.NewAlphaVantageClient(cfg); err != nil {
		log.Printf("Alpha Vantage unavailable: %v", err)
	} else {
		sources.Overview = av
	}

	if fred, err := dataflows.NewFREDClient(cfg); err != nil {
		log.Printf("FRED unavailable: %v", err)
	} else {
		sources.Macro = fred
	}

	return sources
}
