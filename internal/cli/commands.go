package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stocksage/internal/config"
	"stocksage/internal/research"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.LoadFromEnv()

	rootCmd := &cobra.Command{
		Use:   "stocksage",
		Short: "StockSage - Autonomous AI Stock Research",
		Long: `StockSage is an autonomous investment research agent powered by Large Language Models.
It plans its own research, gathers market, fundamental, economic and regulatory data,
analyzes it with specialized agents, and reflects on the quality of its own output.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: prompt for tickers until the user is done.
			// One memory store for the whole session, so repeat symbols
			// surface their earlier analyses.
			memory := research.NewMemoryStore(cfg.MemoryCapacity)
			for {
				symbol, err := PromptForTicker()
				if err != nil {
					return err
				}
				if err := runResearchCommand(cfg, memory, symbol); err != nil {
					return err
				}
				if !ConfirmAnotherResearch() {
					return nil
				}
			}
		},
	}

	rootCmd.AddCommand(newResearchCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(cfg))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	return rootCmd
}

// newResearchCmd creates the research command
func newResearchCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "research [SYMBOL]",
		Short: "Run an autonomous research cycle for a stock symbol",
		Long: `Run a complete autonomous research cycle for a given stock ticker symbol.
Example: stocksage research AAPL`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResearchCommand(cfg, research.NewMemoryStore(cfg.MemoryCapacity), args[0])
		},
	}
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("StockSage v1.0.0")
			fmt.Println("Autonomous AI Stock Research Agent")
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Manage StockSage configuration settings",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Watch config.json and report changes as they land",
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchConfig(cmd.Context())
		},
	})

	return configCmd
}

// watchConfig tails the on-disk config file until interrupted
func watchConfig(ctx context.Context) error {
	manager, err := config.NewManager()
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = manager.Watch(ctx, func(cfg config.Config) {
		fmt.Printf("Config reloaded: provider=%s model=%s memory=%d\n",
			cfg.LLMProvider, cfg.LLMModel, cfg.MemoryCapacity)
	})
	if err != nil {
		return err
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", manager.Path())
	<-ctx.Done()
	return nil
}

// showConfig displays the current configuration
func showConfig(cfg *config.Config) {
	fmt.Println("Current StockSage Configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Printf("Data Directory:       %s\n", cfg.DataDir)
	fmt.Printf("Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Println()
	fmt.Printf("LLM Provider:         %s\n", cfg.LLMProvider)
	fmt.Printf("LLM Model:            %s\n", cfg.LLMModel)
	fmt.Printf("Backend URL:          %s\n", cfg.BackendURL)
	fmt.Println()
	fmt.Printf("OpenAI API Key:       %s\n", maskKey(cfg.OpenAIAPIKey))
	fmt.Printf("DeepSeek API Key:     %s\n", maskKey(cfg.DeepSeekAPIKey))
	fmt.Printf("Alpha Vantage Key:    %s\n", maskKey(cfg.AlphaVantageAPIKey))
	fmt.Printf("FRED API Key:         %s\n", maskKey(cfg.FREDAPIKey))
	fmt.Printf("EDGAR User-Agent:     %s\n", cfg.EdgarUserAgent)
	fmt.Println()
	fmt.Printf("Memory Capacity:      %d\n", cfg.MemoryCapacity)
}

// validateConfig checks whether the configuration can actually run a cycle
func validateConfig(cfg *config.Config) error {
	switch cfg.LLMProvider {
	case "openai", "":
		if cfg.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "deepseek":
		if cfg.DeepSeekAPIKey == "" {
			return fmt.Errorf("DEEPSEEK_API_KEY is required for the deepseek provider")
		}
	default:
		return fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}

	if cfg.AlphaVantageAPIKey == "" {
		fmt.Println("⚠ Alpha Vantage API key not set (company overview disabled)")
	}
	if cfg.FREDAPIKey == "" {
		fmt.Println("⚠ FRED API key not set (macro indicators disabled)")
	}

	fmt.Println("✅ Configuration is valid")
	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
