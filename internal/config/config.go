package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	LLMProvider string `json:"llm_provider"`
	LLMModel    string `json:"llm_model"`
	BackendURL  string `json:"backend_url"`

	OpenAIAPIKey   string `json:"openai_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`

	// Dataflows configuration
	AlphaVantageAPIKey string `json:"alpha_vantage_api_key"`
	FREDAPIKey         string `json:"fred_api_key"`
	EdgarUserAgent     string `json:"edgar_user_agent"`
	CacheEnabled       bool   `json:"cache_enabled"`

	MemoryCapacity int  `json:"memory_capacity"`
	Debug          bool `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	return &Config{
		ProjectDir:   currentDir,
		DataDir:      filepath.Join(currentDir, "data"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),

		LLMProvider: "openai",
		LLMModel:    "gpt-4o-mini",
		BackendURL:  "https://api.openai.com/v1",

		AlphaVantageAPIKey: "",
		FREDAPIKey:         "",
		EdgarUserAgent:     "StockSage/1.0",
		CacheEnabled:       true,

		MemoryCapacity: 10,
		Debug:          false,
	}
}

// LoadFromEnv overlays environment variables (and an optional .env file)
// onto the defaults.
func LoadFromEnv() *Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLMProvider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
	if v := os.Getenv("LLM_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.DeepSeekAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	cfg.AlphaVantageAPIKey = os.Getenv("ALPHA_VANTAGE_API_KEY")
	cfg.FREDAPIKey = os.Getenv("FRED_API_KEY")
	if v := os.Getenv("EDGAR_USER_AGENT"); v != "" {
		cfg.EdgarUserAgent = v
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.CacheEnabled = enabled
		}
	}
	if v := os.Getenv("STOCKSAGE_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = debug
		}
	}

	return cfg
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, c.DataCacheDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
