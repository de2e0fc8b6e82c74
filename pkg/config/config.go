package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// Config defines the global application configuration structure.
// This structure maps directly to the config.json file and holds
// business-level settings like channel payloads and LLM provider choices.
type Config struct {
	// Channels contains a map of channel identifiers (e.g., "telegram", "web")
	// to their specific configuration payloads in raw JSON format.
	Channels map[string]jsoniter.RawMessage `json:"channels"`
	// LLM holds the configuration for the LLM provider groups in raw JSON.
	LLM jsoniter.RawMessage `json:"llm"`
	// DefaultRepo scopes investigations that do not name a repository
	// explicitly ("owner/repo"). Optional.
	DefaultRepo string `json:"default_repo,omitempty"`
	// HistoryDir is where per-conversation transcripts are persisted.
	// Empty disables persistence.
	HistoryDir string `json:"history_dir,omitempty"`
}

// Validate ensures the configuration structure contains all mandatory fields.
// It acts as a primary guard before the system proceeds to initialization.
func (c *Config) Validate() error {
	if len(c.LLM) == 0 {
		return fmt.Errorf("mandatory 'llm' configuration is missing or empty")
	}
	return nil
}

// SystemConfig defines engine-level technical parameters.
// These settings are stored in system.json and control the performance,
// reliability, and technical behavior of the investigation engine.
type SystemConfig struct {
	// MaxRetries is the number of times the system will attempt to
	// recover from a transient LLM or network error before giving up.
	MaxRetries int `json:"max_retries"`
	// RetryDelayMs is the duration to wait (in milliseconds) between
	// consecutive retry attempts.
	RetryDelayMs int `json:"retry_delay_ms"`
	// LLMTimeoutMs is the hard cutoff time (in milliseconds) for an
	// LLM request. The context will be cancelled if exceeded.
	LLMTimeoutMs int `json:"llm_timeout_ms"`
	// OllamaDefaultURL is the fallback endpoint used when connecting
	// to a local Ollama instance if no specific URL is provided.
	OllamaDefaultURL string `json:"ollama_default_url"`
	// MainStepBudget caps the number of reasoning iterations the
	// orchestrator loop may run for one request.
	MainStepBudget int `json:"main_step_budget"`
	// SubStepBudget caps the iterations of each delegated sub-session.
	SubStepBudget int `json:"sub_step_budget"`
	// MaxParallelDelegations bounds how many sub-sessions run concurrently
	// when one turn requests several delegations.
	MaxParallelDelegations int `json:"max_parallel_delegations"`
	// GithubTimeoutMs is the per-call timeout for GitHub API requests.
	GithubTimeoutMs int `json:"github_timeout_ms"`
	// SearchTimeoutMs is the per-call timeout for web search requests.
	SearchTimeoutMs int `json:"search_timeout_ms"`
	// SummarizeSearchResults runs retrieved web pages through the model
	// to compress them before offloading.
	SummarizeSearchResults bool `json:"summarize_search_results"`
	// TelegramMessageLimit is the maximum character count for a single
	// Telegram message. Longer reports will be split into multiple chunks.
	TelegramMessageLimit int `json:"telegram_message_limit"`
	// ShowThinking determines whether the model's reasoning blocks are
	// surfaced to the end user alongside progress updates.
	ShowThinking bool `json:"show_thinking"`
	// DebugExchanges enables saving every raw LLM request/response pair to
	// the /debug folder for inspection and troubleshooting purposes.
	DebugExchanges bool `json:"debug_exchanges"`
	// LogLevel sets the minimum severity for log output.
	// Accepted values: "debug", "info", "warn", "error". Default: "info".
	LogLevel string `json:"log_level"`
}

// DefaultSystemConfig returns a SystemConfig pointer initialized with
// hardcoded safe default values. This is used as a fallback when the
// system.json file is missing or corrupt, so the engine can always start.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		MaxRetries:             3,
		RetryDelayMs:           500,
		LLMTimeoutMs:           600000,
		OllamaDefaultURL:       "http://localhost:11434",
		MainStepBudget:         25,
		SubStepBudget:          10,
		MaxParallelDelegations: 3,
		GithubTimeoutMs:        30000,
		SearchTimeoutMs:        30000,
		SummarizeSearchResults: false,
		TelegramMessageLimit:   4000,
		ShowThinking:           true,
		LogLevel:               "info",
	}
}

// Load reads and parses the JSON configuration files from the current working directory.
// It first attempts to load 'config.json' (app config). If this file is missing, it returns an error.
// Then it calls LoadSystemConfig to load 'system.json'.
func Load() (*Config, *SystemConfig, error) {
	// 1. Load Application Config
	appPath := "config.json"
	if _, err := os.Stat(appPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("config file '%s' not found. please create one", appPath)
	}

	appFile, err := os.ReadFile(appPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(appFile, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// 1a. Validate structure integrity
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	// 2. Load System Config independently
	sysCfg := LoadSystemConfig("system.json")

	return &cfg, sysCfg, nil
}

// LoadSystemConfig attempts to load system settings, returns defaults if it fails
func LoadSystemConfig(path string) *SystemConfig {
	cfg := DefaultSystemConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		return cfg // File not found, use defaults
	}

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(file, cfg); err != nil {
		return cfg // Parse failed, use defaults
	}

	return cfg
}
