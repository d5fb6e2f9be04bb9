package config

import (
	"os"
	"strconv"
)

// AnthropicModels defines which Claude models to use for different tasks
type AnthropicModels struct {
	// Expert is for parallel specialist calls (cheap, runs N at a time)
	Expert string `json:"expert"`

	// Synthesis is for combining expert outputs into the final report
	Synthesis string `json:"synthesis"`

	// SingleCall is for simple campaigns that skip the multi-agent path
	SingleCall string `json:"singleCall"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey      string          `json:"-"` // Never serialize
	Models      AnthropicModels `json:"models"`
	MaxTokens   int             `json:"maxTokens"`
	Temperature float64         `json:"temperature"`
	TimeoutMS   int             `json:"timeoutMs"`

	// TokenBudget is the soft ceiling for optional prompt sections
	TokenBudget int `json:"tokenBudget"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey: os.Getenv("ANTHROPIC_API_KEY"),
		Models: AnthropicModels{
			Expert:     getEnvOrDefault("REPORTAI_MODEL_EXPERT", "claude-haiku-4-5-20251001"),
			Synthesis:  getEnvOrDefault("REPORTAI_MODEL_SYNTHESIS", "claude-sonnet-4-5-20250929"),
			SingleCall: getEnvOrDefault("REPORTAI_MODEL_SINGLE", "claude-sonnet-4-5-20250929"),
		},
		MaxTokens:   getEnvIntOrDefault("REPORTAI_MAX_TOKENS", 4000),
		Temperature: 0.3,
		TimeoutMS:   getEnvIntOrDefault("REPORTAI_TIMEOUT_MS", 120000),
		TokenBudget: getEnvIntOrDefault("REPORTAI_TOKEN_BUDGET", 8000),
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
