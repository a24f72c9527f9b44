// Package llm wraps the language-model providers used for image analysis and
// voice translation behind one small client interface.
package llm

// ModelTier represents the capability level of a model
type ModelTier string

const (
	// TierLite is for short text tasks such as translating a voice note
	TierLite ModelTier = "lite"
	// TierVision is for image understanding
	TierVision ModelTier = "vision"
)

// Provider represents an LLM provider
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Config holds the model configuration for a provider
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// Temperature is sent with every request.
	Temperature float32
	// MaxTokens caps the response length; 0 leaves the provider default.
	MaxTokens int
}

// DefaultGeminiConfig returns the Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:   "gemini-2.5-flash-lite",
			TierVision: "gemini-2.5-flash",
		},
		Temperature: 0.2,
		MaxTokens:   500,
	}
}

// DefaultOpenAIConfig returns the OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:   "gpt-4o-mini",
			TierVision: "gpt-4o-mini",
		},
		Temperature: 0.2,
		MaxTokens:   500,
	}
}

// DefaultConfig returns the default configuration for a provider
func DefaultConfig(p Provider) *Config {
	if p == ProviderOpenAI {
		return DefaultOpenAIConfig()
	}
	return DefaultGeminiConfig()
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: vision models handle text too
	if model, ok := c.Models[TierVision]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}
