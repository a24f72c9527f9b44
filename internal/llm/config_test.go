package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	gemini := DefaultConfig(ProviderGemini)
	assert.Equal(t, ProviderGemini, gemini.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", gemini.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", gemini.GetModel(TierVision))

	openai := DefaultConfig(ProviderOpenAI)
	assert.Equal(t, ProviderOpenAI, openai.Provider)
	assert.Equal(t, "gpt-4o-mini", openai.GetModel(TierVision))
	assert.Equal(t, 500, openai.MaxTokens)
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier falls back to vision, then lite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
	assert.Equal(t, "fallback-model", config.GetModel(TierVision))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", config.GetModel(TierVision))
}

func TestWithModel(t *testing.T) {
	config := DefaultGeminiConfig()
	newConfig := config.WithModel(TierVision, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierVision))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierVision))
	assert.Equal(t, config.GetModel(TierLite), newConfig.GetModel(TierLite))
	assert.Equal(t, config.Temperature, newConfig.Temperature)
}
