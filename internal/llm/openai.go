package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client over the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	return newOpenAIClient(config, apiKey, "")
}

// NewOpenAIClientWithBaseURL points the client at another API root (a proxy or a test server).
func NewOpenAIClientWithBaseURL(config *Config, apiKey, baseURL string) (*OpenAIClient, error) {
	return newOpenAIClient(config, apiKey, baseURL)
}

func newOpenAIClient(config *Config, apiKey, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if config == nil {
		config = DefaultOpenAIConfig()
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		config: config,
	}, nil
}

// GenerateContent sends a single user message
func (c *OpenAIClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.complete(ctx, tier, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

// AnalyzeImage sends the prompt as the system message and the image as a low-detail data URL
func (c *OpenAIClient) AnalyzeImage(ctx context.Context, prompt string, img Image) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))
	text, err := c.complete(ctx, TierVision, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt},
		{Role: openai.ChatMessageRoleUser, MultiContent: []openai.ChatMessagePart{
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailLow},
			},
			{Type: openai.ChatMessagePartTypeText, Text: "Analyze this image and extract inventory item details."},
		}},
	})
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *OpenAIClient) complete(ctx context.Context, tier ModelTier, messages []openai.ChatCompletionMessage) (string, error) {
	model := c.config.GetModel(tier)
	if model == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", toAPIError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &APIError{Provider: ProviderOpenAI, Message: "no content in response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// toAPIError converts the SDK's error types so callers see one error shape per provider.
func toAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Provider: ProviderOpenAI, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{
			Provider:   ProviderOpenAI,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    http.StatusText(reqErr.HTTPStatusCode),
			Cause:      reqErr.Err,
		}
	}
	return &APIError{Provider: ProviderOpenAI, Message: "request failed", Cause: err}
}

// Provider implements Client
func (c *OpenAIClient) Provider() Provider { return ProviderOpenAI }

// Close implements Client
func (c *OpenAIClient) Close() error { return nil }
