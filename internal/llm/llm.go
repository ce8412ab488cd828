// Package llm wraps the Gemini SDK behind a small text-generation client and
// classifies upstream failures so callers can tell retryable rate limits from
// fatal auth errors.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/viper"
	"google.golang.org/genai"
)

// DefaultModel is the default Gemini model used for narrative generation.
const DefaultModel = "gemini-2.5-flash-preview-05-20"

// Sentinel errors for upstream failure classes. Callers match with errors.Is.
var (
	// ErrRateLimited is returned when the model endpoint answers 429.
	ErrRateLimited = errors.New("generation rate limit exceeded")
	// ErrAuthFailed is returned when the model endpoint rejects credentials.
	ErrAuthFailed = errors.New("generation auth failed")
)

// GenerateOptions holds per-call generation parameters.
type GenerateOptions struct {
	SystemInstruction string
	MaxTokens         int32
	Temperature       float32
}

// Client is a thin wrapper around the Gemini SDK.
type Client struct {
	modelName string
	gClient   *genai.Client
}

// NewClient creates a new LLM client. The API key is resolved from, in order,
// the GEMINI_API_KEY / GOOGLE_GEMINI_API_KEY / GOOGLE_AI_API_KEY environment
// variables and the ai.gemini.api_key config key.
func NewClient(modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			if apiKey = os.Getenv("GOOGLE_AI_API_KEY"); apiKey == "" {
				apiKey = viper.GetString("ai.gemini.api_key")
			}
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required: set GEMINI_API_KEY or ai.gemini.api_key in the config file")
	}

	if modelName == "" {
		modelName = viper.GetString("ai.gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	ctx := context.Background()
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		modelName: modelName,
		gClient:   gClient,
	}, nil
}

// GenerateText generates text from a prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	var config *genai.GenerateContentConfig
	if options.MaxTokens > 0 || options.Temperature > 0 || options.SystemInstruction != "" {
		config = &genai.GenerateContentConfig{}
		if options.MaxTokens > 0 {
			config.MaxOutputTokens = options.MaxTokens
		}
		if options.Temperature > 0 {
			config.Temperature = genai.Ptr(options.Temperature)
		}
		if options.SystemInstruction != "" {
			config.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: options.SystemInstruction}},
			}
		}
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, config)
	if err != nil {
		return "", classifyError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// GetModelName returns the model name used by this client.
func (c *Client) GetModelName() string {
	return c.modelName
}

// Close cleans up resources used by the client.
func (c *Client) Close() {
	// The SDK client does not require explicit close.
}

// classifyError maps SDK errors onto the sentinel error taxonomy. HTTP 429 is
// a retryable rate limit, 401/403 a fatal credential problem; everything else
// passes through wrapped as a generic upstream error.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrAuthFailed, apiErr.Message)
		}
	}
	return fmt.Errorf("failed to generate text: %w", err)
}
