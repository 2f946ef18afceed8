package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var ErrNotConfigured = errors.New("gemini client is not initialized")

// PromptResult contains the response and metadata from a prompt
type PromptResult struct {
	Response     string
	TokenUsed    int
	ResponseTime int // in milliseconds
}

type AiClient struct {
	geminiClient *genai.Client
	geminiModel  string
}

type Config struct {
	GeminiAPIKey string
	GeminiModel  string
}

// NewAiClient returns an unconfigured client when no API key is given;
// Enabled reports which one you got.
func NewAiClient(ctx context.Context, cfg *Config) (*AiClient, error) {
	aiClient := &AiClient{}

	if cfg.GeminiAPIKey != "" && cfg.GeminiModel != "" {
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}

		aiClient.geminiClient = client
		aiClient.geminiModel = cfg.GeminiModel
	}

	return aiClient, nil
}

func (a *AiClient) Enabled() bool {
	return a != nil && a.geminiClient != nil
}

// GeminiPromptWithSchema sends a text prompt with JSON schema for structured output
func (a *AiClient) GeminiPromptWithSchema(ctx context.Context, prompt string, schema *genai.Schema) (*PromptResult, error) {
	if !a.Enabled() {
		return nil, ErrNotConfigured
	}

	model := a.geminiClient.GenerativeModel(a.geminiModel)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema

	startTime := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	responseTime := int(time.Since(startTime).Milliseconds())

	if err != nil {
		return nil, fmt.Errorf("failed to call Gemini API with schema: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("received empty or invalid response structure from Gemini")
	}

	textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response part type")
	}

	tokenUsed := 0
	if resp.UsageMetadata != nil {
		tokenUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &PromptResult{
		Response:     string(textPart),
		TokenUsed:    tokenUsed,
		ResponseTime: responseTime,
	}, nil
}

// Close properly closes the Gemini client
func (a *AiClient) Close() error {
	if a.Enabled() {
		return a.geminiClient.Close()
	}
	return nil
}
