package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini implements Model on the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGemini connects a Gemini client with apiKey. Without a key the adapter
// is still returned and every Generate fails with ErrMissingAPIKey, so the
// problem reaches the athlete as a failed turn.
func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiKey == "" {
		logger.Warn("[Gemini] no api key configured, turns will fail until one is set")
		return &Gemini{model: model, logger: logger}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &Gemini{client: client, model: model, logger: logger}, nil
}

// Generate sends prompt and returns the concatenated reply text.
func (g *Gemini) Generate(ctx context.Context, prompt Prompt) (string, error) {
	if g.client == nil {
		return "", ErrMissingAPIKey
	}
	var parts []*genai.Part
	if prompt.Text != "" {
		parts = append(parts, &genai.Part{Text: prompt.Text})
	}
	if len(prompt.Audio) > 0 {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{Data: prompt.Audio, MIMEType: prompt.AudioMIMEType}})
	}
	if len(parts) == 0 {
		return "", ErrEmptyPrompt
	}

	var cfg *genai.GenerateContentConfig
	if prompt.System != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: prompt.System}}},
		}
	}

	g.logger.Debug("[Gemini] generating reply",
		zap.String("model", g.model),
		zap.Int("prompt.length", len(prompt.Text)),
		zap.Int("audio.bytes", len(prompt.Audio)))

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: string(genai.RoleUser), Parts: parts}}, cfg)
	if err != nil {
		g.logger.Error("[Gemini] generate content failed", zap.Error(err))
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
