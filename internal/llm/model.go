// Package llm wraps the language model that answers athlete turns.
package llm

import (
	"context"
	"errors"
)

var (
	ErrEmptyPrompt   = errors.New("llm: prompt has neither text nor audio")
	ErrEmptyResponse = errors.New("llm: model returned no text")
	ErrMissingAPIKey = errors.New("llm: model api key is not configured")
)

// Prompt is one single-shot request: a system instruction plus either a
// text turn or an audio clip.
type Prompt struct {
	System        string
	Text          string
	Audio         []byte
	AudioMIMEType string
}

// Model produces a free-text reply for a prompt.
type Model interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}
