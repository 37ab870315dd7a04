package llm

import (
	"context"
	"errors"
	"testing"
)

func TestGeminiWithoutKeyFailsPerTurn(t *testing.T) {
	g, err := NewGemini(context.Background(), "", "", nil)
	if err != nil {
		t.Fatalf("a missing key must not fail construction: %v", err)
	}
	if g.model != DefaultGeminiModel {
		t.Fatalf("unexpected model %q", g.model)
	}
	_, err = g.Generate(context.Background(), Prompt{Text: "hello"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
