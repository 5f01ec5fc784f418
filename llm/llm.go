// Package llm wraps the embedding and completion services the pipelines
// depend on. Both are treated as black boxes behind small interfaces so the
// provider can be chosen at startup.
package llm

import (
	"context"
	"fmt"
)

// Provider names accepted by the configuration.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Embedder maps texts to fixed-dimension vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

// CompletionRequest is a single-turn request: one user message, sampled at
// Temperature, optionally constrained to a JSON object reply.
type CompletionRequest struct {
	Model       string
	Temperature float32
	JSON        bool
	Prompt      string
}

// Completer sends a prompt to a language model and returns its raw text reply.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Name() string
}

// EmbedOne embeds a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%s: expected 1 embedding, got %d", e.Name(), len(vectors))
	}
	return vectors[0], nil
}
