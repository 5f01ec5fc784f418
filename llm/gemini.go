package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements Embedder and Completer on the Gemini API.
type GeminiProvider struct {
	client     *genai.Client
	embedModel string
}

// NewGeminiProvider creates a Gemini API client for apiKey.
func NewGeminiProvider(ctx context.Context, apiKey, embedModel string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, embedModel: embedModel}, nil
}

// Name implements Embedder and Completer.
func (p *GeminiProvider) Name() string { return ProviderGemini }

// Complete implements Completer.
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	result, err := p.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return result.Text(), nil
}

// Embed implements Embedder.
func (p *GeminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.Text(text)...)
	}

	result, err := p.client.Models.EmbedContent(ctx, p.embedModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed failed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, e := range result.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

var (
	_ Embedder  = (*GeminiProvider)(nil)
	_ Completer = (*GeminiProvider)(nil)
)
