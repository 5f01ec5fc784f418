package store

import (
	"context"
	"fmt"

	"github.com/itish2003/supportbot/llm"
)

// DefaultEmbedBatch bounds the number of texts sent per embedding request.
const DefaultEmbedBatch = 64

// embedBatched embeds texts in sequential batches of at most batch texts.
func embedBatched(ctx context.Context, embedder llm.Embedder, texts []string, batch int) ([][]float32, error) {
	if batch <= 0 {
		batch = DefaultEmbedBatch
	}
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batch {
		end := min(start+batch, len(texts))
		part, err := embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed texts %d-%d: %w", start, end, err)
		}
		if len(part) != end-start {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(part), end-start)
		}
		vectors = append(vectors, part...)
	}
	return vectors, nil
}
