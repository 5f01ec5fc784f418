// Package store provides the vector collection shared by the ingestion and
// query pipelines.
package store

import (
	"context"

	"github.com/itish2003/supportbot/models"
)

// Backend names accepted by the configuration.
const (
	BackendLocal  = "local"
	BackendChroma = "chroma"
)

// VectorStore is a persistent, named collection of embedded chunks.
// Implementations embed texts themselves, both when adding and when querying.
type VectorStore interface {
	// Query returns up to topK hits for text, most similar first.
	Query(ctx context.Context, text string, topK int) ([]models.RetrievalHit, error)
	// Add embeds and stores chunks with their title and source metadata.
	Add(ctx context.Context, chunks []models.Chunk) error
	// IDs lists the identifiers of every stored chunk.
	IDs(ctx context.Context) ([]string, error)
	// Delete removes the chunks with the given identifiers.
	Delete(ctx context.Context, ids []string) error
	// DeleteBySource removes every chunk whose source metadata equals source.
	DeleteBySource(ctx context.Context, source string) error
	// List returns every stored chunk.
	List(ctx context.Context) ([]models.StoredChunk, error)
	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
	// Close releases the underlying client.
	Close() error
}
