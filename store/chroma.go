package store

import (
	"context"
	"encoding/json"
	"fmt"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/kart-io/logger"

	"github.com/itish2003/supportbot/llm"
	"github.com/itish2003/supportbot/models"
)

// ChromaStore keeps the collection in a Chroma server. Embeddings are
// computed client side and sent with every add and query.
type ChromaStore struct {
	client     chromago.Client
	collection chromago.Collection
	embedder   llm.Embedder
	batch      int
}

// NewChromaStore connects to the Chroma server at baseURL and gets or creates
// the named collection.
func NewChromaStore(ctx context.Context, baseURL, name string, embedder llm.Embedder, batch int) (*ChromaStore, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	logger.Infof("Getting or creating collection '%s' using v2 API...", name)
	collection, err := client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "support knowledge base"),
				chromago.NewStringAttribute("created_by", "supportbot"),
			),
		),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to get or create collection %s: %w", name, err)
	}

	if batch <= 0 {
		batch = DefaultEmbedBatch
	}
	return &ChromaStore{client: client, collection: collection, embedder: embedder, batch: batch}, nil
}

// Query implements VectorStore.
func (s *ChromaStore) Query(ctx context.Context, text string, topK int) ([]models.RetrievalHit, error) {
	vec, err := llm.EmbedOne(ctx, s.embedder, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}

	results, err := s.collection.Query(
		ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vec)),
		chromago.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	if len(documentGroups) == 0 {
		return nil, nil
	}

	hits := make([]models.RetrievalHit, 0, len(documentGroups[0]))
	for i, doc := range documentGroups[0] {
		var meta chromago.DocumentMetadata
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			meta = metadataGroups[0][i]
		}
		hits = append(hits, models.RetrievalHit{
			Text:     doc.ContentString(),
			Metadata: metadataToMap(meta),
		})
	}
	return hits, nil
}

// Add implements VectorStore. Records are written in batches of the
// configured embedding batch size.
func (s *ChromaStore) Add(ctx context.Context, chunks []models.Chunk) error {
	for start := 0; start < len(chunks); start += s.batch {
		part := chunks[start:min(start+s.batch, len(chunks))]

		texts := make([]string, len(part))
		for i, c := range part {
			texts[i] = c.Text
		}
		vectors, err := embedBatched(ctx, s.embedder, texts, s.batch)
		if err != nil {
			return err
		}

		ids := make([]chromago.DocumentID, len(part))
		embs := make([]embeddings.Embedding, len(part))
		metas := make([]chromago.DocumentMetadata, len(part))
		for i, c := range part {
			ids[i] = chromago.DocumentID(c.ID)
			embs[i] = embeddings.NewEmbeddingFromFloat32(vectors[i])
			metas[i] = chromago.NewDocumentMetadata(
				chromago.NewStringAttribute(models.MetaSource, c.Source),
				chromago.NewStringAttribute(models.MetaTitle, c.Title),
			)
		}

		err = s.collection.Add(ctx,
			chromago.WithIDs(ids...),
			chromago.WithTexts(texts...),
			chromago.WithEmbeddings(embs...),
			chromago.WithMetadatas(metas...),
		)
		if err != nil {
			return fmt.Errorf("failed to add records to chromadb: %w", err)
		}
	}
	return nil
}

// IDs implements VectorStore.
func (s *ChromaStore) IDs(ctx context.Context) ([]string, error) {
	results, err := s.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from chromadb: %w", err)
	}
	docIDs := results.GetIDs()
	ids := make([]string, len(docIDs))
	for i, id := range docIDs {
		ids[i] = string(id)
	}
	return ids, nil
}

// Delete implements VectorStore.
func (s *ChromaStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	docIDs := make([]chromago.DocumentID, len(ids))
	for i, id := range ids {
		docIDs[i] = chromago.DocumentID(id)
	}
	if err := s.collection.Delete(ctx, chromago.WithIDsDelete(docIDs...)); err != nil {
		return fmt.Errorf("failed to delete records from chromadb: %w", err)
	}
	return nil
}

// DeleteBySource implements VectorStore.
func (s *ChromaStore) DeleteBySource(ctx context.Context, source string) error {
	where := chromago.EqString(models.MetaSource, source)
	if err := s.collection.Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("failed to delete records for %s: %w", source, err)
	}
	return nil
}

// List implements VectorStore.
func (s *ChromaStore) List(ctx context.Context) ([]models.StoredChunk, error) {
	results, err := s.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from chromadb: %w", err)
	}

	ids := results.GetIDs()
	documents := results.GetDocuments()
	metadatas := results.GetMetadatas()

	chunks := make([]models.StoredChunk, 0, len(documents))
	for i := range documents {
		var meta chromago.DocumentMetadata
		if i < len(metadatas) {
			meta = metadatas[i]
		}
		var id string
		if i < len(ids) {
			id = string(ids[i])
		}
		chunks = append(chunks, models.StoredChunk{
			ID:       id,
			Text:     documents[i].ContentString(),
			Metadata: metadataToMap(meta),
		})
	}
	return chunks, nil
}

// Count implements VectorStore.
func (s *ChromaStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

// Close implements VectorStore.
func (s *ChromaStore) Close() error {
	return s.client.Close()
}

// metadataToMap converts chroma document metadata to a plain map. The
// metadata type exposes no accessor for all keys, so it round-trips through
// JSON.
func metadataToMap(meta chromago.DocumentMetadata) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	jsonBytes, err := json.Marshal(meta)
	if err != nil {
		logger.Warnw("could not marshal chroma metadata", "error", err.Error())
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(jsonBytes, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

var _ VectorStore = (*ChromaStore)(nil)
