package models

// Metadata keys written with every chunk.
const (
	MetaTitle  = "title"
	MetaSource = "source"
)

// Chunk is one embedded unit of a source document. It is immutable once created.
type Chunk struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source"`
	Title  string `json:"title"`
}

// Metadata returns the metadata record persisted alongside the chunk text.
func (c Chunk) Metadata() map[string]any {
	return map[string]any{
		MetaSource: c.Source,
		MetaTitle:  c.Title,
	}
}

// RetrievalHit is a chunk returned by a similarity query. Hits are ordered
// most similar first and their position determines the citation number.
type RetrievalHit struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// StoredChunk represents a single record read back from the vector store.
type StoredChunk struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// GetAllChunksResponse is the structure for the response of the GET /api/v1/chunks endpoint.
type GetAllChunksResponse struct {
	Count  int           `json:"count"`
	Chunks []StoredChunk `json:"chunks"`
}
