package services

import (
	"context"
	"slices"
	"sync"

	"github.com/itish2003/supportbot/llm"
	"github.com/itish2003/supportbot/models"
)

// memStore is an in-memory VectorStore. Query returns the configured hits.
type memStore struct {
	mu      sync.Mutex
	chunks  []models.Chunk
	hits    []models.RetrievalHit
	queries []string
	topKs   []int

	queryErr error
	idsErr   error
	addErr   error
	addCalls int
}

func (m *memStore) Query(_ context.Context, text string, topK int) ([]models.RetrievalHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	m.topKs = append(m.topKs, topK)
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.hits, nil
}

func (m *memStore) Add(_ context.Context, chunks []models.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++
	if m.addErr != nil {
		return m.addErr
	}
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memStore) IDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idsErr != nil {
		return nil, m.idsErr
	}
	ids := make([]string, len(m.chunks))
	for i, c := range m.chunks {
		ids[i] = c.ID
	}
	return ids, nil
}

func (m *memStore) Delete(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = slices.DeleteFunc(m.chunks, func(c models.Chunk) bool {
		return slices.Contains(ids, c.ID)
	})
	return nil
}

func (m *memStore) DeleteBySource(_ context.Context, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = slices.DeleteFunc(m.chunks, func(c models.Chunk) bool {
		return c.Source == source
	})
	return nil
}

func (m *memStore) List(context.Context) ([]models.StoredChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StoredChunk
	for _, c := range m.chunks {
		out = append(out, models.StoredChunk{ID: c.ID, Text: c.Text, Metadata: c.Metadata()})
	}
	return out, nil
}

func (m *memStore) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks), nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) snapshot() []models.Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.chunks)
}

// scriptedCompleter replies with a fixed text and records requests.
type scriptedCompleter struct {
	reply    string
	err      error
	requests []llm.CompletionRequest
}

func (c *scriptedCompleter) Name() string { return "scripted" }

func (c *scriptedCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	c.requests = append(c.requests, req)
	return c.reply, c.err
}
