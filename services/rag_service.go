package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/itish2003/supportbot/llm"
	"github.com/itish2003/supportbot/metrics"
	"github.com/itish2003/supportbot/models"
	"github.com/itish2003/supportbot/store"
)

// EmptyQuestionAnswer is returned, without touching any backend, for a blank
// question.
const EmptyQuestionAnswer = "Please type a question."

// DefaultTopK is the retrieval depth used when none is configured.
const DefaultTopK = 4

// RAGService interface defines methods for RAG operations
type RAGService interface {
	Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error)
	GetAllChunks(ctx context.Context) (*models.GetAllChunksResponse, error)
	GetTotalChunks(ctx context.Context) (int, error)
}

// QueryOptions tunes the query pipeline.
type QueryOptions struct {
	Model       string
	Temperature float32
	TopK        int
}

// ragServiceImpl holds the dependencies it needs to do its job
type ragServiceImpl struct {
	store     store.VectorStore
	completer llm.Completer
	opts      QueryOptions
	metrics   *metrics.Metrics
}

// NewRAGService creates a new RAG service instance. A non-positive TopK falls
// back to DefaultTopK.
func NewRAGService(vs store.VectorStore, completer llm.Completer, opts QueryOptions, m *metrics.Metrics) RAGService {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	return &ragServiceImpl{
		store:     vs,
		completer: completer,
		opts:      opts,
		metrics:   m,
	}
}

// Ask runs retrieval, prompting and citation reconciliation for one question.
func (r *ragServiceImpl) Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error) {
	start := time.Now()
	question := strings.TrimSpace(req.Question)
	if question == "" {
		r.metrics.RecordAsk(metrics.OutcomeEmpty, 0, time.Since(start))
		return &models.AskResponse{
			Answer:     EmptyQuestionAnswer,
			Citations:  []models.Source{},
			Confidence: 0.0,
		}, nil
	}

	logger.Infow("SERVICE: answering question", "question_len", len(question), "top_k", r.opts.TopK)

	hits, err := r.store.Query(ctx, question, r.opts.TopK)
	if err != nil {
		r.metrics.RecordAsk(metrics.OutcomeError, 0, time.Since(start))
		return nil, fmt.Errorf("could not retrieve context: %w", err)
	}

	contextBlock, sources := BuildContext(hits)
	prompt := BuildPrompt(question, contextBlock, RenderSources(sources))

	raw, err := r.completer.Complete(ctx, llm.CompletionRequest{
		Model:       r.opts.Model,
		Temperature: r.opts.Temperature,
		JSON:        true,
		Prompt:      prompt,
	})
	if err != nil {
		r.metrics.RecordAsk(metrics.OutcomeError, len(hits), time.Since(start))
		return nil, fmt.Errorf("could not generate response from %s: %w", r.completer.Name(), err)
	}

	answer, err := ParseStructuredAnswer(raw)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, ErrMalformedAnswer) {
			outcome = metrics.OutcomeMalformed
		}
		r.metrics.RecordAsk(outcome, len(hits), time.Since(start))
		return nil, err
	}

	resp := BuildResponse(answer, sources)
	r.metrics.RecordAsk(metrics.OutcomeAnswered, len(hits), time.Since(start))
	logger.Infow("SERVICE: question answered",
		"hits", len(hits),
		"citations", len(resp.Citations),
		"confidence", resp.Confidence,
		"duration", time.Since(start).String(),
	)
	return resp, nil
}

// GetAllChunks lists every chunk in the collection.
func (r *ragServiceImpl) GetAllChunks(ctx context.Context) (*models.GetAllChunksResponse, error) {
	logger.Infof("SERVICE: Getting all chunks from the vector store...")

	chunks, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if chunks == nil {
		chunks = []models.StoredChunk{}
	}

	logger.Infof("SERVICE: Successfully retrieved %d chunks", len(chunks))
	return &models.GetAllChunksResponse{
		Count:  len(chunks),
		Chunks: chunks,
	}, nil
}

// GetTotalChunks counts all the document chunks in the collection.
func (r *ragServiceImpl) GetTotalChunks(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}
