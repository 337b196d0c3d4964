package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/cv-reviewer/internal/logger"
)

const (
	DefaultTopK = 5

	// ContextSeparator joins retrieved chunks in the prompt.
	ContextSeparator = "\n\n---\n\n"
)

type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type Retriever struct {
	embedder Embedder
	indexes  IndexFactory
	log      *zap.Logger
}

func NewRetriever(embedder Embedder, indexes IndexFactory, log *zap.Logger) *Retriever {
	return &Retriever{embedder: embedder, indexes: indexes, log: logger.OrNop(log)}
}

// Retrieve embeds the chunks, indexes them, and returns the k chunks closest
// to query. The index is built and released within this call.
func (r *Retriever) Retrieve(ctx context.Context, chunks []string, query string, k int) ([]SearchResult, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	vectors, err := r.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks", ErrEmbeddingFailure, len(vectors), len(chunks))
	}

	queryVector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	index, err := r.indexes.NewIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector index: %w", err)
	}
	defer func() {
		if err := index.Close(ctx); err != nil {
			r.log.Warn("failed to release vector index", zap.Error(err))
		}
	}()

	if err := index.Add(ctx, chunks, vectors); err != nil {
		return nil, fmt.Errorf("failed to index chunks: %w", err)
	}

	results, err := index.Search(ctx, queryVector, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector index: %w", err)
	}

	return results, nil
}

// FormatRetrievedContext joins the retrieved chunk texts in retrieval order.
func FormatRetrievedContext(results []SearchResult) string {
	parts := make([]string, 0, len(results))
	for _, result := range results {
		parts = append(parts, result.Text)
	}
	return strings.Join(parts, ContextSeparator)
}
