package services

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// SearchResult is one retrieved chunk. Position is the chunk's index in the
// chunked document.
type SearchResult struct {
	Position int
	Text     string
	Distance float32
}

// VectorIndex is a nearest-neighbour index that lives for a single review.
// Close must be called once the index is no longer queried.
type VectorIndex interface {
	Add(ctx context.Context, texts []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]SearchResult, error)
	Close(ctx context.Context) error
}

type IndexFactory interface {
	NewIndex(ctx context.Context) (VectorIndex, error)
}

type DistanceMetric string

const (
	DistanceCosine DistanceMetric = "cosine"
	DistanceL2     DistanceMetric = "l2"
)

type memoryIndexFactory struct {
	metric DistanceMetric
}

// NewMemoryIndexFactory returns a factory of exact, linear-scan indexes.
func NewMemoryIndexFactory(metric DistanceMetric) IndexFactory {
	if metric == "" {
		metric = DistanceCosine
	}
	return &memoryIndexFactory{metric: metric}
}

func (f *memoryIndexFactory) NewIndex(context.Context) (VectorIndex, error) {
	return &memoryIndex{metric: f.metric}, nil
}

type memoryIndex struct {
	metric  DistanceMetric
	texts   []string
	vectors [][]float32
	dim     int
	closed  bool
}

func (m *memoryIndex) Add(_ context.Context, texts []string, vectors [][]float32) error {
	if m.closed {
		return fmt.Errorf("index is closed")
	}
	if len(texts) != len(vectors) {
		return fmt.Errorf("got %d texts but %d vectors", len(texts), len(vectors))
	}

	for i, vec := range vectors {
		if len(vec) == 0 {
			return fmt.Errorf("vector %d is empty", i)
		}
		if m.dim == 0 {
			m.dim = len(vec)
		}
		if len(vec) != m.dim {
			return fmt.Errorf("vector %d has dimension %d, expected %d", i, len(vec), m.dim)
		}
	}

	m.texts = append(m.texts, texts...)
	m.vectors = append(m.vectors, vectors...)
	return nil
}

// Search returns at most k results ordered by increasing distance.
func (m *memoryIndex) Search(_ context.Context, query []float32, k int) ([]SearchResult, error) {
	if m.closed {
		return nil, fmt.Errorf("index is closed")
	}
	if k <= 0 || len(m.vectors) == 0 {
		return nil, nil
	}
	if len(query) != m.dim {
		return nil, fmt.Errorf("query has dimension %d, expected %d", len(query), m.dim)
	}

	results := make([]SearchResult, len(m.vectors))
	for i, vec := range m.vectors {
		results[i] = SearchResult{
			Position: i,
			Text:     m.texts[i],
			Distance: m.distance(query, vec),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (m *memoryIndex) Close(context.Context) error {
	m.closed = true
	m.texts = nil
	m.vectors = nil
	return nil
}

func (m *memoryIndex) distance(a, b []float32) float32 {
	if m.metric == DistanceL2 {
		return squaredL2(a, b)
	}
	return cosineDistance(a, b)
}

func cosineDistance(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}

func squaredL2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}
