package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"alfredoptarigan/cv-reviewer/internal/models"
)

type fakeParser struct {
	text  string
	err   error
	calls int
}

func (f *fakeParser) ExtractText([]byte) (string, error) {
	f.calls++
	return f.text, f.err
}

// keywordEmbedder maps text to counts of a few keywords so similarity is
// predictable in tests.
type keywordEmbedder struct {
	keywords   []string
	docErr     error
	queryErr   error
	docCalls   int
	queryCalls int
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{keywords: []string{"go", "kubernetes", "python", "sales"}}
}

func (e *keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(e.keywords)+1)
	for i, kw := range e.keywords {
		vec[i] = float32(strings.Count(lower, kw))
	}
	vec[len(e.keywords)] = 0.1
	return vec
}

func (e *keywordEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.docCalls++
	if e.docErr != nil {
		return nil, e.docErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.queryCalls++
	if e.queryErr != nil {
		return nil, e.queryErr
	}
	return e.vector(text), nil
}

type fakeGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (g *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	return g.response, g.err
}

type recordingRunRepo struct {
	mu   sync.Mutex
	runs []models.ReviewRun
	err  error
}

func (r *recordingRunRepo) Create(run *models.ReviewRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, *run)
	return r.err
}

// trackingIndexFactory wraps the memory index and records Close calls.
type trackingIndexFactory struct {
	inner   IndexFactory
	created int
	closed  int
	failNew bool
}

func (f *trackingIndexFactory) NewIndex(ctx context.Context) (VectorIndex, error) {
	if f.failNew {
		return nil, errors.New("backend unavailable")
	}
	idx, err := f.inner.NewIndex(ctx)
	if err != nil {
		return nil, err
	}
	f.created++
	return &trackingIndex{VectorIndex: idx, factory: f}, nil
}

type trackingIndex struct {
	VectorIndex
	factory *trackingIndexFactory
}

func (t *trackingIndex) Close(ctx context.Context) error {
	t.factory.closed++
	return t.VectorIndex.Close(ctx)
}
