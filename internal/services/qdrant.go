package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/cv-reviewer/internal/logger"
)

// qdrantAPI is the subset of *qdrant.Client used by the scoped index.
type qdrantAPI interface {
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	DeleteCollection(ctx context.Context, collectionName string) error
}

type QdrantIndexFactory struct {
	client qdrantAPI
	closer func() error
	log    *zap.Logger
}

// NewQdrantIndexFactory connects to Qdrant over gRPC. Each index it creates
// owns a throwaway collection that is dropped on Close.
func NewQdrantIndexFactory(urlStr, apiKey string, log *zap.Logger) (*QdrantIndexFactory, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("invalid Qdrant URL %q: missing host", urlStr)
	}
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &QdrantIndexFactory{client: client, closer: client.Close, log: logger.OrNop(log)}, nil
}

func (f *QdrantIndexFactory) NewIndex(context.Context) (VectorIndex, error) {
	name := "cv_review_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	return &qdrantIndex{client: f.client, collectionName: name, log: logger.OrNop(f.log)}, nil
}

// Close releases the underlying connection.
func (f *QdrantIndexFactory) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer()
}

type qdrantIndex struct {
	client         qdrantAPI
	collectionName string
	created        bool
	count          int
	log            *zap.Logger
}

func (q *qdrantIndex) Add(ctx context.Context, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return fmt.Errorf("got %d texts but %d vectors", len(texts), len(vectors))
	}
	if len(vectors) == 0 {
		return nil
	}

	if !q.created {
		err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: q.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(len(vectors[0])),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		q.created = true
		q.log.Debug("qdrant collection created", zap.String("collection", q.collectionName))
	}

	points := make([]*qdrant.PointStruct, len(vectors))
	for i, vec := range vectors {
		position := q.count + i
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(position)),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":     texts[i],
				"position": position,
			}),
		}
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	q.count += len(vectors)
	return nil
}

func (q *qdrantIndex) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	if k <= 0 || q.count == 0 {
		return nil, nil
	}
	if k > q.count {
		k = q.count
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(query...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		result := SearchResult{
			Position: -1,
			Distance: 1 - point.GetScore(),
		}
		if text, ok := point.GetPayload()["text"]; ok {
			result.Text = text.GetStringValue()
		}
		if pos, ok := point.GetPayload()["position"]; ok {
			result.Position = int(pos.GetIntegerValue())
		}
		results = append(results, result)
	}

	return results, nil
}

func (q *qdrantIndex) Close(ctx context.Context) error {
	if !q.created {
		return nil
	}

	// The request context may already be done; the drop must still happen.
	if err := q.client.DeleteCollection(context.WithoutCancel(ctx), q.collectionName); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", q.collectionName, err)
	}

	q.created = false
	q.log.Debug("qdrant collection dropped", zap.String("collection", q.collectionName))
	return nil
}
