package services

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeQdrant struct {
	created   []*qdrant.CreateCollection
	upserts   []*qdrant.UpsertPoints
	queries   []*qdrant.QueryPoints
	deleted   []string
	scored    []*qdrant.ScoredPoint
	createErr error
	deleteErr error
}

func (f *fakeQdrant) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.created = append(f.created, req)
	return f.createErr
}

func (f *fakeQdrant) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserts = append(f.upserts, req)
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeQdrant) Query(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.queries = append(f.queries, req)
	return f.scored, nil
}

func (f *fakeQdrant) DeleteCollection(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return f.deleteErr
}

func newFakeQdrantFactory(api qdrantAPI) *QdrantIndexFactory {
	return &QdrantIndexFactory{client: api, log: zap.NewNop()}
}

func TestQdrantIndex_FactoryWithoutLogger(t *testing.T) {
	api := &fakeQdrant{}
	index, err := (&QdrantIndexFactory{client: api}).NewIndex(context.Background())
	require.NoError(t, err)

	require.NotPanics(t, func() {
		require.NoError(t, index.Add(context.Background(), []string{"a"}, [][]float32{{1, 0}}))
		require.NoError(t, index.Close(context.Background()))
	})
	assert.Len(t, api.created, 1)
	assert.Len(t, api.deleted, 1)
}

func TestNewQdrantIndexFactory_InvalidURL(t *testing.T) {
	_, err := NewQdrantIndexFactory("://bad", "", nil)
	assert.Error(t, err)

	_, err = NewQdrantIndexFactory("http://", "", nil)
	assert.Error(t, err)
}

func TestQdrantIndex_ScopedCollectionLifecycle(t *testing.T) {
	api := &fakeQdrant{}
	factory := newFakeQdrantFactory(api)

	first, err := factory.NewIndex(context.Background())
	require.NoError(t, err)
	second, err := factory.NewIndex(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.(*qdrantIndex).collectionName, second.(*qdrantIndex).collectionName)

	// Closing an index that never stored anything touches nothing.
	require.NoError(t, second.Close(context.Background()))
	assert.Empty(t, api.deleted)

	require.NoError(t, first.Add(context.Background(), []string{"a", "b"}, [][]float32{{1, 0, 0}, {0, 1, 0}}))
	require.NoError(t, first.Add(context.Background(), []string{"c"}, [][]float32{{0, 0, 1}}))

	require.Len(t, api.created, 1, "collection is created once")
	assert.Equal(t, uint64(3), api.created[0].GetVectorsConfig().GetParams().GetSize())
	assert.Equal(t, qdrant.Distance_Cosine, api.created[0].GetVectorsConfig().GetParams().GetDistance())

	require.Len(t, api.upserts, 2)
	last := api.upserts[1].Points[0]
	assert.Equal(t, uint64(2), last.GetId().GetNum())
	assert.Equal(t, "c", last.GetPayload()["text"].GetStringValue())
	assert.Equal(t, int64(2), last.GetPayload()["position"].GetIntegerValue())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, first.Close(ctx), "drop survives a cancelled request context")
	assert.Equal(t, []string{first.(*qdrantIndex).collectionName}, api.deleted)

	require.NoError(t, first.Close(context.Background()))
	assert.Len(t, api.deleted, 1, "second close is a no-op")
}

func TestQdrantIndex_SearchMapsScoresToDistance(t *testing.T) {
	api := &fakeQdrant{
		scored: []*qdrant.ScoredPoint{
			{
				Score: 0.9,
				Payload: qdrant.NewValueMap(map[string]any{
					"text":     "Go services",
					"position": 1,
				}),
			},
			{
				Score: 0.25,
				Payload: qdrant.NewValueMap(map[string]any{
					"text":     "sales",
					"position": 0,
				}),
			},
		},
	}
	index, err := newFakeQdrantFactory(api).NewIndex(context.Background())
	require.NoError(t, err)

	results, err := index.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Nil(t, results, "empty index short-circuits")
	assert.Empty(t, api.queries)

	require.NoError(t, index.Add(context.Background(), []string{"sales", "Go services"}, [][]float32{{0, 1}, {1, 0}}))

	results, err = index.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, api.queries, 1)
	assert.Equal(t, uint64(2), api.queries[0].GetLimit(), "k is capped at the stored count")

	require.Len(t, results, 2)
	assert.Equal(t, "Go services", results[0].Text)
	assert.Equal(t, 1, results[0].Position)
	assert.InDelta(t, 0.1, results[0].Distance, 1e-6)
	assert.InDelta(t, 0.75, results[1].Distance, 1e-6)
}

func TestQdrantIndex_Errors(t *testing.T) {
	api := &fakeQdrant{createErr: errors.New("unavailable")}
	index, err := newFakeQdrantFactory(api).NewIndex(context.Background())
	require.NoError(t, err)

	err = index.Add(context.Background(), []string{"a"}, [][]float32{{1}})
	assert.Error(t, err)
	assert.Empty(t, api.upserts)

	err = index.Add(context.Background(), []string{"a", "b"}, [][]float32{{1}})
	assert.Error(t, err)

	api = &fakeQdrant{deleteErr: errors.New("gone")}
	index, err = newFakeQdrantFactory(api).NewIndex(context.Background())
	require.NoError(t, err)
	require.NoError(t, index.Add(context.Background(), []string{"a"}, [][]float32{{1}}))
	assert.Error(t, index.Close(context.Background()))
}
