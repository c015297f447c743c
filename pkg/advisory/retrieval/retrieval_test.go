package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisan-advisory-be/internal/entity"
	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/internal/repository/contract"
	"kisan-advisory-be/internal/repository/specification"
	"kisan-advisory-be/pkg/embedding"
	"kisan-advisory-be/pkg/errorsx"
)

type fakeEmbedder struct {
	model string
	dims  int
	calls int
}

func (f *fakeEmbedder) Generate(_ context.Context, _ string, _ string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: make([]float32, f.dims)}}, nil
}
func (f *fakeEmbedder) Model() string   { return f.model }
func (f *fakeEmbedder) Dimensions() int { return f.dims }

type fakeCorpus struct {
	collections map[string]*entity.CorpusCollection
	hits        []*contract.ScoredCorpusChunk
	searched    int
}

func (f *fakeCorpus) FindCollection(_ context.Context, specs ...specification.Specification) (*entity.CorpusCollection, error) {
	for _, s := range specs {
		if bc, ok := s.(specification.ByCrop); ok {
			return f.collections[bc.Crop], nil
		}
	}
	return nil, nil
}

func (f *fakeCorpus) FindCollections(_ context.Context, _ ...specification.Specification) ([]*entity.CorpusCollection, error) {
	var out []*entity.CorpusCollection
	for _, c := range f.collections {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCorpus) SearchSimilarWithScore(_ context.Context, _ uuid.UUID, _ []float32, _ int, _ float64) ([]*contract.ScoredCorpusChunk, error) {
	f.searched++
	return f.hits, nil
}

func chunk(id, text string, score float64) *contract.ScoredCorpusChunk {
	return &contract.ScoredCorpusChunk{Chunk: &entity.CorpusChunk{SourceId: id, Content: text}, Similarity: score}
}

func newFixture(model string) (*Service, *fakeCorpus, *fakeEmbedder) {
	corpus := &fakeCorpus{collections: map[string]*entity.CorpusCollection{
		"Guava": {Id: uuid.New(), Crop: "Guava", EmbeddingModel: "text-embedding-004", Dimensions: 768, ChunkCount: 10},
	}}
	emb := &fakeEmbedder{model: model, dims: 768}
	return NewService(emb, corpus, Options{Threshold: 0.5}, logger.NewNopLogger()), corpus, emb
}

func TestRetrieve_SortsDescending(t *testing.T) {
	svc, corpus, _ := newFixture("text-embedding-004")
	corpus.hits = []*contract.ScoredCorpusChunk{chunk("b", "second", 0.6), chunk("a", "first", 0.9), chunk("c", "third", 0.55)}

	res, err := svc.Retrieve(context.Background(), "Guava", "wilt", 5)

	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{res[0].SourceID, res[1].SourceID, res[2].SourceID})
	assert.Equal(t, "Guava", res[0].Crop)
}

func TestRetrieve_NoHitsIsExplicit(t *testing.T) {
	svc, _, _ := newFixture("text-embedding-004")

	res, err := svc.Retrieve(context.Background(), "Guava", "wilt", 5)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoEvidence)
	assert.True(t, errorsx.HasReason(err, errorsx.ReasonDataAbsent))

	_, err = svc.Retrieve(context.Background(), "Banana", "wilt", 5)
	assert.ErrorIs(t, err, ErrNoEvidence)
}

func TestRetrieve_EmbeddingSpaceMismatchFailsLoudly(t *testing.T) {
	svc, corpus, emb := newFixture("nomic-embed-text")
	corpus.hits = []*contract.ScoredCorpusChunk{chunk("a", "first", 0.9)}

	_, err := svc.Retrieve(context.Background(), "Guava", "wilt", 5)

	assert.ErrorIs(t, err, ErrEmbeddingSpaceMismatch)
	assert.False(t, errors.Is(err, ErrNoEvidence))
	assert.Zero(t, corpus.searched)
	assert.Zero(t, emb.calls)

	assert.ErrorIs(t, svc.Verify(context.Background()), ErrEmbeddingSpaceMismatch)
}

func TestRetrieve_CachesQueryEmbeddings(t *testing.T) {
	svc, corpus, emb := newFixture("text-embedding-004")
	corpus.hits = []*contract.ScoredCorpusChunk{chunk("a", "first", 0.9)}

	for i := 0; i < 3; i++ {
		_, err := svc.Retrieve(context.Background(), "Guava", "  Wilt ", 5)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, emb.calls)
	assert.Equal(t, 3, corpus.searched)
}

func TestHasCorpusAndVerify(t *testing.T) {
	svc, _, _ := newFixture("text-embedding-004")

	ok, err := svc.HasCorpus(context.Background(), "Guava")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasCorpus(context.Background(), "Wheat")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, svc.Verify(context.Background()))
}
