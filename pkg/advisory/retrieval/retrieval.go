package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"kisan-advisory-be/internal/entity"
	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/internal/repository/contract"
	"kisan-advisory-be/internal/repository/specification"
	"kisan-advisory-be/pkg/embedding"
	"kisan-advisory-be/pkg/errorsx"
	"kisan-advisory-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

const logModule = "retrieval"

var (
	// ErrNoEvidence means nothing in the crop's corpus cleared the similarity
	// threshold. It selects the MISSING branch; it is not a failure.
	ErrNoEvidence = errorsx.Wrap(errors.New("no evidence found"), errorsx.ReasonDataAbsent)

	// ErrEmbeddingSpaceMismatch means queries would be embedded in a space the
	// corpus was not built in. Results would be meaningless, so it is fatal.
	ErrEmbeddingSpaceMismatch = errorsx.Wrap(errors.New("embedding space mismatch"), errorsx.ReasonEmbeddingSpaceMismatch)
)

type Options struct {
	Threshold     float64
	QueryCacheTTL time.Duration
}

type Service struct {
	embedder embedding.EmbeddingProvider
	corpus   contract.CorpusRepository
	cache    *cache.Cache
	opts     Options
	logger   logger.ILogger
}

func NewService(embedder embedding.EmbeddingProvider, corpus contract.CorpusRepository, opts Options, log logger.ILogger) *Service {
	if opts.QueryCacheTTL <= 0 {
		opts.QueryCacheTTL = 30 * time.Minute
	}
	return &Service{
		embedder: embedder,
		corpus:   corpus,
		cache:    cache.New(opts.QueryCacheTTL, 2*opts.QueryCacheTTL),
		opts:     opts,
		logger:   log,
	}
}

// Retrieve returns passages for one atomic question, best first, or
// ErrNoEvidence. It never returns an empty slice with a nil error.
func (s *Service) Retrieve(ctx context.Context, crop, question string, k int) ([]store.RAGResult, error) {
	coll, err := s.collection(ctx, crop)
	if err != nil {
		return nil, err
	}
	if coll == nil {
		return nil, fmt.Errorf("crop %q has no corpus: %w", crop, ErrNoEvidence)
	}
	if err := s.checkSpace(coll); err != nil {
		return nil, err
	}

	vec, err := s.embed(ctx, question)
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("embed question: %w", err), errorsx.ReasonTransientUpstream)
	}
	if len(vec) != coll.Dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, corpus %s declares %d: %w",
			len(vec), coll.Crop, coll.Dimensions, ErrEmbeddingSpaceMismatch)
	}

	hits, err := s.corpus.SearchSimilarWithScore(ctx, coll.Id, vec, k, s.opts.Threshold)
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("search corpus: %w", err), errorsx.ReasonStoreUnavailable)
	}
	if len(hits) == 0 {
		return nil, ErrNoEvidence
	}

	results := make([]store.RAGResult, 0, len(hits))
	for _, h := range hits {
		if h == nil || h.Chunk == nil || strings.TrimSpace(h.Chunk.Content) == "" {
			continue
		}
		results = append(results, store.RAGResult{
			PassageText:     h.Chunk.Content,
			SourceID:        h.Chunk.SourceId,
			SimilarityScore: h.Similarity,
			Crop:            coll.Crop,
		})
	}
	if len(results) == 0 {
		return nil, ErrNoEvidence
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
	return results, nil
}

// HasCorpus decides between the retrieval-grounded and knowledge-only paths.
func (s *Service) HasCorpus(ctx context.Context, crop string) (bool, error) {
	coll, err := s.collection(ctx, crop)
	if err != nil {
		return false, err
	}
	return coll != nil && coll.ChunkCount > 0, nil
}

// Verify checks every indexed collection against the configured embedder.
func (s *Service) Verify(ctx context.Context) error {
	colls, err := s.corpus.FindCollections(ctx)
	if err != nil {
		return errorsx.Wrap(fmt.Errorf("list corpus collections: %w", err), errorsx.ReasonStoreUnavailable)
	}
	var bad []string
	for _, c := range colls {
		if err := s.checkSpace(c); err != nil {
			bad = append(bad, fmt.Sprintf("%s (%s/%d)", c.Crop, c.EmbeddingModel, c.Dimensions))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("collections %s do not match embedder %s/%d: %w",
			strings.Join(bad, ", "), s.embedder.Model(), s.embedder.Dimensions(), ErrEmbeddingSpaceMismatch)
	}
	s.logger.Info(logModule, "Corpus embedding space verified", map[string]interface{}{
		"collections": len(colls),
		"model":       s.embedder.Model(),
	})
	return nil
}

func (s *Service) checkSpace(c *entity.CorpusCollection) error {
	if !strings.EqualFold(c.EmbeddingModel, s.embedder.Model()) || c.Dimensions != s.embedder.Dimensions() {
		s.logger.Error(logModule, "Embedding space mismatch", map[string]interface{}{
			"crop":             c.Crop,
			"corpus_model":     c.EmbeddingModel,
			"corpus_dims":      c.Dimensions,
			"configured_model": s.embedder.Model(),
			"configured_dims":  s.embedder.Dimensions(),
		})
		return fmt.Errorf("corpus %s built with %s/%d: %w", c.Crop, c.EmbeddingModel, c.Dimensions, ErrEmbeddingSpaceMismatch)
	}
	return nil
}

func (s *Service) collection(ctx context.Context, crop string) (*entity.CorpusCollection, error) {
	key := "coll:" + strings.ToLower(strings.TrimSpace(crop))
	if v, ok := s.cache.Get(key); ok {
		return v.(*entity.CorpusCollection), nil
	}
	coll, err := s.corpus.FindCollection(ctx, specification.ByCrop{Crop: crop})
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("find corpus for %s: %w", crop, err), errorsx.ReasonStoreUnavailable)
	}
	if coll != nil {
		s.cache.Set(key, coll, cache.DefaultExpiration)
	}
	return coll, nil
}

func (s *Service) embed(ctx context.Context, question string) ([]float32, error) {
	key := "q:" + s.embedder.Model() + ":" + strings.ToLower(strings.TrimSpace(question))
	if v, ok := s.cache.Get(key); ok {
		return v.([]float32), nil
	}
	res, err := s.embedder.Generate(ctx, question, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	vec := res.Embedding.Values
	s.cache.Set(key, vec, cache.DefaultExpiration)
	return vec, nil
}
