package contract

import (
	"context"

	"kisan-advisory-be/internal/entity"
	"kisan-advisory-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredCorpusChunk wraps CorpusChunk with its similarity score
type ScoredCorpusChunk struct {
	Chunk      *entity.CorpusChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

// CorpusRepository is read-only; the corpus is built offline.
type CorpusRepository interface {
	FindCollection(ctx context.Context, specs ...specification.Specification) (*entity.CorpusCollection, error)
	FindCollections(ctx context.Context, specs ...specification.Specification) ([]*entity.CorpusCollection, error)
	// SearchSimilarWithScore returns chunks of one collection with similarity >= threshold, best first
	SearchSimilarWithScore(ctx context.Context, collectionId uuid.UUID, embedding []float32, limit int, threshold float64) ([]*ScoredCorpusChunk, error)
}
