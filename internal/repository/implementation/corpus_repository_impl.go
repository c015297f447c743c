package implementation

import (
	"context"
	"errors"

	"kisan-advisory-be/internal/entity"
	"kisan-advisory-be/internal/mapper"
	"kisan-advisory-be/internal/model"
	"kisan-advisory-be/internal/repository/contract"
	"kisan-advisory-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CorpusRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CorpusMapper
}

func NewCorpusRepository(db *gorm.DB) contract.CorpusRepository {
	return &CorpusRepositoryImpl{
		db:     db,
		mapper: mapper.NewCorpusMapper(),
	}
}

func (r *CorpusRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CorpusRepositoryImpl) FindCollection(ctx context.Context, specs ...specification.Specification) (*entity.CorpusCollection, error) {
	var m model.CorpusCollection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CollectionToEntity(&m), nil
}

func (r *CorpusRepositoryImpl) FindCollections(ctx context.Context, specs ...specification.Specification) ([]*entity.CorpusCollection, error) {
	var models []*model.CorpusCollection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.CollectionsToEntities(models), nil
}

// SearchSimilarWithScore ranks by cosine similarity.
// Cosine distance in pgvector is: 1 - cosine_similarity
func (r *CorpusRepositoryImpl) SearchSimilarWithScore(ctx context.Context, collectionId uuid.UUID, embedding []float32, limit int, threshold float64) ([]*contract.ScoredCorpusChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.CorpusChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("corpus_chunks").
		Select("corpus_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("collection_id = ?", collectionId).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredCorpusChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredCorpusChunk{
			Chunk:      r.mapper.ChunkToEntity(&res.CorpusChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
