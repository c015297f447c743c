package mapper

import (
	"time"

	"kisan-advisory-be/internal/entity"
	"kisan-advisory-be/internal/model"
)

type CorpusMapper struct{}

func NewCorpusMapper() *CorpusMapper {
	return &CorpusMapper{}
}

func (m *CorpusMapper) CollectionToEntity(c *model.CorpusCollection) *entity.CorpusCollection {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.CorpusCollection{
		Id:             c.Id,
		Crop:           c.Crop,
		EmbeddingModel: c.EmbeddingModel,
		Dimensions:     c.Dimensions,
		Source:         c.Source,
		ChunkCount:     c.ChunkCount,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *CorpusMapper) ChunkToEntity(c *model.CorpusChunk) *entity.CorpusChunk {
	if c == nil {
		return nil
	}
	return &entity.CorpusChunk{
		Id:             c.Id,
		CollectionId:   c.CollectionId,
		SourceId:       c.SourceId,
		Content:        c.Content,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		ChunkIndex:     c.ChunkIndex,
		CreatedAt:      c.CreatedAt,
	}
}

func (m *CorpusMapper) CollectionsToEntities(models []*model.CorpusCollection) []*entity.CorpusCollection {
	entities := make([]*entity.CorpusCollection, len(models))
	for i, c := range models {
		entities[i] = m.CollectionToEntity(c)
	}
	return entities
}
