package entity

import (
	"time"

	"github.com/google/uuid"
)

// CorpusCollection is one crop's indexed knowledge base. EmbeddingModel and
// Dimensions declare the embedding space the chunks were built in.
type CorpusCollection struct {
	Id             uuid.UUID
	Crop           string
	EmbeddingModel string
	Dimensions     int
	Source         string
	ChunkCount     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

type CorpusChunk struct {
	Id             uuid.UUID
	CollectionId   uuid.UUID
	SourceId       string
	Content        string
	EmbeddingValue []float32
	ChunkIndex     int
	CreatedAt      time.Time
}
