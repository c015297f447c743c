package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type CorpusCollection struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Crop           string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	EmbeddingModel string    `gorm:"type:varchar(100);not null"`
	Dimensions     int       `gorm:"not null"`
	Source         string    `gorm:"type:text"`
	ChunkCount     int       `gorm:"default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (CorpusCollection) TableName() string {
	return "corpus_collections"
}

type CorpusChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CollectionId   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceId       string          `gorm:"type:varchar(255);not null"`
	Content        string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 / nomic-embed-text
	ChunkIndex     int             `gorm:"default:0"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (CorpusChunk) TableName() string {
	return "corpus_chunks"
}
