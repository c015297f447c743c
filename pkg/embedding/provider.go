package embedding

import (
	"context"
	"fmt"
	"strings"
)

// Task types understood by the Gemini embedder. Other providers ignore them.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

// EmbeddingProvider defines the interface for generating text embeddings.
// Model and Dimensions describe the embedding space so that queries can be
// checked against the space the corpus was indexed in.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
	Model() string
	Dimensions() int
}

// NewProvider builds the configured embedder.
func NewProvider(provider, model, ollamaBaseURL, geminiAPIKey string) (EmbeddingProvider, error) {
	switch strings.ToLower(provider) {
	case "gemini", "":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini embedding provider requires GOOGLE_GEMINI_API_KEY")
		}
		return NewGeminiProvider(geminiAPIKey, model), nil
	case "ollama":
		return NewOllamaProvider(ollamaBaseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
