package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisan-advisory-be/pkg/llm"
)

func TestChat_BuildsRequestAndJoinsParts(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"नमस्ते "},{"text":"किसान"}]}}]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("k", "test-model")
	p.baseURL = srv.URL

	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "photo", Media: []llm.Media{{MimeType: "image/jpeg", URI: "gs://b/1.jpg"}}},
		{Role: "assistant", Content: "ok"},
	}, llm.WithJSON())

	require.NoError(t, err)
	assert.Equal(t, "नमस्ते किसान", out)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be brief", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 2)
	assert.Equal(t, roleUser, got.Contents[0].Role)
	require.Len(t, got.Contents[0].Parts, 2)
	assert.Equal(t, "gs://b/1.jpg", got.Contents[0].Parts[1].FileData.FileURI)
	assert.Equal(t, roleModel, got.Contents[1].Role)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
}

func TestChat_StatusErrorIsTransientOn5xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewGeminiProvider("k", "m")
	p.baseURL = srv.URL

	_, err := p.Generate(context.Background(), "hi")

	require.Error(t, err)
	assert.True(t, llm.IsTransient(err))
}
