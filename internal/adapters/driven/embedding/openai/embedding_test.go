package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/models":
			json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": []any{}}) //nolint:errcheck
		case "/embeddings":
			var req struct {
				Input []string `json:"input"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			// Reverse order to exercise index sorting.
			data := make([]map[string]any, 0, len(req.Input))
			for i := len(req.Input) - 1; i >= 0; i-- {
				data = append(data, map[string]any{
					"object":    "embedding",
					"index":     i,
					"embedding": []float32{float32(i), 1, 0},
				})
			}
			json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data}) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}

func TestNewEmbeddingService_Dimensions(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, 1536, svc.Dimensions())
	assert.Equal(t, DefaultModel, svc.ModelName())

	svc, err = NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large", Dimensions: 256})
	require.NoError(t, err)
	assert.Equal(t, 256, svc.Dimensions())

	_, err = NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-ada-002", Dimensions: 256})
	assert.Error(t, err)

	_, err = NewEmbeddingService(Config{APIKey: "k", Model: "custom-model"})
	assert.Error(t, err)

	svc, err = NewEmbeddingService(Config{APIKey: "k", Model: "custom-model", Dimensions: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, svc.Dimensions())
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: server.URL, Model: "custom-model", Dimensions: 3})
	require.NoError(t, err)

	out, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []float32{0, 1, 0}, out[0])
	assert.Equal(t, []float32{2, 1, 0}, out[2])

	single, err := svc.Embed(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, single)
}

func TestPing(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
