package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.WriteHeader(http.StatusOK)
		case "/api/embed":
			var req struct {
				Model string   `json:"model"`
				Input []string `json:"input"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			embeddings := make([][]float32, len(req.Input))
			for i := range req.Input {
				embeddings[i] = make([]float32, dims)
				embeddings[i][i%dims] = 1
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"model": req.Model, "embeddings": embeddings}) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.NoError(t, svc.Close())
}

func TestNewEmbeddingService_InvalidURL(t *testing.T) {
	_, err := NewEmbeddingService(Config{BaseURL: "://bad"})
	assert.Error(t, err)
}

func TestEmbedBatch(t *testing.T) {
	server := newTestServer(t, 4)
	defer server.Close()

	svc, err := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 4})
	require.NoError(t, err)

	out, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []float32{0, 1, 0, 0}, out[1])

	single, err := svc.Embed(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, single, 4)

	empty, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEmbedBatch_DimensionMismatch(t *testing.T) {
	server := newTestServer(t, 3)
	defer server.Close()

	svc, err := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 4})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "a")
	assert.ErrorContains(t, err, "dimensions")
}

func TestPing(t *testing.T) {
	server := newTestServer(t, 4)
	defer server.Close()

	svc, err := NewEmbeddingService(Config{BaseURL: server.URL})
	require.NoError(t, err)
	assert.NoError(t, svc.Ping(context.Background()))

	server.Close()
	assert.Error(t, svc.Ping(context.Background()))
}
