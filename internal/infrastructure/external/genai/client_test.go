package genai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL, Model: "test-model", APIKey: "test-key"}, testLogger())
}

func TestGenerateTopics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "conjuntos")
		assert.Contains(t, req.Contents[0].Parts[0].Text, "LOGICA")

		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content content `json:"content"`
			}{
				{Content: content{Parts: []part{{Text: "1. Conjuntos\n2. Subconjuntos\n"}}}},
			},
		})
	})

	text, err := client.GenerateTopics(context.Background(), "LOGICA", "conjuntos")
	require.NoError(t, err)
	assert.Equal(t, "1. Conjuntos\n2. Subconjuntos", text)
}

func TestGenerateTopicsWithoutKey(t *testing.T) {
	client := New(Config{BaseURL: "http://unused", Model: "m"}, testLogger())

	_, err := client.GenerateTopics(context.Background(), "LOGICA", "conjuntos")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGenerateTopicsRetriesServerErrors(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content content `json:"content"`
			}{
				{Content: content{Parts: []part{{Text: "topics"}}}},
			},
		})
	})

	text, err := client.GenerateTopics(context.Background(), "LOGICA", "conjuntos")
	require.NoError(t, err)
	assert.Equal(t, "topics", text)
	assert.Equal(t, 3, calls)
}

func TestGenerateTopicsDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.GenerateTopics(context.Background(), "LOGICA", "conjuntos")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, calls)
}

func TestGenerateTopicsEmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{})
	})

	_, err := client.GenerateTopics(context.Background(), "LOGICA", "conjuntos")
	assert.ErrorIs(t, err, ErrUnavailable)
}
