package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/assistant"
)

func fakeGemini(t *testing.T, reply string, seen *map[string]any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.Contains(r.URL.Path, ":generateContent"), r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		if seen != nil {
			_ = json.Unmarshal(body, seen)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": reply}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
}

func newTestClient(t *testing.T, url string) *Client {
	c, err := newClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: url},
	}, "gemini-test", zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestReplySendsHistoryAndSystemPrompt(t *testing.T) {
	var seen map[string]any
	srv := fakeGemini(t, "Olá! Sou a Carol.", &seen)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	history := []assistant.Turn{
		{Role: assistant.RoleUser, Content: "oi"},
		{Role: assistant.RoleAssistant, Content: "olá"},
	}

	text, err := c.Reply(context.Background(), history, "quero agendar", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "Olá! Sou a Carol.", text)

	contents, _ := seen["contents"].([]any)
	assert.Len(t, contents, 3)
	assert.Contains(t, seen, "systemInstruction")
}

func TestAnalyzeParsesJSON(t *testing.T) {
	srv := fakeGemini(t, `{"response":"Tenho horário amanhã","intent":"booking","urgency":"normal","needs_human":false}`, nil)
	defer srv.Close()

	a, err := newTestClient(t, srv.URL).Analyze(context.Background(), nil, "tem horário?", "")
	require.NoError(t, err)
	assert.Equal(t, "booking", a.Intent)
	assert.Equal(t, "Tenho horário amanhã", a.Response)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "", zap.NewNop())
	assert.Error(t, err)
}

func TestEmbedKeepsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.Contains(r.URL.Path, "text-embedding-004:batchEmbedContents"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": []map[string]any{
				{"values": []float32{1, 0}},
				{"values": []float32{0, 1}},
			},
		})
	}))
	defer srv.Close()

	vecs, err := newTestClient(t, srv.URL).Embed(context.Background(), []string{"clareamento", "aparelho"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"embeddings": []map[string]any{}})
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Embed(context.Background(), []string{"a"})
	assert.Error(t, err)
}
