package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/performpulse/internal/domain"
)

var testOutput = []domain.SchemaField{
	{Name: "skillSummary", Type: domain.SchemaTypeString, Description: "summary"},
	{Name: "suggestedProjects", Type: domain.SchemaTypeStringArray, Description: "projects"},
}

const answer = `{"skillSummary":"Strong mentor","suggestedProjects":["Onboarding"]}`

func chatCompletion(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]interface{}{"role": "assistant", "content": content},
		}},
	}
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion("  " + answer + "\n"))
	}))
	defer srv.Close()

	g, err := NewOpenAIGenerator("test-key", "", srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "openai", g.Name())

	text, err := g.Generate(context.Background(), domain.GenerationRequest{
		Prompt:      "Suggest projects",
		Model:       "gemini-2.0-flash",
		Temperature: 0.4,
		Output:      testOutput,
	})
	require.NoError(t, err)
	assert.Equal(t, answer, text)

	assert.Equal(t, openAIDefaultModel, body["model"])
	format, _ := body["response_format"].(map[string]interface{})
	assert.Equal(t, "json_object", format["type"])

	messages, _ := body["messages"].([]interface{})
	require.Len(t, messages, 2)
	system, _ := messages[0].(map[string]interface{})
	assert.Contains(t, system["content"], "suggestedProjects (array of strings)")
}

func TestOpenAIGenerator_Failures(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := NewOpenAIGenerator("", "", "")
		assert.Error(t, err)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
		}))
		defer srv.Close()

		g, err := NewOpenAIGenerator("test-key", "gpt-4o-mini", srv.URL+"/")
		require.NoError(t, err)
		_, err = g.Generate(context.Background(), domain.GenerationRequest{Prompt: "x"})
		assert.True(t, domain.IsTransport(err))
	})

	t.Run("empty content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(chatCompletion(""))
		}))
		defer srv.Close()

		g, err := NewOpenAIGenerator("test-key", "gpt-4o-mini", srv.URL+"/")
		require.NoError(t, err)
		_, err = g.Generate(context.Background(), domain.GenerationRequest{Prompt: "x"})
		assert.True(t, domain.IsTransport(err))
	})
}

func TestGeminiGenerator_Generate(t *testing.T) {
	var body map[string]interface{}
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]interface{}{{"text": answer}},
				},
			}},
		})
	}))
	defer srv.Close()

	g, err := NewGeminiGenerator(context.Background(), "test-key", "", srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "gemini", g.Name())

	text, err := g.Generate(context.Background(), domain.GenerationRequest{
		Prompt:      "Suggest projects",
		Temperature: 0.4,
		Output:      testOutput,
	})
	require.NoError(t, err)
	assert.Equal(t, answer, text)

	assert.Contains(t, path, geminiDefaultModel+":generateContent")
	cfg, _ := body["generationConfig"].(map[string]interface{})
	assert.Equal(t, "application/json", cfg["responseMimeType"])
}

func TestGeminiGenerator_MissingKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "", "")
	assert.Error(t, err)
}

func TestGeminiSchema(t *testing.T) {
	schema := geminiSchema(testOutput)

	assert.Equal(t, []string{"skillSummary", "suggestedProjects"}, schema.Required)
	assert.Equal(t, []string{"skillSummary", "suggestedProjects"}, schema.PropertyOrdering)
	require.NotNil(t, schema.Properties["suggestedProjects"].Items)
	assert.Equal(t, "ARRAY", string(schema.Properties["suggestedProjects"].Type))
	assert.Equal(t, "STRING", string(schema.Properties["skillSummary"].Type))
}
