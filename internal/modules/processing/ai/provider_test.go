package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appcfg "github.com/mx-space/journal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompatibleCompletion(t *testing.T) {
	var got struct {
		Model       string              `json:"model"`
		Messages    []map[string]string `json:"messages"`
		Temperature float64             `json:"temperature"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-local", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` + "hello" + `"}}]}`))
	}))
	defer srv.Close()

	c, err := newProviderCompleter(context.Background(), appcfg.AIProvider{
		ID:           "local",
		Type:         "OpenAI-Compatible",
		APIKey:       "sk-local",
		Endpoint:     srv.URL + "/v1/",
		DefaultModel: "llama3",
	}, srv.Client())
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, "llama3", got.Model)
	assert.Zero(t, got.Temperature)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "prompt text", got.Messages[0]["content"])
}

func TestOpenAICompatibleErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := newProviderCompleter(context.Background(), appcfg.AIProvider{
		ID:       "local",
		Type:     "openai_compatible",
		APIKey:   "k",
		Endpoint: srv.URL,
	}, srv.Client())
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNewProviderCompleterSelection(t *testing.T) {
	_, err := NewProviderCompleter(context.Background(), appcfg.AIConfig{})
	assert.ErrorIs(t, err, ErrNoProvider)

	_, err = NewProviderCompleter(context.Background(), appcfg.AIConfig{
		Providers: []appcfg.AIProvider{{ID: "a", Type: "openai", Enabled: true}},
	})
	assert.ErrorIs(t, err, ErrEmptyAPIKey)

	c, err := NewProviderCompleter(context.Background(), appcfg.AIConfig{
		Providers: []appcfg.AIProvider{
			{ID: "off", Type: "openai", APIKey: "k", Enabled: false},
			{ID: "claude", Type: "Anthropic", APIKey: "k", Enabled: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "claude", c.ProviderID())
	assert.Equal(t, defaultAnthropicModel, c.Model())

	c, err = NewProviderCompleter(context.Background(), appcfg.AIConfig{
		Providers: []appcfg.AIProvider{
			{ID: "first", Type: "openai", APIKey: "k", Enabled: true},
			{ID: "router", Type: "OpenRouter", APIKey: "k", Enabled: true},
		},
		AnalysisModel: &appcfg.AIModelAssignment{ProviderID: "router", Model: "openai/gpt-4o-mini"},
	})
	require.NoError(t, err)
	assert.Equal(t, "router", c.ProviderID())
	assert.Equal(t, "openai/gpt-4o-mini", c.Model())
}

func TestDefaultModelIsGPT4oMini(t *testing.T) {
	assert.Equal(t, "gpt-4o-mini", resolveModelID(kindOpenAI, ""))
	assert.Equal(t, "gpt-4o-mini", resolveModelID(kindOpenRouter, " "))
	assert.Equal(t, "custom", resolveModelID(kindGemini, "custom"))
}

func TestNormalizeEndpoints(t *testing.T) {
	assert.Equal(t, "", normalizeOpenAIBaseURL(""))
	assert.Equal(t, "https://api.example.com/v1", normalizeOpenAIBaseURL("https://api.example.com"))
	assert.Equal(t, "https://api.example.com/v1", normalizeOpenAIBaseURL("https://api.example.com/v1/"))
	assert.Equal(t, "https://openrouter.ai/api/v1", normalizeOpenAIBaseURL(defaultOpenRouterURL))

	assert.Equal(t, "https://api.openai.com", normalizeOpenAICompatibleEndpoint(""))
	assert.Equal(t, "http://localhost:11434", normalizeOpenAICompatibleEndpoint("http://localhost:11434/v1/"))
}
