package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	appcfg "github.com/mx-space/journal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	data    map[string][]byte
	readErr error
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (m *memoryCache) GetBytes(_ context.Context, key string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.data[key], nil
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.data[key] = value.([]byte)
	return nil
}

// countingEmbedder maps each text to a vector derived from its length.
type countingEmbedder struct {
	seen [][]string
}

func (e *countingEmbedder) Model() string { return "test-embed" }

func (e *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.seen = append(e.seen, append([]string(nil), texts...))
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1, -0.5}
	}
	return out, nil
}

func TestCachedEmbedderReusesVectors(t *testing.T) {
	inner := &countingEmbedder{}
	cache := newMemoryCache()
	e := NewCachedEmbedder(inner, cache, time.Hour, nil)

	first, err := e.Embed(context.Background(), []string{"a", "bb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1, -0.5}, {2, 1, -0.5}}, first)

	second, err := e.Embed(context.Background(), []string{"bb", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{2, 1, -0.5}, {3, 1, -0.5}}, second)

	require.Len(t, inner.seen, 2)
	assert.Equal(t, []string{"ccc"}, inner.seen[1])
	assert.Len(t, cache.data, 3)
	assert.Equal(t, "test-embed", e.Model())
}

func TestCachedEmbedderFallsThroughOnCacheError(t *testing.T) {
	inner := &countingEmbedder{}
	cache := newMemoryCache()
	cache.readErr = errors.New("redis down")
	e := NewCachedEmbedder(inner, cache, time.Hour, nil)

	out, err := e.Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1, -0.5}}, out)
	assert.Len(t, inner.seen, 1)
}

func TestNewEmbedderRejectsAnthropic(t *testing.T) {
	_, err := NewEmbedder(context.Background(), appcfg.AIConfig{
		Providers: []appcfg.AIProvider{{ID: "claude", Type: "anthropic", APIKey: "k", Enabled: true}},
	})
	assert.ErrorIs(t, err, ErrEmbeddingsUnsupported)

	e, err := NewEmbedder(context.Background(), appcfg.AIConfig{
		Providers: []appcfg.AIProvider{{ID: "oa", Type: "openai", APIKey: "k", Enabled: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, defaultOpenAIEmbeddingModel, e.Model())
}
