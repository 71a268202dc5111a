package ai

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	appcfg "github.com/mx-space/journal/internal/config"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultOpenAIEmbeddingModel = "text-embedding-3-small"
	defaultGeminiEmbeddingModel = "gemini-embedding-001"
	embeddingCachePrefix        = "journal:embedding:"
)

var ErrEmbeddingsUnsupported = errors.New("provider does not offer embeddings")

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// NewEmbedder builds the embedder for cfg.EmbeddingModel.
func NewEmbedder(ctx context.Context, cfg appcfg.AIConfig) (Embedder, error) {
	provider := selectAIProvider(cfg, cfg.EmbeddingModel)
	if provider == nil {
		return nil, ErrNoProvider
	}
	apiKey := strings.TrimSpace(provider.APIKey)
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	switch kind := classifyProvider(provider.Type); kind {
	case kindAnthropic:
		return nil, fmt.Errorf("%s: %w", provider.ID, ErrEmbeddingsUnsupported)
	case kindGemini:
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		model := strings.TrimSpace(provider.DefaultModel)
		if model == "" {
			model = defaultGeminiEmbeddingModel
		}
		return &GeminiEmbedder{client: client, model: model}, nil
	default:
		endpoint := strings.TrimSpace(provider.Endpoint)
		if kind == kindOpenRouter && endpoint == "" {
			endpoint = defaultOpenRouterURL
		}
		opts := []openaioption.RequestOption{
			openaioption.WithAPIKey(apiKey),
			openaioption.WithMaxRetries(0),
		}
		if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
			opts = append(opts, openaioption.WithBaseURL(normalized))
		}
		model := strings.TrimSpace(provider.DefaultModel)
		if model == "" {
			model = defaultOpenAIEmbeddingModel
		}
		return NewOpenAIEmbedder(openaiclient.NewClient(opts...), model), nil
	}
}

// OpenAIEmbedder calls the OpenAI embeddings endpoint (or a compatible one).
type OpenAIEmbedder struct {
	client openaiclient.Client
	model  string
}

func NewOpenAIEmbedder(client openaiclient.Client, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: model}
}

func (e *OpenAIEmbedder) Model() string { return e.model }

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.Embeddings.New(ctx, openaiclient.EmbeddingNewParams{
		Input: openaiclient.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openaiclient.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, item := range resp.Data {
		idx := int(item.Index)
		if idx < 0 || idx >= len(out) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", idx)
		}
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		out[idx] = vec
	}
	return out, nil
}

// GeminiEmbedder calls the Gemini embedding API through genai.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

func (e *GeminiEmbedder) Model() string { return e.model }

func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_DOCUMENT",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini embeddings: got %d vectors for %d inputs", len(result.Embeddings), len(texts))
	}

	out := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}

// VectorCache is the subset of the redis client used to memoize embeddings.
type VectorCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedEmbedder memoizes vectors keyed by model and text. Cache failures are
// logged and fall through to the wrapped embedder.
type CachedEmbedder struct {
	next  Embedder
	cache VectorCache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedEmbedder(next Embedder, cache VectorCache, ttl time.Duration, log *zap.Logger) *CachedEmbedder {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedEmbedder{next: next, cache: cache, ttl: ttl, log: log}
}

func (e *CachedEmbedder) Model() string { return e.next.Model() }

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []int
	for i, text := range texts {
		raw, err := e.cache.GetBytes(ctx, e.key(text))
		if err != nil {
			e.log.Warn("embedding cache read failed", zap.Error(err))
		}
		if vec, ok := decodeVector(raw); ok {
			out[i] = vec
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	pending := make([]string, len(missing))
	for j, i := range missing {
		pending[j] = texts[i]
	}
	fresh, err := e.next.Embed(ctx, pending)
	if err != nil {
		return nil, err
	}
	for j, i := range missing {
		out[i] = fresh[j]
		if err := e.cache.Set(ctx, e.key(texts[i]), encodeVector(fresh[j]), e.ttl); err != nil {
			e.log.Warn("embedding cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

func (e *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(e.next.Model() + "\x00" + text))
	return embeddingCachePrefix + hex.EncodeToString(sum[:])
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, bool) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, false
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return vec, true
}
