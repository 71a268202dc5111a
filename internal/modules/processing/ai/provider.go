package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	appcfg "github.com/mx-space/journal/internal/config"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
	"google.golang.org/genai"
)

const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-haiku-4-5-20251001"
	defaultGeminiModel    = "gemini-2.0-flash"
	defaultOpenRouterURL  = "https://openrouter.ai/api/v1"
	maxOutputTokens       = 1024
)

var (
	ErrNoProvider  = errors.New("no enabled AI provider configured")
	ErrEmptyAPIKey = errors.New("AI provider api key is empty")
)

type providerKind int

const (
	kindOpenAI providerKind = iota
	kindOpenAICompatible
	kindAnthropic
	kindOpenRouter
	kindGemini
)

func classifyProvider(raw string) providerKind {
	switch normalizeProviderType(raw) {
	case "openai-compatible", "openaicompatible":
		return kindOpenAICompatible
	case "anthropic", "claude":
		return kindAnthropic
	case "openrouter":
		return kindOpenRouter
	case "gemini", "google", "genai":
		return kindGemini
	default:
		return kindOpenAI
	}
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}

// ProviderCompleter calls the configured provider at temperature zero. SDK
// retries are disabled; errors surface to the caller as-is.
type ProviderCompleter struct {
	provider appcfg.AIProvider
	kind     providerKind
	model    string

	lm         jetapi.LanguageModel
	gemini     *genai.Client
	httpClient *http.Client
}

// NewProviderCompleter picks the provider named by cfg.AnalysisModel (or the
// first enabled one) and prepares its client.
func NewProviderCompleter(ctx context.Context, cfg appcfg.AIConfig) (*ProviderCompleter, error) {
	provider := selectAIProvider(cfg, cfg.AnalysisModel)
	if provider == nil {
		return nil, ErrNoProvider
	}
	return newProviderCompleter(ctx, *provider, http.DefaultClient)
}

func newProviderCompleter(ctx context.Context, provider appcfg.AIProvider, httpClient *http.Client) (*ProviderCompleter, error) {
	apiKey := strings.TrimSpace(provider.APIKey)
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	c := &ProviderCompleter{
		provider:   provider,
		kind:       classifyProvider(provider.Type),
		httpClient: httpClient,
	}
	c.model = resolveModelID(c.kind, provider.DefaultModel)
	endpoint := strings.TrimSpace(provider.Endpoint)

	switch c.kind {
	case kindOpenAICompatible:
		// Plain HTTP, no client to build.
	case kindGemini:
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		c.gemini = client
	case kindAnthropic:
		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		}
		if endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}
		client := anthropicclient.NewClient(opts...)
		c.lm = jetanthropic.NewLanguageModel(c.model, jetanthropic.WithClient(client))
	default:
		if c.kind == kindOpenRouter && endpoint == "" {
			endpoint = defaultOpenRouterURL
		}
		opts := []openaioption.RequestOption{
			openaioption.WithAPIKey(apiKey),
			openaioption.WithMaxRetries(0),
		}
		if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
			opts = append(opts, openaioption.WithBaseURL(normalized))
		}
		client := openaiclient.NewClient(opts...)
		c.lm = jetopenai.NewLanguageModel(c.model, jetopenai.WithClient(client))
	}
	return c, nil
}

func resolveModelID(kind providerKind, configured string) string {
	if m := strings.TrimSpace(configured); m != "" {
		return m
	}
	switch kind {
	case kindAnthropic:
		return defaultAnthropicModel
	case kindGemini:
		return defaultGeminiModel
	default:
		return defaultOpenAIModel
	}
}

// Model returns the model id every call is pinned to.
func (c *ProviderCompleter) Model() string { return c.model }

// ProviderID returns the id of the selected provider.
func (c *ProviderCompleter) ProviderID() string { return c.provider.ID }

func (c *ProviderCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	switch c.kind {
	case kindOpenAICompatible:
		return c.completeOpenAICompatible(ctx, prompt)
	case kindGemini:
		return c.completeGemini(ctx, prompt)
	default:
		resp, err := jetai.GenerateText(
			ctx,
			[]jetapi.Message{&jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)}},
			jetai.WithModel(c.lm),
			jetai.WithMaxOutputTokens(maxOutputTokens),
			jetai.WithTemperature(0),
		)
		if err != nil {
			return "", fmt.Errorf("%s completion: %w", c.provider.ID, err)
		}
		return extractTextFromAIResponse(resp), nil
	}
}

func (c *ProviderCompleter) completeGemini(ctx context.Context, prompt string) (string, error) {
	resp, err := c.gemini.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", c.provider.ID, err)
	}
	return resp.Text(), nil
}

func (c *ProviderCompleter) completeOpenAICompatible(ctx context.Context, prompt string) (string, error) {
	endpoint := normalizeOpenAICompatibleEndpoint(c.provider.Endpoint)
	body, err := json.Marshal(map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  maxOutputTokens,
		"temperature": 0,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.provider.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", c.provider.ID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("openai-compatible error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode openai-compatible response: %w", err)
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return "", fmt.Errorf("openai-compatible error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("openai-compatible response has no choices")
	}
	return result.Choices[0].Message.Content, nil
}

func extractTextFromAIResponse(resp *jetapi.Response) string {
	if resp == nil {
		return ""
	}
	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}
	return full.String()
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

func normalizeOpenAICompatibleEndpoint(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return "https://api.openai.com"
	}

	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimSuffix(strings.TrimRight(base, "/"), "/v1")
	}

	parsed.Path = strings.TrimSuffix(strings.TrimRight(parsed.Path, "/"), "/v1")
	return strings.TrimRight(parsed.String(), "/")
}

// selectAIProvider returns the enabled provider named by assignment, falling
// back to the first enabled provider. The assignment's model overrides the
// provider default.
func selectAIProvider(cfg appcfg.AIConfig, assignment *appcfg.AIModelAssignment) *appcfg.AIProvider {
	var providerID, overrideModel string
	if assignment != nil {
		providerID = strings.TrimSpace(assignment.ProviderID)
		overrideModel = strings.TrimSpace(assignment.Model)
	}

	pick := func(provider appcfg.AIProvider) *appcfg.AIProvider {
		selected := provider
		if overrideModel != "" {
			selected.DefaultModel = overrideModel
		}
		return &selected
	}

	if providerID != "" {
		for _, provider := range cfg.Providers {
			if provider.Enabled && strings.TrimSpace(provider.ID) == providerID {
				return pick(provider)
			}
		}
	}
	for _, provider := range cfg.Providers {
		if provider.Enabled {
			return pick(provider)
		}
	}
	return nil
}
