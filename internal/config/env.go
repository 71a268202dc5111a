package config

import (
	"os"
	"strings"
)

// Environment variables that take precedence over the YAML file. Secrets are
// usually injected this way rather than written to config.yml.
const (
	EnvDatabaseDSN    = "JOURNAL_DATABASE_DSN"
	EnvRedisURL       = "JOURNAL_REDIS_URL"
	EnvJWTSecret      = "JOURNAL_JWT_SECRET"
	EnvLogDir         = "JOURNAL_LOG_DIR"
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvAnthropicKey   = "ANTHROPIC_API_KEY"
	EnvGeminiKey      = "GEMINI_API_KEY"
	EnvOpenRouterKey  = "OPENROUTER_API_KEY"
	EnvExportAccessID = "JOURNAL_EXPORT_ACCESS_KEY_ID"
	EnvExportSecret   = "JOURNAL_EXPORT_SECRET_ACCESS_KEY"
)

func applyEnvOverrides(cfg *AppConfig) {
	if v := envValue(EnvDatabaseDSN); v != "" {
		cfg.Database.DSN = v
	}
	if v := envValue(EnvRedisURL); v != "" {
		cfg.Redis.URL = v
	}
	if v := envValue(EnvJWTSecret); v != "" {
		cfg.Identity.HMACSecret = v
	}
	if v := envValue(EnvLogDir); v != "" {
		cfg.Paths.Logs = v
	}
	if v := envValue(EnvExportAccessID); v != "" {
		cfg.Export.AccessKeyID = v
	}
	if v := envValue(EnvExportSecret); v != "" {
		cfg.Export.SecretAccessKey = v
	}

	keys := []struct{ kind, key string }{
		{"openai", envValue(EnvOpenAIKey)},
		{"anthropic", envValue(EnvAnthropicKey)},
		{"gemini", envValue(EnvGeminiKey)},
		{"openrouter", envValue(EnvOpenRouterKey)},
	}
	for _, entry := range keys {
		kind, key := entry.kind, entry.key
		if key == "" {
			continue
		}
		found := false
		for i := range cfg.AI.Providers {
			if strings.EqualFold(strings.TrimSpace(cfg.AI.Providers[i].Type), kind) {
				found = true
				if strings.TrimSpace(cfg.AI.Providers[i].APIKey) == "" {
					cfg.AI.Providers[i].APIKey = key
				}
			}
		}
		if !found {
			cfg.AI.Providers = append(cfg.AI.Providers, AIProvider{
				ID:      kind,
				Name:    kind,
				Type:    kind,
				APIKey:  key,
				Enabled: true,
			})
		}
	}
}

func envValue(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}
