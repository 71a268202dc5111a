package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at configPath, applies it over the defaults and
// validates the result. Environment overrides are applied last.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML content into an AppConfig.
func Parse(content []byte) (*AppConfig, error) {
	cfg := defaultAppConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	raw := rawAppConfig{}
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}

	applyRawAppConfig(&cfg, raw)
	applyEnvOverrides(&cfg)
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Driver:    defaultDBDriver,
			Host:      defaultDBHost,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Redis: RedisRuntimeConfig{
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		AI: AIConfig{
			Timeout:          defaultAITimeout,
			MaxInFlight:      defaultAIMaxInFlight,
			BackfillInterval: defaultAIBackfillInterval,
			RateLimit: RateLimitConfig{
				Requests: defaultRateRequests,
				Window:   defaultRateWindow,
			},
		},
		Export: ExportConfig{
			Prefix: defaultExportPrefix,
		},
		Telemetry: TelemetryConfig{
			Exporter:    "none",
			ServiceName: defaultServiceName,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw)
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}
	if len(raw.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = raw.AllowedOrigins
	}
	if len(raw.CORSAllowedOrigins) > 0 {
		cfg.AllowedOrigins = raw.CORSAllowedOrigins
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(raw.TZ); v != "" {
		cfg.Timezone = v
	}

	cfg.Identity = raw.Identity
	// jwt_secret is the pre-identity-section spelling of the HMAC secret.
	if cfg.Identity.HMACSecret == "" {
		cfg.Identity.HMACSecret = raw.JWTSecret
	}

	cfg.AI = applyRawAIConfig(cfg.AI, raw.AI)

	if v := raw.Export; v != (ExportConfig{}) {
		prefix := cfg.Export.Prefix
		cfg.Export = v
		if strings.TrimSpace(cfg.Export.Prefix) == "" {
			cfg.Export.Prefix = prefix
		}
	}

	if v := strings.TrimSpace(raw.Telemetry.Exporter); v != "" {
		cfg.Telemetry.Exporter = v
	}
	if v := strings.TrimSpace(raw.Telemetry.Endpoint); v != "" {
		cfg.Telemetry.Endpoint = v
	}
	if v := strings.TrimSpace(raw.Telemetry.ServiceName); v != "" {
		cfg.Telemetry.ServiceName = v
	}
	cfg.Telemetry.Insecure = raw.Telemetry.Insecure
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawAppConfig) DatabaseRuntimeConfig {
	db := raw.Database
	if v := strings.TrimSpace(db.Driver); v != "" {
		current.Driver = v
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		current.DSN = v
	}
	if v := strings.TrimSpace(db.DSN); v != "" {
		current.DSN = v
	}
	if v := strings.TrimSpace(raw.DatabaseURL); v != "" {
		current.URL = v
	}
	if v := strings.TrimSpace(db.URL); v != "" {
		current.URL = v
	}
	if v := strings.TrimSpace(db.Host); v != "" {
		current.Host = v
	}
	if db.Port != 0 {
		current.Port = db.Port
	}
	if v := strings.TrimSpace(db.User); v != "" {
		current.User = v
	}
	if v := strings.TrimSpace(db.Username); v != "" {
		current.User = v
	}
	if db.Password != "" {
		current.Password = db.Password
	}
	if v := strings.TrimSpace(db.Name); v != "" {
		current.Name = v
	}
	if v := strings.TrimSpace(db.DBName); v != "" {
		current.Name = v
	}
	if v := strings.TrimSpace(db.Charset); v != "" {
		current.Charset = v
	}
	if db.ParseTime != nil {
		current.ParseTime = *db.ParseTime
	}
	if v := strings.TrimSpace(db.Loc); v != "" {
		current.Loc = v
	}
	if v := strings.TrimSpace(db.SSLMode); v != "" {
		current.SSLMode = v
	}
	if v := strings.TrimSpace(db.Path); v != "" {
		current.Path = v
	}
	if len(db.Params) > 0 {
		current.Params = copyStringMap(db.Params)
	}
	if db.AutoMigrate != nil {
		current.AutoMigrate = *db.AutoMigrate
	}
	return current
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	r := raw.Redis
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		current.URL = v
	}
	if v := strings.TrimSpace(r.URL); v != "" {
		current.URL = v
	}
	if v := strings.TrimSpace(r.Host); v != "" {
		current.Host = v
	}
	if r.Port != 0 {
		current.Port = r.Port
	}
	if v := strings.TrimSpace(r.Username); v != "" {
		current.Username = v
	}
	if r.Password != "" {
		current.Password = r.Password
	}
	if r.DB != 0 {
		current.DB = r.DB
	}
	if r.TLS {
		current.TLS = true
	}
	if v := strings.TrimSpace(r.Scheme); v != "" {
		current.Scheme = v
	}
	if len(r.Params) > 0 {
		current.Params = copyStringMap(r.Params)
	}
	return current
}

func applyRawAIConfig(current AIConfig, raw rawAIConfig) AIConfig {
	if len(raw.Providers) > 0 {
		current.Providers = raw.Providers
	}
	if raw.AnalysisModel != nil {
		current.AnalysisModel = raw.AnalysisModel
	}
	if raw.EmbeddingModel != nil {
		current.EmbeddingModel = raw.EmbeddingModel
	}
	if raw.Timeout != 0 {
		current.Timeout = raw.Timeout
	}
	if raw.MaxInFlight != nil {
		current.MaxInFlight = *raw.MaxInFlight
	}
	if raw.RateLimit.Requests != 0 {
		current.RateLimit.Requests = raw.RateLimit.Requests
	}
	if raw.RateLimit.Window != 0 {
		current.RateLimit.Window = raw.RateLimit.Window
	}
	if raw.BackfillInterval != nil {
		current.BackfillInterval = *raw.BackfillInterval
	}
	return current
}

// finalize normalizes every section, resolves DSN/redis URLs and validates
// ranges.
func (c *AppConfig) finalize() error {
	c.Env = normalizeEnv(c.Env)
	c.AllowedOrigins = normalizeOrigins(c.AllowedOrigins)
	c.Paths = normalizeRuntimePaths(c.Paths)
	c.Database = normalizeDatabaseConfig(c.Database)
	c.Redis = normalizeRedisConfig(c.Redis)
	c.Identity = normalizeIdentityConfig(c.Identity)
	c.AI = normalizeAIConfig(c.AI)
	c.Export = normalizeExportConfig(c.Export)
	c.Telemetry = normalizeTelemetryConfig(c.Telemetry)
	c.DSN = c.Database.DSNValue()
	c.RedisURL = c.Redis.URLValue()

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database.driver %q, expected mysql, postgres or sqlite", c.Database.Driver)
	}
	if c.Database.Driver != DriverSQLite && (c.Database.Port < 1 || c.Database.Port > 65535) {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("invalid ai.timeout %s, expected a positive duration", c.AI.Timeout)
	}
	if c.AI.BackfillInterval < 0 {
		return fmt.Errorf("invalid ai.backfill_interval %s, expected zero or a positive duration", c.AI.BackfillInterval)
	}
	if c.AI.RateLimit.Window <= 0 {
		return fmt.Errorf("invalid ai.rate_limit.window %s, expected a positive duration", c.AI.RateLimit.Window)
	}
	switch c.Telemetry.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("unsupported telemetry.exporter %q, expected none, stdout or otlp", c.Telemetry.Exporter)
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

// RedisEnabled reports whether a redis endpoint was configured.
func (c *AppConfig) RedisEnabled() bool {
	return c != nil && c.RedisURL != ""
}

// Enabled reports whether journal export has a destination bucket.
func (c ExportConfig) Enabled() bool {
	return c.Bucket != ""
}
