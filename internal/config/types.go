package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int
	Env            string // "development" | "production"
	DSN            string // resolved from Database
	RedisURL       string // resolved from Redis, empty disables redis backed features
	Database       DatabaseRuntimeConfig
	Redis          RedisRuntimeConfig
	Paths          RuntimePathsConfig
	AllowedOrigins []string
	Timezone       string
	Identity       IdentityConfig
	AI             AIConfig
	Export         ExportConfig
	Telemetry      TelemetryConfig
}

type DatabaseRuntimeConfig struct {
	Driver      string            `yaml:"driver"` // mysql | postgres | sqlite
	DSN         string            `yaml:"dsn"`
	URL         string            `yaml:"url"`
	Host        string            `yaml:"host"`
	Port        int               `yaml:"port"`
	User        string            `yaml:"user"`
	Username    string            `yaml:"username"`
	Password    string            `yaml:"password"`
	Name        string            `yaml:"name"`
	DBName      string            `yaml:"db_name"`
	Charset     string            `yaml:"charset"`
	ParseTime   bool              `yaml:"parse_time"`
	Loc         string            `yaml:"loc"`
	SSLMode     string            `yaml:"sslmode"`
	Path        string            `yaml:"path"` // sqlite file
	Params      map[string]string `yaml:"params"`
	AutoMigrate bool              `yaml:"auto_migrate"`
}

type RedisRuntimeConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       int               `yaml:"db"`
	TLS      bool              `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}

// IdentityConfig describes how bearer tokens minted by the external identity
// provider are verified. Either HMACSecret or a public key must be set.
type IdentityConfig struct {
	Issuer        string `yaml:"issuer"`
	Audience      string `yaml:"audience"`
	HMACSecret    string `yaml:"hmac_secret"`
	PublicKeyFile string `yaml:"public_key_file"`
	PublicKeyPEM  string `yaml:"public_key_pem"`
}

type AIConfig struct {
	Providers        []AIProvider       `yaml:"providers"`
	AnalysisModel    *AIModelAssignment `yaml:"analysis_model"`
	EmbeddingModel   *AIModelAssignment `yaml:"embedding_model"`
	Timeout          time.Duration      `yaml:"timeout"`
	MaxInFlight      int                `yaml:"max_in_flight"` // <= 0 disables the cap
	RateLimit        RateLimitConfig    `yaml:"rate_limit"`
	BackfillInterval time.Duration      `yaml:"backfill_interval"` // 0 disables the backfill job
}

type AIModelAssignment struct {
	ProviderID string `yaml:"provider_id"`
	Model      string `yaml:"model"`
}

type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // OpenAI | OpenAI-Compatible | Anthropic | OpenRouter | Gemini
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// RateLimitConfig bounds analysis-triggering requests per user.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type ExportConfig struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Prefix          string `yaml:"prefix"`
	PathStyle       bool   `yaml:"path_style"`
}

type TelemetryConfig struct {
	Exporter    string `yaml:"exporter"` // none | stdout | otlp
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

type rawAppConfig struct {
	Port               int                   `yaml:"port"`
	DSN                string                `yaml:"dsn"`
	DatabaseURL        string                `yaml:"database_url"`
	RedisURL           string                `yaml:"redis_url"`
	Database           rawDatabaseConfig     `yaml:"database"`
	Redis              RedisRuntimeConfig    `yaml:"redis"`
	Env                string                `yaml:"env"`
	Paths              RuntimePathsConfig    `yaml:"paths"`
	LogDir             string                `yaml:"log_dir"`
	AllowedOrigins     []string              `yaml:"allowed_origins"`
	CORSAllowedOrigins []string              `yaml:"cors_allowed_origins"`
	JWTSecret          string                `yaml:"jwt_secret"`
	Timezone           string                `yaml:"timezone"`
	TZ                 string                `yaml:"tz"`
	Identity           IdentityConfig        `yaml:"identity"`
	AI                 rawAIConfig           `yaml:"ai"`
	Export             ExportConfig          `yaml:"export"`
	Telemetry          TelemetryConfig       `yaml:"telemetry"`
}

type rawDatabaseConfig struct {
	Driver      string            `yaml:"driver"`
	DSN         string            `yaml:"dsn"`
	URL         string            `yaml:"url"`
	Host        string            `yaml:"host"`
	Port        int               `yaml:"port"`
	User        string            `yaml:"user"`
	Username    string            `yaml:"username"`
	Password    string            `yaml:"password"`
	Name        string            `yaml:"name"`
	DBName      string            `yaml:"db_name"`
	Charset     string            `yaml:"charset"`
	ParseTime   *bool             `yaml:"parse_time"`
	Loc         string            `yaml:"loc"`
	SSLMode     string            `yaml:"sslmode"`
	Path        string            `yaml:"path"`
	Params      map[string]string `yaml:"params"`
	AutoMigrate *bool             `yaml:"auto_migrate"`
}

type rawAIConfig struct {
	Providers        []AIProvider       `yaml:"providers"`
	AnalysisModel    *AIModelAssignment `yaml:"analysis_model"`
	EmbeddingModel   *AIModelAssignment `yaml:"embedding_model"`
	Timeout          time.Duration      `yaml:"timeout"`
	MaxInFlight      *int               `yaml:"max_in_flight"`
	RateLimit        RateLimitConfig    `yaml:"rate_limit"`
	BackfillInterval *time.Duration     `yaml:"backfill_interval"`
}
