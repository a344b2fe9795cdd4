package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Redis      RedisConfig      `json:"redis"`
	Enrichment EnrichmentConfig `json:"enrichment"`
	OpenAI     OpenAIConfig     `json:"openai"`
	Log        LogConfig        `json:"log"`
	Security   SecurityConfig   `json:"security"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int    `json:"port"`
	Environment  string `json:"environment"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	IdleTimeout  int    `json:"idle_timeout"`
}

// DatabaseConfig holds the usage ledger database configuration.
// An empty URL disables persistence.
type DatabaseConfig struct {
	URL             string        `json:"-"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	Password     string        `json:"-"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// EnrichmentConfig holds batch orchestration settings
type EnrichmentConfig struct {
	BatchSize   int           `json:"batch_size"`
	BatchDelay  time.Duration `json:"batch_delay"`
	MaxEntities int           `json:"max_entities"`
	EntityURL   string        `json:"entity_url"`
	CallTimeout time.Duration `json:"call_timeout"`
	CacheTTL    time.Duration `json:"cache_ttl"`
}

// OpenAIConfig holds chat completion provider settings
type OpenAIConfig struct {
	APIKey     string        `json:"-"`
	BaseURL    string        `json:"base_url"`
	Model      string        `json:"model"`
	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimit      RateLimitConfig `json:"rate_limit"`
	CORS           CORSConfig      `json:"cors"`
	AdminToken     string          `json:"-"`
	TrustedProxies []string        `json:"trusted_proxies"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute"`
	BurstSize         int           `json:"burst_size"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
	SkipLoopback      bool          `json:"skip_loopback"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	port := v.GetInt("PORT")
	entityURL := v.GetString("ENRICH_ENTITY_URL")
	if entityURL == "" {
		entityURL = fmt.Sprintf("http://localhost:%d/api/v1/ia-enriquecer", port)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         port,
			Environment:  v.GetString("ENVIRONMENT"),
			ReadTimeout:  v.GetInt("READ_TIMEOUT"),
			WriteTimeout: v.GetInt("WRITE_TIMEOUT"),
			IdleTimeout:  v.GetInt("IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: seconds(v, "DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Host:         v.GetString("REDIS_HOST"),
			Port:         v.GetInt("REDIS_PORT"),
			Password:     v.GetString("REDIS_PASSWORD"),
			DB:           v.GetInt("REDIS_DB"),
			PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
			DialTimeout:  seconds(v, "REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  seconds(v, "REDIS_READ_TIMEOUT"),
			WriteTimeout: seconds(v, "REDIS_WRITE_TIMEOUT"),
		},
		Enrichment: EnrichmentConfig{
			BatchSize:   v.GetInt("ENRICH_BATCH_SIZE"),
			BatchDelay:  time.Duration(v.GetInt("ENRICH_BATCH_DELAY_MS")) * time.Millisecond,
			MaxEntities: v.GetInt("ENRICH_MAX_ENTITIES"),
			EntityURL:   entityURL,
			CallTimeout: seconds(v, "ENRICH_CALL_TIMEOUT"),
			CacheTTL:    seconds(v, "ENRICH_CACHE_TTL"),
		},
		OpenAI: OpenAIConfig{
			APIKey:     v.GetString("OPENAI_API_KEY"),
			BaseURL:    strings.TrimRight(v.GetString("OPENAI_BASE_URL"), "/"),
			Model:      v.GetString("OPENAI_MODEL"),
			Timeout:    seconds(v, "OPENAI_TIMEOUT"),
			MaxRetries: v.GetInt("OPENAI_MAX_RETRIES"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				RequestsPerMinute: v.GetInt("RATE_LIMIT_RPM"),
				BurstSize:         v.GetInt("RATE_LIMIT_BURST"),
				CleanupInterval:   seconds(v, "RATE_LIMIT_CLEANUP"),
				SkipLoopback:      v.GetBool("RATE_LIMIT_SKIP_LOOPBACK"),
			},
			CORS: CORSConfig{
				AllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
				AllowedMethods:   []string{"POST", "OPTIONS"},
				AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
				AllowCredentials: false,
			},
			AdminToken:     v.GetString("ADMIN_TOKEN"),
			TrustedProxies: splitCSV(v.GetString("TRUSTED_PROXIES")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks invariants the orchestration relies on
func (c *Config) Validate() error {
	if c.Enrichment.BatchSize <= 0 {
		return fmt.Errorf("ENRICH_BATCH_SIZE must be positive, got %d", c.Enrichment.BatchSize)
	}
	if c.Enrichment.MaxEntities <= 0 {
		return fmt.Errorf("ENRICH_MAX_ENTITIES must be positive, got %d", c.Enrichment.MaxEntities)
	}
	if c.Enrichment.BatchDelay < 0 {
		return fmt.Errorf("ENRICH_BATCH_DELAY_MS must not be negative")
	}
	if c.Enrichment.EntityURL == "" {
		return fmt.Errorf("ENRICH_ENTITY_URL is required")
	}
	if c.Security.RateLimit.CleanupInterval <= 0 {
		return fmt.Errorf("RATE_LIMIT_CLEANUP must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("READ_TIMEOUT", 30)
	// A full batch of 50 entities with three LLM stages each runs for minutes.
	v.SetDefault("WRITE_TIMEOUT", 600)
	v.SetDefault("IDLE_TIMEOUT", 60)

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", 5)
	v.SetDefault("REDIS_READ_TIMEOUT", 3)
	v.SetDefault("REDIS_WRITE_TIMEOUT", 3)

	v.SetDefault("ENRICH_BATCH_SIZE", 3)
	v.SetDefault("ENRICH_BATCH_DELAY_MS", 1000)
	v.SetDefault("ENRICH_MAX_ENTITIES", 50)
	v.SetDefault("ENRICH_ENTITY_URL", "")
	v.SetDefault("ENRICH_CALL_TIMEOUT", 0)
	v.SetDefault("ENRICH_CACHE_TTL", 86400)

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_TIMEOUT", 120)
	v.SetDefault("OPENAI_MAX_RETRIES", 2)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RATE_LIMIT_RPM", 100)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("RATE_LIMIT_CLEANUP", 60)
	v.SetDefault("RATE_LIMIT_SKIP_LOOPBACK", true)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("ADMIN_TOKEN", "")
	v.SetDefault("TRUSTED_PROXIES", "")
}

func seconds(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetInt(key)) * time.Second
}

func splitList(raw string) []string {
	if out := splitCSV(raw); len(out) > 0 {
		return out
	}
	return []string{"*"}
}

// splitCSV returns nil for an empty list
func splitCSV(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
