package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	HTTPClient    HTTPClientConfig    `mapstructure:"http_client"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	AccessControl AccessControlConfig `mapstructure:"access_control"`
	Generation    GenerationConfig    `mapstructure:"generation"`
	Provider      ProviderConfig      `mapstructure:"provider"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Log           LogConfig           `mapstructure:"log"`
}

// AccessControlConfig holds privileged account configuration.
type AccessControlConfig struct {
	AdminUserIDs []string `mapstructure:"admin_user_ids"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	MetricsAddress  string        `mapstructure:"metrics_address"` // empty: /metrics is served on the main router
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	// Driver selects the ledger store: "postgres" or "memory".
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Database, c.SSLMode,
	)
	if c.Password != "" {
		dsn += fmt.Sprintf(" password=%s", c.Password)
	}
	return dsn
}

// RedisConfig holds Redis configuration. An empty address disables Redis.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HTTPClientConfig holds outbound HTTP client pool settings.
type HTTPClientConfig struct {
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`

	DialTimeout         time.Duration `mapstructure:"dial_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`
	ResponseTimeout     time.Duration `mapstructure:"response_timeout"`

	KeepAlive time.Duration `mapstructure:"keep_alive"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// GlobalLimit is the rate limit per client IP per GlobalWindow.
	GlobalLimit  int           `mapstructure:"global_limit"`
	GlobalWindow time.Duration `mapstructure:"global_window"`
	// GenerationLimit is the per-user limit on generation requests.
	GenerationLimit  int           `mapstructure:"generation_limit"`
	GenerationWindow time.Duration `mapstructure:"generation_window"`
	IdempotencyTTL   time.Duration `mapstructure:"idempotency_ttl"`
}

// GenerationConfig holds pricing and quota settings for generations.
type GenerationConfig struct {
	// UnitCostCents is the paid price of one generation.
	UnitCostCents int64 `mapstructure:"unit_cost_cents"`
	// InitialFreeGenerations is granted when a user's credit record is first created.
	InitialFreeGenerations int `mapstructure:"initial_free_generations"`
	// ProviderTimeout bounds the single outbound provider call.
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
	// ReserveAttempts bounds how often a lost reservation race is re-decided.
	ReserveAttempts int `mapstructure:"reserve_attempts"`
	// MaxImageBytes caps the decoded size of an uploaded drawing.
	MaxImageBytes int `mapstructure:"max_image_bytes"`
	// StaleSweepInterval is how often abandoned pending attempts are refunded. Zero disables the sweep.
	StaleSweepInterval time.Duration `mapstructure:"stale_sweep_interval"`
	// StaleAfter is the age at which a pending attempt counts as abandoned.
	// It is never shorter than the provider timeout plus the finalize window.
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// ProviderConfig holds the image generation provider settings.
type ProviderConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	Referer             string        `mapstructure:"referer"`
	Title               string        `mapstructure:"title"`
	MaxCompletionTokens int           `mapstructure:"max_completion_tokens"`
	Temperature         float64       `mapstructure:"temperature"`
	FailureThreshold    uint32        `mapstructure:"failure_threshold"`
	CircuitTimeout      time.Duration `mapstructure:"circuit_timeout"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// JWTSecret verifies HS256 access tokens issued by the identity provider.
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// StorageConfig holds object storage configuration. An empty bucket disables uploads.
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const envPrefix = "COLORSTUDIO"

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/colorstudio")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and env
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applySecretOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applySecretOverrides reads sensitive values from short environment names.
func applySecretOverrides(cfg *Config) {
	if secret := os.Getenv(envPrefix + "_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if password := os.Getenv(envPrefix + "_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if password := os.Getenv(envPrefix + "_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if key := os.Getenv(envPrefix + "_PROVIDER_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv(envPrefix + "_STORAGE_SECRET_KEY"); key != "" {
		cfg.Storage.SecretAccessKey = key
	}
	if s := os.Getenv(envPrefix + "_ADMIN_USER_IDS"); s != "" {
		cfg.AccessControl.AdminUserIDs = parseCommaSeparatedList(s)
	}
}

// Validate rejects configurations the ledger cannot operate with.
func (c *Config) Validate() error {
	if c.Generation.UnitCostCents <= 0 {
		return fmt.Errorf("generation.unit_cost_cents must be positive, got %d", c.Generation.UnitCostCents)
	}
	if c.Generation.InitialFreeGenerations < 0 {
		return fmt.Errorf("generation.initial_free_generations must not be negative, got %d", c.Generation.InitialFreeGenerations)
	}
	if c.Generation.ProviderTimeout <= 0 {
		return fmt.Errorf("generation.provider_timeout must be positive")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set %s_JWT_SECRET)", envPrefix)
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("database.driver must be postgres or memory, got %q", c.Database.Driver)
	}
	return nil
}

func parseCommaSeparatedList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.metrics_address", "")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "colorstudio")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)

	// Redis defaults
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.db", 0)

	// HTTP client defaults
	v.SetDefault("http_client.max_idle_conns", 100)
	v.SetDefault("http_client.max_idle_conns_per_host", 20)
	v.SetDefault("http_client.max_conns_per_host", 50)
	v.SetDefault("http_client.idle_conn_timeout", 90*time.Second)
	v.SetDefault("http_client.dial_timeout", 30*time.Second)
	v.SetDefault("http_client.tls_handshake_timeout", 10*time.Second)
	v.SetDefault("http_client.response_timeout", 120*time.Second)
	v.SetDefault("http_client.keep_alive", 30*time.Second)

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.global_limit", 100)
	v.SetDefault("rate_limit.global_window", time.Minute)
	v.SetDefault("rate_limit.generation_limit", 10)
	v.SetDefault("rate_limit.generation_window", time.Minute)
	v.SetDefault("rate_limit.idempotency_ttl", 24*time.Hour)

	v.SetDefault("access_control.admin_user_ids", []string{})

	// Generation defaults
	v.SetDefault("generation.unit_cost_cents", 200)
	v.SetDefault("generation.initial_free_generations", 1)
	v.SetDefault("generation.provider_timeout", 60*time.Second)
	v.SetDefault("generation.reserve_attempts", 3)
	v.SetDefault("generation.max_image_bytes", 10<<20)
	v.SetDefault("generation.stale_sweep_interval", time.Minute)
	v.SetDefault("generation.stale_after", time.Duration(0))

	// Provider defaults
	v.SetDefault("provider.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("provider.model", "google/gemini-2.0-flash-exp:free")
	v.SetDefault("provider.referer", "https://colorstudio.app")
	v.SetDefault("provider.title", "Magic Coloring Studio")
	v.SetDefault("provider.max_completion_tokens", 1000)
	v.SetDefault("provider.temperature", 0.7)
	v.SetDefault("provider.failure_threshold", 5)
	v.SetDefault("provider.circuit_timeout", 30*time.Second)

	// Storage defaults
	v.SetDefault("storage.region", "auto")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
