package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Detection DetectionConfig `mapstructure:"detection"`
	Dialogue  DialogueConfig  `mapstructure:"dialogue"`
	Expander  ExpanderConfig  `mapstructure:"expander"`
	Session   SessionConfig   `mapstructure:"session"`
	Reporting ReportingConfig `mapstructure:"reporting"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Schema          string        `mapstructure:"schema"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.Schema,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TLS       bool   `mapstructure:"tls"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	Enabled    bool               `mapstructure:"enabled"`
	URL        string             `mapstructure:"url"`
	StreamName string             `mapstructure:"stream_name"`
	Subjects   NATSSubjectsConfig `mapstructure:"subjects"`
}

type NATSSubjectsConfig struct {
	ScamDetected   string `mapstructure:"scam_detected"`
	IntelExtracted string `mapstructure:"intel_extracted"`
	SessionClosed  string `mapstructure:"session_closed"`
}

// AuthConfig guards the conversational endpoint with a shared API key.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// LLMConfig configures the external analysis collaborator. Providers are
// tried in order; any OpenAI-compatible chat-completions endpoint works.
type LLMConfig struct {
	Providers      []LLMProviderConfig `mapstructure:"providers"`
	RequestTimeout time.Duration       `mapstructure:"request_timeout"`
	CacheTTL       time.Duration       `mapstructure:"cache_ttl"`
	CacheSize      int                 `mapstructure:"cache_size"`
	MaxTokens      int                 `mapstructure:"max_tokens"`
}

type LLMProviderConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
}

type DetectionConfig struct {
	ScamThreshold       float64 `mapstructure:"scam_threshold"`
	SuspiciousThreshold float64 `mapstructure:"suspicious_threshold"`
}

type DialogueConfig struct {
	MaxMessages   int `mapstructure:"max_messages"`
	MinEngagement int `mapstructure:"min_engagement"`
}

// ExpanderConfig bounds the shortened-URL resolution stage.
type ExpanderConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRedirects int           `mapstructure:"max_redirects"`
	MaxWorkers   int           `mapstructure:"max_workers"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type ReportingConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/baitlab")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("BAITLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.tls", "BAITLAB_REDIS_TLS")
	v.BindEnv("redis.host", "BAITLAB_REDIS_HOST")
	v.BindEnv("redis.port", "BAITLAB_REDIS_PORT")
	v.BindEnv("redis.password", "BAITLAB_REDIS_PASSWORD")
	v.BindEnv("database.enabled", "BAITLAB_DATABASE_ENABLED")
	v.BindEnv("database.host", "BAITLAB_DATABASE_HOST")
	v.BindEnv("database.port", "BAITLAB_DATABASE_PORT")
	v.BindEnv("database.user", "BAITLAB_DATABASE_USER")
	v.BindEnv("database.password", "BAITLAB_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "BAITLAB_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "BAITLAB_DATABASE_SSLMODE")
	v.BindEnv("nats.enabled", "BAITLAB_NATS_ENABLED")
	v.BindEnv("nats.url", "BAITLAB_NATS_URL")
	v.BindEnv("auth.api_key", "BAITLAB_AUTH_API_KEY")
	v.BindEnv("reporting.endpoint", "BAITLAB_REPORTING_ENDPOINT")
	v.BindEnv("app.environment", "BAITLAB_APP_ENVIRONMENT")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "baitlab")
	v.SetDefault("app.environment", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.schema", "public")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "baitlab")
	v.SetDefault("llm.request_timeout", 8*time.Second)
	v.SetDefault("llm.cache_ttl", 10*time.Minute)
	v.SetDefault("llm.cache_size", 512)
	v.SetDefault("llm.max_tokens", 400)
	v.SetDefault("detection.scam_threshold", 0.40)
	v.SetDefault("detection.suspicious_threshold", 0.25)
	v.SetDefault("dialogue.max_messages", 50)
	v.SetDefault("dialogue.min_engagement", 5)
	v.SetDefault("expander.enabled", true)
	v.SetDefault("expander.timeout", 3*time.Second)
	v.SetDefault("expander.max_redirects", 10)
	v.SetDefault("expander.max_workers", 4)
	v.SetDefault("session.ttl", time.Hour)
	v.SetDefault("reporting.timeout", 10*time.Second)
}
