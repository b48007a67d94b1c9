package config

import (
	"errors"
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
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	AI        AIConfig        `mapstructure:"ai"`
	Engine    EngineConfig    `mapstructure:"engine"`
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
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
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
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	StreamName    string `mapstructure:"stream_name"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
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
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// AIConfig controls the learned-model layer.
type AIConfig struct {
	ModelsPath     string `mapstructure:"models_path"`
	AutoLoad       bool   `mapstructure:"auto_load"`
	Trees          int    `mapstructure:"trees"`
	MaxDepth       int    `mapstructure:"max_depth"`
	MinSamplesLeaf int    `mapstructure:"min_samples_leaf"`
	Seed           int64  `mapstructure:"seed"`
	Sentiment      bool   `mapstructure:"sentiment"`
}

// EngineConfig controls processing-engine state retention.
type EngineConfig struct {
	AlertHistoryLimit int `mapstructure:"alert_history_limit"`
	RecentAlerts      int `mapstructure:"recent_alerts"`
	ProfileLimit      int `mapstructure:"profile_limit"`
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
		v.AddConfigPath("/etc/fraudguard-lab")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("FRAUDGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.enabled", "FRAUDGUARD_REDIS_ENABLED")
	v.BindEnv("redis.host", "FRAUDGUARD_REDIS_HOST")
	v.BindEnv("redis.port", "FRAUDGUARD_REDIS_PORT")
	v.BindEnv("redis.password", "FRAUDGUARD_REDIS_PASSWORD")
	v.BindEnv("redis.tls", "FRAUDGUARD_REDIS_TLS")
	v.BindEnv("database.enabled", "FRAUDGUARD_DATABASE_ENABLED")
	v.BindEnv("database.host", "FRAUDGUARD_DATABASE_HOST")
	v.BindEnv("database.port", "FRAUDGUARD_DATABASE_PORT")
	v.BindEnv("database.user", "FRAUDGUARD_DATABASE_USER")
	v.BindEnv("database.password", "FRAUDGUARD_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "FRAUDGUARD_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "FRAUDGUARD_DATABASE_SSLMODE")
	v.BindEnv("nats.enabled", "FRAUDGUARD_NATS_ENABLED")
	v.BindEnv("nats.url", "FRAUDGUARD_NATS_URL")
	v.BindEnv("app.environment", "FRAUDGUARD_APP_ENVIRONMENT")
	v.BindEnv("ai.models_path", "FRAUDGUARD_AI_MODELS_PATH")
	v.BindEnv("ai.auto_load", "FRAUDGUARD_AI_AUTO_LOAD")

	// Read config file; a missing file means running on defaults and env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port out of range: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port out of range: %d", c.Server.GRPCPort)
	}
	if c.AI.Trees <= 0 {
		return fmt.Errorf("ai.trees must be positive, got %d", c.AI.Trees)
	}
	if c.AI.MaxDepth <= 0 {
		return fmt.Errorf("ai.max_depth must be positive, got %d", c.AI.MaxDepth)
	}
	if c.Engine.AlertHistoryLimit <= 0 {
		return fmt.Errorf("engine.alert_history_limit must be positive, got %d", c.Engine.AlertHistoryLimit)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("ratelimit.requests_per_minute must be positive when enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "fraudguard-lab")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "0.3.0")
	v.SetDefault("app.debug", false)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "fraudguard")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "fraudguard")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.min_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "fraudguard:")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.stream_name", "FRAUDGUARD_ALERTS")
	v.SetDefault("nats.subject_prefix", "alerts")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_minute", 120)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.time_format", time.RFC3339)

	v.SetDefault("ai.models_path", "models/state.json")
	v.SetDefault("ai.auto_load", true)
	v.SetDefault("ai.trees", 10)
	v.SetDefault("ai.max_depth", 10)
	v.SetDefault("ai.min_samples_leaf", 2)
	v.SetDefault("ai.seed", 42)
	v.SetDefault("ai.sentiment", true)

	v.SetDefault("engine.alert_history_limit", 1000)
	v.SetDefault("engine.recent_alerts", 20)
	v.SetDefault("engine.profile_limit", 200)
}
