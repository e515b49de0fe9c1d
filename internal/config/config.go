package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Monitoring     MonitoringConfig     `mapstructure:"monitoring"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		BehaviorEvents string `mapstructure:"behavior_events"`
	} `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string          `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration   `mapstructure:"token_ttl"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Default int           `mapstructure:"default"`
	Admin   int           `mapstructure:"admin"`
	Window  time.Duration `mapstructure:"window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RecommendationConfig lifts every weighting constant of the hybrid engine
// into configuration so each one is independently testable. Defaults match
// the tuned production values.
type RecommendationConfig struct {
	// Hybrid blend weights. The engine does not renormalize; keep the sum
	// at 1.0 when overriding.
	ContentWeight       float64 `mapstructure:"content_weight" validate:"gte=0,lte=1"`
	CollaborativeWeight float64 `mapstructure:"collaborative_weight" validate:"gte=0,lte=1"`

	// MinScore drops hybrid results at or below this value.
	MinScore float64 `mapstructure:"min_score" validate:"gte=0,lt=1"`
	// MemberMinScore is the stricter cutoff for team-member suggestions.
	MemberMinScore float64 `mapstructure:"member_min_score" validate:"gte=0,lt=1"`

	// Neighborhood shape for collaborative filtering.
	NeighborThreshold float64 `mapstructure:"neighbor_threshold" validate:"gte=0,lt=1"`
	MaxNeighbors      int     `mapstructure:"max_neighbors" validate:"gt=0"`

	// InteractedDamping discounts items the target user already touched.
	InteractedDamping float64 `mapstructure:"interacted_damping" validate:"gte=0,lte=1"`
	// GapBonus multiplies the contribution of required skills the team
	// lacks entirely.
	GapBonus float64 `mapstructure:"gap_bonus" validate:"gte=1"`

	// ExplainThreshold is the per-signal score above which that signal is
	// named in the explanation text.
	ExplainThreshold float64 `mapstructure:"explain_threshold" validate:"gte=0,lte=1"`

	// Top-K promotion bounds for recommend-mode listings.
	DefaultTopK int `mapstructure:"default_top_k" validate:"gt=0"`
	MaxTopK     int `mapstructure:"max_top_k" validate:"gt=0"`

	// TeamFallbackThreshold: when the best team match score is below this,
	// the per-competition team list falls back to recency ordering.
	TeamFallbackThreshold float64 `mapstructure:"team_fallback_threshold" validate:"gte=0,lt=1"`

	// ReasonMaxLength caps the "Matched: ..." reason string.
	ReasonMaxLength int `mapstructure:"reason_max_length" validate:"gte=10"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.url", "localhost:6379")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")

	// Kafka defaults
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topics.behavior_events", "behavior-events")

	// Auth defaults
	viper.SetDefault("auth.token_ttl", "24h")
	viper.SetDefault("auth.rate_limit.default", 1000)
	viper.SetDefault("auth.rate_limit.admin", 10000)
	viper.SetDefault("auth.rate_limit.window", "1h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Recommendation engine defaults
	viper.SetDefault("recommendation.content_weight", 0.6)
	viper.SetDefault("recommendation.collaborative_weight", 0.4)
	viper.SetDefault("recommendation.min_score", 0.01)
	viper.SetDefault("recommendation.member_min_score", 0.1)
	viper.SetDefault("recommendation.neighbor_threshold", 0.1)
	viper.SetDefault("recommendation.max_neighbors", 50)
	viper.SetDefault("recommendation.interacted_damping", 0.5)
	viper.SetDefault("recommendation.gap_bonus", 1.5)
	viper.SetDefault("recommendation.explain_threshold", 0.5)
	viper.SetDefault("recommendation.default_top_k", 10)
	viper.SetDefault("recommendation.max_top_k", 50)
	viper.SetDefault("recommendation.team_fallback_threshold", 0.10)
	viper.SetDefault("recommendation.reason_max_length", 120)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
