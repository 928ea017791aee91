package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
)

type Config struct {
	Environment       string `mapstructure:"POS_ENVIRONMENT"`
	ServerName        string `mapstructure:"POS_SERVER_NAME"`
	ServerAddress     string `mapstructure:"POS_SERVER_BIND_ADDR"`
	ServerReadTimeout int16  `mapstructure:"POS_SERVER_READ_TIMEOUT"`
	LogFormat         string `mapstructure:"POS_LOG_FORMAT"` // text or json
	LogLevel          string `mapstructure:"POS_LOG_LEVEL"`  // debug, info, warn, error
	RateLimitMax      int    `mapstructure:"POS_RATE_LIMIT_MAX"`
	RateLimitWindow   int    `mapstructure:"POS_RATE_LIMIT_WINDOW"`

	DbEnabled        bool   `mapstructure:"POS_DB_ENABLED"`
	DbHost           string `mapstructure:"POS_DB_HOST"`
	DbPort           int16  `mapstructure:"POS_DB_PORT"`
	DbSSLMode        string `mapstructure:"POS_DB_SSL"`
	DbUser           string `mapstructure:"POS_DB_USER"`
	DbPassword       string `mapstructure:"POS_DB_PASSWORD"`
	DbDatabaseName   string `mapstructure:"POS_DB_DATABASE"`
	DbMaxConnections int    `mapstructure:"POS_DB_MAX_CONNECTIONS"`

	// Redis
	RedisEnabled bool   `mapstructure:"POS_REDIS_ENABLED"`
	RedisHost    string `mapstructure:"POS_REDIS_HOST"`
	RedisPort    int16  `mapstructure:"POS_REDIS_PORT"`
	RedisDb      int    `mapstructure:"POS_REDIS_DB"`
	RedisUser    string `mapstructure:"POS_REDIS_USER"`
	RedisPass    string `mapstructure:"POS_REDIS_PASS"`

	OtlpEndpoint   string `mapstructure:"POS_OTLP_ENDPOINT"`
	JaegerEndpoint string `mapstructure:"POS_JAEGER_ENDPOINT"`

	// Cloud NLU (Dialogflow-compatible) Configuration
	DialogflowEndpoint      string  `mapstructure:"POS_DIALOGFLOW_ENDPOINT"`
	DialogflowAPIKey        string  `mapstructure:"POS_DIALOGFLOW_API_KEY"`
	DialogflowTimeoutMs     int     `mapstructure:"POS_DIALOGFLOW_TIMEOUT_MS"`
	DialogflowMinConfidence float64 `mapstructure:"POS_DIALOGFLOW_MIN_CONFIDENCE"`

	// Sarvam TTS Configuration
	SarvamBaseURL      string `mapstructure:"POS_SARVAM_BASE_URL"`
	SarvamAPIKey       string `mapstructure:"POS_SARVAM_API_KEY"`
	SarvamSpeaker      string `mapstructure:"POS_SARVAM_SPEAKER"`
	SarvamCacheTTLMins int    `mapstructure:"POS_SARVAM_CACHE_TTL_MINS"`
}

// DefaultConfig generates a config with sane defaults.
// See: The example .env file in the package docs for default values.
func DefaultConfig() Config {
	return Config{
		Environment:       "local",
		ServerAddress:     "0.0.0.0:3001",
		ServerReadTimeout: 60,
		LogFormat:         "text",
		LogLevel:          "info",
		RateLimitMax:      100,
		RateLimitWindow:   30,

		DbEnabled:        false,
		DbHost:           "localhost",
		DbPort:           5432,
		DbSSLMode:        "disable",
		DbUser:           "postgres",
		DbPassword:       "postgres",
		DbDatabaseName:   "kada-pos",
		DbMaxConnections: 100,

		RedisEnabled: false,
		RedisHost:    "localhost",
		RedisPort:    6379,
		RedisDb:      0,
		RedisUser:    "redis",
		RedisPass:    "redis",

		OtlpEndpoint:   "localhost:4317",
		JaegerEndpoint: "http://localhost:14268/api/traces",

		DialogflowEndpoint:      "",
		DialogflowAPIKey:        "",
		DialogflowTimeoutMs:     2500,
		DialogflowMinConfidence: 0.6,

		SarvamBaseURL:      "https://api.sarvam.ai",
		SarvamAPIKey:       "",
		SarvamSpeaker:      "manisha",
		SarvamCacheTTLMins: 720,
	}
}

// LoadConfig will attempt to load a configuration from the default file location and fallback to environment variables.
func LoadConfig() (Config, error) {
	envFile := os.Getenv("POS_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	var cfg Config
	var err error

	if _, err = os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
		cfg, err = ConfigFromEnvironment()
	} else {
		cfg, err = ConfigFromFile(envFile)
	}

	return cfg, err
}

// ConfigFromEnvironment will look for the specified configuration from environment variables
// See package docs for a list of available environment variables.
func ConfigFromEnvironment() (config Config, err error) {
	// Set defaults
	config = DefaultConfig()
	viper.SetDefault("POS_ENVIRONMENT", config.Environment)
	viper.SetDefault("POS_SERVER_BIND_ADDR", config.ServerAddress)
	viper.SetDefault("POS_SERVER_READ_TIMEOUT", config.ServerReadTimeout)
	viper.SetDefault("POS_LOG_LEVEL", config.LogLevel)
	viper.SetDefault("POS_LOG_FORMAT", config.LogFormat)
	viper.SetDefault("POS_RATE_LIMIT_MAX", config.RateLimitMax)
	viper.SetDefault("POS_RATE_LIMIT_WINDOW", config.RateLimitWindow)
	viper.SetDefault("POS_DB_ENABLED", config.DbEnabled)
	viper.SetDefault("POS_DB_HOST", config.DbHost)
	viper.SetDefault("POS_DB_PORT", config.DbPort)
	viper.SetDefault("POS_DB_SSL", config.DbSSLMode)
	viper.SetDefault("POS_DB_USER", config.DbUser)
	viper.SetDefault("POS_DB_PASSWORD", config.DbPassword)
	viper.SetDefault("POS_DB_DATABASE", config.DbDatabaseName)
	viper.SetDefault("POS_DB_MAX_CONNECTIONS", config.DbMaxConnections)
	viper.SetDefault("POS_OTLP_ENDPOINT", config.OtlpEndpoint)
	viper.SetDefault("POS_JAEGER_ENDPOINT", config.JaegerEndpoint)
	viper.SetDefault("POS_REDIS_ENABLED", config.RedisEnabled)
	viper.SetDefault("POS_REDIS_HOST", config.RedisHost)
	viper.SetDefault("POS_REDIS_PORT", config.RedisPort)
	viper.SetDefault("POS_REDIS_USER", config.RedisUser)
	viper.SetDefault("POS_REDIS_PASS", config.RedisPass)
	viper.SetDefault("POS_REDIS_DB", config.RedisDb)
	viper.SetDefault("POS_DIALOGFLOW_ENDPOINT", config.DialogflowEndpoint)
	viper.SetDefault("POS_DIALOGFLOW_API_KEY", config.DialogflowAPIKey)
	viper.SetDefault("POS_DIALOGFLOW_TIMEOUT_MS", config.DialogflowTimeoutMs)
	viper.SetDefault("POS_DIALOGFLOW_MIN_CONFIDENCE", config.DialogflowMinConfidence)
	viper.SetDefault("POS_SARVAM_BASE_URL", config.SarvamBaseURL)
	viper.SetDefault("POS_SARVAM_API_KEY", config.SarvamAPIKey)
	viper.SetDefault("POS_SARVAM_SPEAKER", config.SarvamSpeaker)
	viper.SetDefault("POS_SARVAM_CACHE_TTL_MINS", config.SarvamCacheTTLMins)

	// Override config values with environment variables
	viper.AutomaticEnv()
	err = viper.Unmarshal(&config)
	return
}

// ConfigFromFile will look for the specified configuration file in the current directory and initialize
// a Config from it. Values provided by environment variables will override ones found in
// the file. See package docs for a list of available environment variables.
func ConfigFromFile(f string) (config Config, err error) {
	if config, err = ConfigFromEnvironment(); err != nil {
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigFile(f)
	viper.SetConfigType("env")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)

	return
}

// Fiber initializes and returns a Fiber config based on server config values.
// See https://docs.gofiber.io/api/fiber#config
func (c Config) Fiber() fiber.Config {
	return fiber.Config{
		ReadTimeout: time.Second * time.Duration(c.ServerReadTimeout),
		BodyLimit:   1 * 1024 * 1024, // 1MB, requests carry only text
	}
}

// DbConnectionString generates a connection string for the database based on config values.
func (c Config) DbConnectionString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s", c.DbUser, url.QueryEscape(c.DbPassword), c.DbHost, c.DbPort, c.DbDatabaseName, c.DbSSLMode)
}

// RedisAddr generates the Redis server address from config values.
func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// GetSlogLevel converts the string log level to slog.Level.
func (c Config) GetSlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo // default fallback
	}
}

// GetDialogflowConfig converts config values to the cloud NLU client configuration.
func (c Config) GetDialogflowConfig() DialogflowConfig {
	return DialogflowConfig{
		Endpoint:      c.DialogflowEndpoint,
		APIKey:        c.DialogflowAPIKey,
		Timeout:       time.Duration(c.DialogflowTimeoutMs) * time.Millisecond,
		MinConfidence: c.DialogflowMinConfidence,
	}
}

// DialogflowConfig holds cloud NLU client configuration
type DialogflowConfig struct {
	Endpoint      string
	APIKey        string
	Timeout       time.Duration
	MinConfidence float64
}

// Enabled reports whether the cloud NLU collaborator is configured at all.
func (c DialogflowConfig) Enabled() bool {
	return c.Endpoint != ""
}

// GetSarvamConfig converts config values to the TTS client configuration.
func (c Config) GetSarvamConfig() SarvamConfig {
	return SarvamConfig{
		BaseURL:  c.SarvamBaseURL,
		APIKey:   c.SarvamAPIKey,
		Speaker:  c.SarvamSpeaker,
		CacheTTL: time.Duration(c.SarvamCacheTTLMins) * time.Minute,
	}
}

// SarvamConfig holds Sarvam text-to-speech configuration
type SarvamConfig struct {
	BaseURL  string
	APIKey   string
	Speaker  string
	CacheTTL time.Duration
}
