package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Preview  PreviewConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	WSPort      string
	LogLevel    string
	LogFormat   string
}

type DatabaseConfig struct {
	Driver     string
	SQLitePath string

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	// StorageTimeout bounds every gateway call.
	StorageTimeout time.Duration
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type LLMConfig struct {
	Provider        string
	Model           string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string
	MaxTokens       int
	Timeout         time.Duration
}

type PreviewConfig struct {
	Timeout   time.Duration
	UserAgent string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads configuration from the environment, falling back to an optional
// learnmap.yaml in the working directory. Environment always wins.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("learnmap")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return FromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "learnmap")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("WS_PORT", "8081")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("SQLITE_PATH", "learnmap.db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", "5s")
	v.SetDefault("STORAGE_TIMEOUT", "5s")

	v.SetDefault("JWT_ACCESS_EXPIRES_IN", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRES_IN", "168h")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_TTL", "600s")

	v.SetDefault("LLM_MAX_TOKENS", 1024)
	v.SetDefault("LLM_TIMEOUT", "30s")

	v.SetDefault("PREVIEW_TIMEOUT", "5s")
	v.SetDefault("PREVIEW_USER_AGENT", "learnmap-preview/1.0")
}

// FromViper builds a Config from an already populated viper instance. Missing
// required keys are reported together.
func FromViper(v *viper.Viper) (Config, error) {
	var missing []string
	req := func(key string) string {
		val := strings.TrimSpace(v.GetString(key))
		if val == "" {
			missing = append(missing, key)
		}
		return val
	}
	opt := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	cfg := Config{}
	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		WSPort:      opt("WS_PORT"),
		LogLevel:    opt("LOG_LEVEL"),
		LogFormat:   opt("LOG_FORMAT"),
	}

	driver := strings.ToLower(opt("DB_DRIVER"))
	cfg.Database = DatabaseConfig{
		Driver:                driver,
		SQLitePath:            opt("SQLITE_PATH"),
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBSSLMode:             opt("DB_SSL_MODE"),
		ConnectTimeout:        v.GetDuration("DB_CONNECT_TIMEOUT"),
		PoolMaxConns:          v.GetInt32("DB_POOL_MAX_CONNS"),
		PoolMinConns:          v.GetInt32("DB_POOL_MIN_CONNS"),
		PoolMaxConnLifetime:   v.GetDuration("DB_POOL_MAX_CONN_LIFETIME"),
		PoolMaxConnIdleTime:   v.GetDuration("DB_POOL_MAX_CONN_IDLE_TIME"),
		PoolHealthCheckPeriod: v.GetDuration("DB_POOL_HEALTH_CHECK_PERIOD"),
		StorageTimeout:        v.GetDuration("STORAGE_TIMEOUT"),
	}
	switch driver {
	case DriverPostgres:
		req("DB_HOST")
		req("DB_NAME")
		req("DB_USER")
	case DriverSQLite:
		req("SQLITE_PATH")
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  v.GetDuration("JWT_ACCESS_EXPIRES_IN"),
		RefreshExpiresIn: v.GetDuration("JWT_REFRESH_EXPIRES_IN"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		TTL:      v.GetDuration("REDIS_TTL"),
	}

	cfg.LLM = LLMConfig{
		Provider:        strings.ToLower(opt("LLM_PROVIDER")),
		Model:           opt("LLM_MODEL"),
		OpenAIAPIKey:    opt("OPENAI_API_KEY"),
		AnthropicAPIKey: opt("ANTHROPIC_API_KEY"),
		GeminiAPIKey:    opt("GEMINI_API_KEY"),
		MaxTokens:       v.GetInt("LLM_MAX_TOKENS"),
		Timeout:         v.GetDuration("LLM_TIMEOUT"),
	}
	switch cfg.LLM.Provider {
	case "", "mock":
	case "openai":
		req("OPENAI_API_KEY")
	case "anthropic":
		req("ANTHROPIC_API_KEY")
	case "gemini":
		req("GEMINI_API_KEY")
	default:
		return Config{}, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLM.Provider)
	}

	cfg.Preview = PreviewConfig{
		Timeout:   v.GetDuration("PREVIEW_TIMEOUT"),
		UserAgent: opt("PREVIEW_USER_AGENT"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	return cfg, nil
}

// Defaults returns a viper instance with every default applied and no
// environment binding. Tests and the CLI start from it.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}
