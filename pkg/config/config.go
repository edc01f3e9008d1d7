package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Env  string
	Port int

	API      APIConfig
	Session  SessionConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Workflow WorkflowConfig
	Members  MembersConfig
	Refresh  RefreshConfig
}

// APIConfig points the client at the remote organisation API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig selects where the admin bearer token lives.
type SessionConfig struct {
	Backend  string
	RedisKey string
	TTL      time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// WorkflowConfig tunes the join-request workflow controller.
type WorkflowConfig struct {
	ReconcileDelay time.Duration
}

// MembersConfig governs caching of the approved member directory.
type MembersConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// RefreshConfig schedules background refetches.
type RefreshConfig struct {
	Enabled          bool
	JoinRequestsSpec string
	ReportSpec       string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.API = APIConfig{
		BaseURL: strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("API_TIMEOUT"), 30*time.Second),
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("SESSION_BACKEND")))
	if backend != SessionBackendRedis {
		backend = SessionBackendMemory
	}
	cfg.Session = SessionConfig{
		Backend:  backend,
		RedisKey: v.GetString("SESSION_REDIS_KEY"),
		TTL:      parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Workflow = WorkflowConfig{
		ReconcileDelay: parseDuration(v.GetString("RECONCILE_DELAY"), 1500*time.Millisecond),
	}

	cfg.Members = MembersConfig{
		CacheEnabled: v.GetBool("ENABLE_MEMBER_CACHE"),
		CacheTTL:     parseDuration(v.GetString("MEMBER_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Refresh = RefreshConfig{
		Enabled:          v.GetBool("ENABLE_REFRESH"),
		JoinRequestsSpec: v.GetString("REFRESH_JOIN_REQUESTS_SPEC"),
		ReportSpec:       v.GetString("REFRESH_REPORT_SPEC"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8090)

	v.SetDefault("API_BASE_URL", "http://localhost:5000")
	v.SetDefault("API_TIMEOUT", "30s")

	v.SetDefault("SESSION_BACKEND", SessionBackendMemory)
	v.SetDefault("SESSION_REDIS_KEY", "admin-console:session:token")
	v.SetDefault("SESSION_TTL", "24h")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RECONCILE_DELAY", "1500ms")

	v.SetDefault("ENABLE_MEMBER_CACHE", false)
	v.SetDefault("MEMBER_CACHE_TTL", "2m")

	v.SetDefault("ENABLE_REFRESH", false)
	v.SetDefault("REFRESH_JOIN_REQUESTS_SPEC", "@every 1m")
	v.SetDefault("REFRESH_REPORT_SPEC", "@every 15m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
