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

const (
	MediaBackendLocal = "local"
	MediaBackendMinIO = "minio"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream UpstreamConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Session  SessionConfig
	Listing  ListingConfig
	Media    MediaConfig
	Audit    AuditConfig
	Exports  ExportsConfig
	Live     LiveConfig
	Drafts   DraftsConfig
}

// UpstreamConfig points the gateway at the alumni REST API.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
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

// SessionConfig controls how resolved sessions are cached.
type SessionConfig struct {
	CacheTTL time.Duration
}

// ListingConfig bounds list descriptors and tunes search debouncing.
type ListingConfig struct {
	DefaultLimit   int
	MaxLimit       int
	SearchDebounce time.Duration
}

// MediaConfig governs image upload validation and the hosting backend.
type MediaConfig struct {
	Backend         string
	MaxUploadMB     int
	AllowedMIMEs    []string
	StorageDir      string
	PublicBaseURL   string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	MinIO           MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLExpiry time.Duration
}

// AuditConfig toggles persistence of dispatched mutations.
type AuditConfig struct {
	Enabled    bool
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// ExportsConfig caps directory exports.
type ExportsConfig struct {
	MaxPages int
}

// LiveConfig tunes websocket list sessions.
type LiveConfig struct {
	Enabled      bool
	ReadLimit    int64
	PingInterval time.Duration
	PongWait     time.Duration
}

// DraftsConfig controls how long step-one registration drafts are kept.
type DraftsConfig struct {
	TTL time.Duration
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Upstream = UpstreamConfig{
		BaseURL: strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 10*time.Second),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
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

	cfg.Session = SessionConfig{
		CacheTTL: parseDuration(v.GetString("SESSION_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Listing = ListingConfig{
		DefaultLimit:   positiveOr(v.GetInt("LISTING_DEFAULT_LIMIT"), 10),
		MaxLimit:       positiveOr(v.GetInt("LISTING_MAX_LIMIT"), 100),
		SearchDebounce: parseDuration(v.GetString("LISTING_SEARCH_DEBOUNCE"), 500*time.Millisecond),
	}

	cfg.Media = MediaConfig{
		Backend:         strings.ToLower(v.GetString("MEDIA_BACKEND")),
		MaxUploadMB:     positiveOr(v.GetInt("MEDIA_MAX_UPLOAD_MB"), 25),
		AllowedMIMEs:    splitAndTrim(v.GetString("MEDIA_ALLOWED_MIME_TYPES")),
		StorageDir:      v.GetString("MEDIA_STORAGE_DIR"),
		PublicBaseURL:   strings.TrimRight(v.GetString("MEDIA_PUBLIC_BASE_URL"), "/"),
		SignedURLSecret: v.GetString("MEDIA_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("MEDIA_SIGNED_URL_TTL"), 7*24*time.Hour),
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			URLExpiry: parseDuration(v.GetString("MINIO_URL_EXPIRY"), 7*24*time.Hour),
		},
	}

	cfg.Audit = AuditConfig{
		Enabled:    v.GetBool("ENABLE_AUDIT"),
		Workers:    positiveOr(v.GetInt("AUDIT_WORKERS"), 1),
		MaxRetries: positiveOr(v.GetInt("AUDIT_MAX_RETRIES"), 3),
		RetryDelay: parseDuration(v.GetString("AUDIT_RETRY_DELAY"), time.Second),
	}

	cfg.Exports = ExportsConfig{
		MaxPages: positiveOr(v.GetInt("EXPORT_MAX_PAGES"), 50),
	}

	cfg.Live = LiveConfig{
		Enabled:      v.GetBool("ENABLE_LIVE"),
		ReadLimit:    v.GetInt64("LIVE_READ_LIMIT"),
		PingInterval: parseDuration(v.GetString("LIVE_PING_INTERVAL"), 30*time.Second),
		PongWait:     parseDuration(v.GetString("LIVE_PONG_WAIT"), 60*time.Second),
	}

	cfg.Drafts = DraftsConfig{
		TTL: parseDuration(v.GetString("REGISTRATION_DRAFT_TTL"), 30*time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:5000/api")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "alumni_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SESSION_CACHE_TTL", "5m")

	v.SetDefault("LISTING_DEFAULT_LIMIT", 10)
	v.SetDefault("LISTING_MAX_LIMIT", 100)
	v.SetDefault("LISTING_SEARCH_DEBOUNCE", "500ms")

	v.SetDefault("MEDIA_BACKEND", MediaBackendLocal)
	v.SetDefault("MEDIA_MAX_UPLOAD_MB", 25)
	v.SetDefault("MEDIA_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/gif,image/webp")
	v.SetDefault("MEDIA_STORAGE_DIR", "./media")
	v.SetDefault("MEDIA_PUBLIC_BASE_URL", "http://localhost:8080/api/v1/media")
	v.SetDefault("MEDIA_SIGNED_URL_SECRET", "dev_media_secret")
	v.SetDefault("MEDIA_SIGNED_URL_TTL", "168h")
	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "alumni-media")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_URL_EXPIRY", "168h")

	v.SetDefault("ENABLE_AUDIT", false)
	v.SetDefault("AUDIT_WORKERS", 1)
	v.SetDefault("AUDIT_MAX_RETRIES", 3)
	v.SetDefault("AUDIT_RETRY_DELAY", "1s")

	v.SetDefault("EXPORT_MAX_PAGES", 50)

	v.SetDefault("ENABLE_LIVE", true)
	v.SetDefault("LIVE_READ_LIMIT", 4096)
	v.SetDefault("LIVE_PING_INTERVAL", "30s")
	v.SetDefault("LIVE_PONG_WAIT", "60s")

	v.SetDefault("REGISTRATION_DRAFT_TTL", "30m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
