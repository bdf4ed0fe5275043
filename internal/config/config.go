package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development signing secret. Refused when Env is "prod".
const DefaultJWTSecret = "supersecretkey"

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	JWTSecret string
	// JWTAlgorithm is the HMAC signing method name: HS256 (default), HS384 or HS512.
	JWTAlgorithm string
	// TokenTTL is the bearer token lifetime (default one week). Set via TOKEN_TTL, e.g. "30m" or "168h".
	TokenTTL time.Duration
	// BcryptCost is the bcrypt work factor used for new password hashes.
	BcryptCost int

	// AdminUsername, AdminEmail and AdminPassword create an administrator at startup when all are set.
	AdminUsername string
	AdminEmail    string
	AdminPassword string

	// StorageBackend is "local" (default) or "s3".
	StorageBackend string
	UploadDir      string
	// MaxUploadBytes caps a single multipart upload (default 100 MiB).
	MaxUploadBytes int64

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// RedisAddr enables the statistics cache when reachable.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StatsCacheTTL time.Duration
	// StatsRefreshCron is a cron expression for warming the statistics cache. Empty disables it.
	StatsRefreshCron string

	// AMQPURL enables domain event publishing. Empty disables it.
	AMQPURL   string
	AMQPQueue string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the API listens with plain HTTP.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// TrustProxyHeaders makes the auth rate limiter key clients by X-Forwarded-For
	// or X-Real-IP. Enable only behind a reverse proxy that sets those headers;
	// otherwise clients can pick their own bucket.
	TrustProxyHeaders bool

	// CORSAllowedOrigins is a list of origins allowed for CORS (e.g. https://app.example.com, http://localhost:3000).
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent (same-origin only).
	CORSAllowedOrigins []string
}

// Load reads the environment, after applying a .env file from the working directory if one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "landlab"),
		DBUser: getEnv("DB_USER", "landlab"),
		DBPass: getEnv("DB_PASS", "landlab"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		Env: getEnv("ENV", "dev"),

		JWTSecret:    getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTAlgorithm: strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256")),
		TokenTTL:     getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:   getEnvInt("BCRYPT_COST", 12),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 100<<20)),

		S3Bucket:    getEnv("S3_BUCKET", "landlab"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		StatsCacheTTL:    getEnvDuration("STATS_CACHE_TTL", 5*time.Minute),
		StatsRefreshCron: getEnv("STATS_REFRESH_CRON", "*/5 * * * *"),

		AMQPURL:   getEnv("AMQP_URL", ""),
		AMQPQueue: getEnv("AMQP_QUEUE", "landlab.events"),

		// Optional TLS configuration for HTTPS.
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// supportedAlgorithms are the HMAC methods the token manager accepts.
var supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

// Validate reports configuration that must not reach a running server.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.Env == "prod" && c.JWTSecret == DefaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in prod"))
	}
	if !supportedAlgorithms[c.JWTAlgorithm] {
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not supported", c.JWTAlgorithm))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.StorageBackend != "local" && c.StorageBackend != "s3" {
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND %q is not supported", c.StorageBackend))
	}
	return errors.Join(errs...)
}

// DatabaseURL returns the postgres URL form of the connection settings, as used by migrations.
func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
