package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreMySQL  = "mysql"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	BaseURL    string

	StoreDriver   string
	MySQLDSN      string
	MongoURI      string
	MongoDatabase string

	RedisAddr string
	RedisDB   int
	RedisPass string

	// Token keys are base64-encoded PEM blocks, one key pair per token role.
	AccessTokenPrivateKey  string
	AccessTokenPublicKey   string
	RefreshTokenPrivateKey string
	RefreshTokenPublicKey  string
	AccessTokenTTL         time.Duration
	RefreshTokenTTL        time.Duration

	CookieSecure bool
	CookieDomain string

	LoginRateLimit  int
	LoginRateWindow time.Duration

	// TrustedProxies lists CIDRs whose X-Forwarded-For is believed. Empty
	// means the socket address is the client address.
	TrustedProxies []string

	LogLevel string
	LogFile  string

	// OTLPEndpoint enables trace export when set.
	OTLPEndpoint string
	OTLPInsecure bool

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is read first when present; real environment
// variables take precedence over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:8080"),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMySQL)),
		MySQLDSN:      getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/bugscape?charset=utf8mb4&parseTime=True&loc=Local"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "bugscape"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		AccessTokenPrivateKey:  os.Getenv("ACCESS_TOKEN_PRIVATE_KEY"),
		AccessTokenPublicKey:   os.Getenv("ACCESS_TOKEN_PUBLIC_KEY"),
		RefreshTokenPrivateKey: os.Getenv("REFRESH_TOKEN_PRIVATE_KEY"),
		RefreshTokenPublicKey:  os.Getenv("REFRESH_TOKEN_PUBLIC_KEY"),
		AccessTokenTTL:         getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:        getEnvDuration("REFRESH_TOKEN_TTL", 365*24*time.Hour),

		CookieSecure: getEnvBool("COOKIE_SECURE", true),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),

		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 5),
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", time.Minute),
		TrustedProxies:  getEnvList("TRUSTED_PROXIES"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),

		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvDuration accepts Go duration strings ("15m", "8760h").
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
