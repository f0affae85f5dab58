package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Env  string
	Port int

	StorageDriver string
	DBURL         string
	DBMaxConns    int32
	MongoURI      string
	MongoDB       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret           string
	JWTAccessTTLMinutes int

	SeedName     string
	SeedEmail    string
	SeedPassword string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	LoginRateLimit     int
	WriteRateLimit     int

	OTelEndpoint    string
	OTelServiceName string
}

func Load() Config {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverPostgres)),
		DBURL:         getEnv("DATABASE_URL", buildDBURL()),
		DBMaxConns:    int32(getEnvInt("DB_MAX_CONNS", 5)),
		MongoURI:      getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:       getEnv("MONGO_DB", "blogspace"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 60),

		SeedName:     getEnv("SEED_NAME", "BlogSpace Admin"),
		SeedEmail:    getEnv("SEED_EMAIL", ""),
		SeedPassword: getEnv("SEED_PASSWORD", ""),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 5<<20)),
		LoginRateLimit:     getEnvInt("LOGIN_RATE_LIMIT", 10),
		WriteRateLimit:     getEnvInt("WRITE_RATE_LIMIT", 60),

		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "blogspace-api"),
	}
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.Env == "prod" && c.JWTSecret == "dev-secret-change-me" {
		return fmt.Errorf("JWT_SECRET must be set in prod")
	}

	return nil
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "blogspace")
	pass := getEnv("DB_PASSWORD", "blogspace")
	name := getEnv("DB_NAME", "blogspace")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + url.QueryEscape(pass) + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %s=%q is not an integer, using %d\n", key, v, fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}
