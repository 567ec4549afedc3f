package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=bloodbank port=5432 sslmode=disable"

type Config struct {
	HTTPPort       string
	DBDriver       string // postgres | mysql | sqlite
	DatabaseDSN    string
	JWTSecret      string
	JWTIssuer      string
	TokenTTL       time.Duration
	CORSOrigins    string
	RedisAddr      string // empty: idempotency keys are kept in memory
	IdempotencyTTL time.Duration
}

func Load() *Config {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] could not read .env: %v", err)
	}

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "5001"),
		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "blood-bank-api"),
		TokenTTL:       getDuration("TOKEN_TTL", 30*24*time.Hour),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN is using the default value, set your own Postgres DSN in production")
	}
	if cfg.CORSOrigins == "http://localhost:3000" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is using the default value")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[WARN] invalid %s (%q), using default %s", key, v, def)
		return def
	}
	return d
}
