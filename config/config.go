package config

import (
	"os"
	"strings"
	"time"
)

// Config holds all environment-driven settings.
type Config struct {
	Port           string
	Env            string
	MongoURI       string
	MongoDB        string
	RedisURL       string
	JWTSecret      string
	AllowedOrigins []string
	ReservationTTL time.Duration
	SweepInterval  time.Duration
	IdempotencyTTL time.Duration
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", "4000"),
		Env:            getEnv("ENV", "development"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "stylemaven"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "https://stylemaven.onrender.com,https://stylemavenadmin.onrender.com")),
		ReservationTTL: getDuration("RESERVATION_TTL", 15*time.Minute),
		SweepInterval:  getDuration("SWEEP_INTERVAL", time.Minute),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
