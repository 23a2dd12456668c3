package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            string
	MongoURI        string
	MongoDB         string
	JWTSecret       string
	FacebookAppID   string
	FacebookSecret  string
	RedisAddr       string
	RateLimitPerMin int
	RabbitURL       string
	DDEnabled       bool
	Prod            bool
}

func Load() Config {
	return Config{
		Port:            getenv("APP_PORT", "8080"),
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getenv("MONGO_DB", "identity_db"),
		JWTSecret:       getenv("JWT", "default_secret_key"),
		FacebookAppID:   getenv("FB_APP_ID", ""),
		FacebookSecret:  getenv("FB_APP_SECRET", ""),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RateLimitPerMin: atoi(getenv("RATE_LIMIT_PER_MIN", "5")),
		RabbitURL:       getenv("RABBIT_URL", ""),
		DDEnabled:       getenv("DD_ENABLED", "") == "true",
		Prod:            getenv("APP_ENV", "dev") == "prod",
	}
}

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
