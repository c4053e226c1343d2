package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/JoshuaAmmons/econ-games/internal/logger"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	// Shared secret the experimenter console exchanges for an admin JWT.
	AdminToken string

	AllowedOrigin string

	// Redis is optional; with no address the rate limiter fails open.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DefaultRoundSeconds int

	APIRateLimit         int
	APIRateWindowSeconds int
	JoinRateLimit        int
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		logger.Fatal("ADMIN_TOKEN is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	roundSeconds := 180
	if v := os.Getenv("DEFAULT_ROUND_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			roundSeconds = n
		}
	}

	apiRateLimit := 30
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateLimit = n
		}
	}

	apiRateWindow := 60
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateWindow = n
		}
	}

	joinRateLimit := 10
	if v := os.Getenv("JOIN_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			joinRateLimit = n
		}
	}

	return &Config{
		AppPort:              port,
		DatabaseURL:          dbURL,
		JWTSecret:            jwtSecret,
		AdminToken:           adminToken,
		AllowedOrigin:        os.Getenv("ALLOWED_ORIGIN"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              redisDB,
		DefaultRoundSeconds:  roundSeconds,
		APIRateLimit:         apiRateLimit,
		APIRateWindowSeconds: apiRateWindow,
		JoinRateLimit:        joinRateLimit,
	}
}
