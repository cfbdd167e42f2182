package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBDriver    string
	DBDSN       string
	MediaDir    string
	LogFile     string
	LogLevel    string
	MaxUploadMB int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
}

func Load() Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	driver := strings.ToLower(getEnv("DB_DRIVER", "sqlite"))
	dsn := getEnv("DB_DSN", "")
	if dsn == "" {
		dsn = "funkoshop.db?_pragma=foreign_keys(1)"
		if driver == "mysql" {
			dsn = "funko:funko@tcp(localhost:3306)/funkoshop?parseTime=true"
		}
	}

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		DBDriver:      driver,
		DBDSN:         dsn,
		MediaDir:      getEnv("MEDIA_DIR", "./web/media"),
		LogFile:       getEnv("LOG_FILE", "./funkoshop.log"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		MaxUploadMB:   getEnvInt("MAX_UPLOAD_MB", 20),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s MEDIA_DIR=%s LOG_FILE=%s REDIS_ADDR=%s",
		cfg.Port, cfg.DBDriver, cfg.MediaDir, cfg.LogFile, cfg.RedisAddr)
	return cfg
}

// LookupEnv semantics: an explicitly empty variable wins over the fallback,
// so LOG_FILE= disables file logging.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return fallback
}
