package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	RemoteURL      string
	RemoteKey      string
	LocalDBPath    string
	SessionFile    string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins string
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		RemoteURL:      os.Getenv("REMOTE_DB_URL"),
		RemoteKey:      os.Getenv("REMOTE_DB_KEY"),
		LocalDBPath:    getEnv("LOCAL_DB_PATH", "casino.db"),
		SessionFile:    getEnv("SESSION_FILE", "session.ref"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:       getDuration("TOKEN_TTL_MINUTES", 60),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
	}
}

// RemoteEnabled reports whether the networked backend is configured. The
// decision is made once at startup and holds for the process lifetime.
func (c Config) RemoteEnabled() bool {
	return c.RemoteURL != "" && c.RemoteKey != ""
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getDuration(key string, fallbackMinutes int) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(fallbackMinutes) * time.Minute
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return time.Duration(fallbackMinutes) * time.Minute
	}
	return time.Duration(parsed) * time.Minute
}
