package config

import (
	"errors"
	"os"
	"strings"
)

// AppConfig holds process-wide settings loaded once at startup
type AppConfig struct {
	Environment        string
	ServerPort         string
	JWTSecret          string
	InitialAdminEmail  string
	CORSAllowedOrigins []string
}

// Load reads the application configuration from environment variables. A
// missing signing secret is fatal: no route can work without it.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Environment:        getEnv("APP_ENV", "development"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		JWTSecret:          os.Getenv("JWT_SECRET_KEY"),
		InitialAdminEmail:  os.Getenv("INITIAL_ADMIN_EMAIL"),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET_KEY not set in environment")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		var cleaned []string
		for _, p := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
