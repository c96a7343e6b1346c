package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env        string
	ServerAddr string

	DatabaseURL string

	RedisURL        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTLSeconds int

	JWTSecret         string
	SessionTTLMinutes int
	CookieSecure      bool

	FrontendOrigin string

	RateLimitAuth      int
	RateLimitHits      int
	RateLimitWindowSec int

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	UploadTempDir       string
	MaxUploadBytes      int64
	MaxUploadFiles      int
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func Load() (*Config, error) {
	loadDotEnv(".env")

	cfg := &Config{
		Env:        getEnv("APP_ENV", "development"),
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 60),

		JWTSecret:         getEnv("JWT_SECRET", ""),
		SessionTTLMinutes: getEnvInt("SESSION_TTL_MINUTES", 10080),
		CookieSecure:      getEnv("COOKIE_SECURE", "false") == "true",

		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),

		RateLimitAuth:      getEnvInt("RATE_LIMIT_AUTH", 10),
		RateLimitHits:      getEnvInt("RATE_LIMIT_HITS", 60),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "projectshelf"),
		UploadTempDir:       getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
		MaxUploadBytes:      getEnvInt64("MAX_UPLOAD_BYTES", 10*1024*1024),
		MaxUploadFiles:      getEnvInt("MAX_UPLOAD_FILES", 10),
	}

	return cfg, nil
}

func loadDotEnv(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
}
