package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EngineBackendYtDlp   = "ytdlp"
	EngineBackendYouTube = "youtube"
)

type Config struct {
	Server   ServerConfig
	Engine   EngineConfig
	Download DownloadConfig
	API      APIConfig
	CORS     CORSConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port              string
	Host              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	MaxBodyBytes      int64
}

type EngineConfig struct {
	Backend           string
	BinaryPath        string
	AutoInstall       bool
	FFmpegPath        string
	SocketTimeout     time.Duration
	InfoSocketTimeout time.Duration
	Retries           int
	FragmentRetries   int
	MP3Quality        string
}

type DownloadConfig struct {
	TempDir                string
	MaxConcurrentDownloads int
	DownloadTimeout        time.Duration
	InfoTimeout            time.Duration
	MaxFileSize            int64
	StaleAfter             time.Duration
}

type APIConfig struct {
	APIKey            string
	JWTSecret         string
	JWTIssuer         string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// AuthEnabled reports whether the extraction endpoints require credentials.
func (c APIConfig) AuthEnabled() bool {
	return c.APIKey != "" || c.JWTSecret != ""
}

type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
	Profile          string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{}
	var err error

	// Server configuration. PORT is what most PaaS runtimes inject.
	cfg.Server.Port = getEnv("PORT", getEnv("SERVER_PORT", "10000"))
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", cfg.Server.Port, err)
	}
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")
	if cfg.Server.ReadHeaderTimeout, err = getEnvDuration("SERVER_READ_HEADER_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.ShutdownTimeout, err = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Server.MaxBodyBytes, err = getEnvInt64("MAX_REQUEST_BODY_BYTES", 1<<20); err != nil {
		return nil, err
	}

	// Engine configuration
	cfg.Engine.Backend = strings.ToLower(getEnv("ENGINE_BACKEND", EngineBackendYtDlp))
	if cfg.Engine.Backend != EngineBackendYtDlp && cfg.Engine.Backend != EngineBackendYouTube {
		return nil, fmt.Errorf("invalid ENGINE_BACKEND %q: must be %s or %s", cfg.Engine.Backend, EngineBackendYtDlp, EngineBackendYouTube)
	}
	cfg.Engine.BinaryPath = getEnv("YTDLP_PATH", "")
	cfg.Engine.AutoInstall = getEnvBool("YTDLP_AUTO_INSTALL", false)
	cfg.Engine.FFmpegPath = getEnv("FFMPEG_PATH", "ffmpeg")
	if cfg.Engine.SocketTimeout, err = getEnvDuration("ENGINE_SOCKET_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Engine.InfoSocketTimeout, err = getEnvDuration("ENGINE_INFO_SOCKET_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Engine.Retries, err = getEnvInt("ENGINE_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.Engine.FragmentRetries, err = getEnvInt("ENGINE_FRAGMENT_RETRIES", 3); err != nil {
		return nil, err
	}
	cfg.Engine.MP3Quality = getEnv("MP3_QUALITY", "192")

	// Download configuration
	cfg.Download.TempDir = getEnv("TEMP_DIR", os.TempDir())
	if cfg.Download.MaxConcurrentDownloads, err = getEnvInt("MAX_CONCURRENT_DOWNLOADS", 0); err != nil {
		return nil, err
	}
	if cfg.Download.DownloadTimeout, err = getEnvDuration("DOWNLOAD_TIMEOUT", "300s"); err != nil {
		return nil, err
	}
	if cfg.Download.InfoTimeout, err = getEnvDuration("INFO_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Download.MaxFileSize, err = getEnvInt64("MAX_FILE_SIZE", 2*1024*1024*1024); err != nil { // 2GB default
		return nil, err
	}
	if cfg.Download.StaleAfter, err = getEnvDuration("SCRATCH_STALE_AFTER", "1h"); err != nil {
		return nil, err
	}

	// API configuration
	cfg.API.APIKey = getEnv("API_KEY", "")
	cfg.API.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.API.JWTIssuer = getEnv("JWT_ISSUER", "mediagrab")
	if cfg.API.RateLimitRequests, err = getEnvInt("RATE_LIMIT_REQUESTS", 30); err != nil {
		return nil, err
	}
	if cfg.API.RateLimitWindow, err = getEnvDuration("RATE_LIMIT_WINDOW", "1m"); err != nil {
		return nil, err
	}

	// CORS configuration
	if _, err = getEnvInt("CORS_MAX_AGE", 0); err != nil {
		return nil, err
	}
	cfg.CORS = loadCORSConfig()

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return intValue, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return intValue, nil
}

// getEnvIntOr is used by the CORS profiles; Load has already rejected bad values
func getEnvIntOr(key string, defaultValue int) int {
	if v, err := getEnvInt(key, defaultValue); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(strings.TrimSpace(value), ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// loadCORSConfig loads CORS configuration based on profile or custom settings
func loadCORSConfig() CORSConfig {
	profile := getEnv("CORS_PROFILE", "custom")

	switch profile {
	case "development":
		return getDevelopmentCORSConfig()
	case "production":
		return getProductionCORSConfig()
	default:
		return getCustomCORSConfig()
	}
}

// getDevelopmentCORSConfig returns permissive CORS settings for development
func getDevelopmentCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled: getEnvBool("CORS_ENABLED", true),
		AllowedOrigins: getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8080",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
			"http://127.0.0.1:8080",
		}),
		AllowedMethods: getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders: getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{
			"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-API-Key", "X-Correlation-ID",
		}),
		ExposedHeaders:   getEnvStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Disposition", "Content-Length", "X-Request-ID"}),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
		MaxAge:           getEnvIntOr("CORS_MAX_AGE", 86400),
		Profile:          "development",
	}
}

// getProductionCORSConfig returns restrictive CORS settings for production
func getProductionCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:          getEnvBool("CORS_ENABLED", true),
		AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{}),
		AllowedMethods:   getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders:   getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"}),
		ExposedHeaders:   getEnvStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Disposition", "Content-Length"}),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
		MaxAge:           getEnvIntOr("CORS_MAX_AGE", 3600),
		Profile:          "production",
	}
}

// getCustomCORSConfig returns CORS settings from individual environment variables.
// The default accepts any origin, which suits a personal deployment.
func getCustomCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:          getEnvBool("CORS_ENABLED", true),
		AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AllowedMethods:   getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders:   getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"}),
		ExposedHeaders:   getEnvStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Disposition", "Content-Length"}),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
		MaxAge:           getEnvIntOr("CORS_MAX_AGE", 3600),
		Profile:          "custom",
	}
}
