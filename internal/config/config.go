package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Backend  BackendConfig
	Session  SessionConfig
	Cookie   CookieConfig
	Log      LogConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Preview  PreviewConfig
}

// BackendConfig points at the clinic REST backend and its file storage
type BackendConfig struct {
	APIURL         string
	FileUploadsURL string
	Timeout        time.Duration
}

// SessionConfig holds the key used to seal the session cookie
type SessionConfig struct {
	Secret     string
	CookieName string
	MaxAge     time.Duration
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string
	Format string
}

// RedisConfig enables the Redis list snapshot store when Addr is set
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig holds the optional administrative-division database.
// DivisionsFile replaces the embedded division dataset when set.
type DatabaseConfig struct {
	DivisionsFile string
	Enabled       bool
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
}

// PreviewConfig controls how long unreleased asset previews live
type PreviewConfig struct {
	TTL       time.Duration
	SweepSpec string
	MaxBytes  int64
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Backend:  loadBackendConfig(),
		Session:  loadSessionConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Log:      loadLogConfig(appMode),
		Redis:    loadRedisConfig(),
		Database: loadDatabaseConfig(appMode),
		Preview:  loadPreviewConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// Validate rejects configurations the console cannot run with
func (c *Config) Validate() error {
	if c.Backend.APIURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	if c.Backend.FileUploadsURL == "" {
		return fmt.Errorf("FILE_UPLOADS_URL is required")
	}
	if c.IsProd() && c.Session.Secret == defaultSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set in prod mode")
	}
	return nil
}

const defaultSessionSecret = "dev_session_secret"

func loadBackendConfig() BackendConfig {
	return BackendConfig{
		APIURL:         strings.TrimRight(getEnv("API_URL", ""), "/"),
		FileUploadsURL: strings.TrimRight(getEnv("FILE_UPLOADS_URL", ""), "/"),
		Timeout:        time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func loadSessionConfig(mode string) SessionConfig {
	prefix := modePrefix(mode)
	return SessionConfig{
		Secret:     getEnv(prefix+"SESSION_SECRET", getEnv("SESSION_SECRET", defaultSessionSecret)),
		CookieName: "token",
		MaxAge:     time.Duration(getEnvInt("SESSION_MAX_AGE_HOURS", 24)) * time.Hour,
	}
}

func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadLogConfig(mode string) LogConfig {
	format := "json"
	if mode == "dev" {
		format = "console"
	}
	return LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", format),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)
	enabled, _ := strconv.ParseBool(getEnv("DIVISIONS_DB_ENABLED", "false"))

	return DatabaseConfig{
		DivisionsFile: getEnv("DIVISIONS_FILE", ""),
		Enabled:       enabled,
		Host:          getEnv(prefix+"DB_HOST", "localhost"),
		Port:          getEnv(prefix+"DB_PORT", "3306"),
		User:          getEnv(prefix+"DB_USER", "root"),
		Password:      getEnv(prefix+"DB_PASS", ""),
		DBName:        getEnv(prefix+"DB_NAME", "clinic_console"),
	}
}

func loadPreviewConfig() PreviewConfig {
	return PreviewConfig{
		TTL:       time.Duration(getEnvInt("PREVIEW_TTL_MINUTES", 30)) * time.Minute,
		SweepSpec: getEnv("PREVIEW_SWEEP_SPEC", "@every 5m"),
		MaxBytes:  int64(getEnvInt("PREVIEW_MAX_MB", 10)) << 20,
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://console.clinic.local"
	}
	return origins
}
