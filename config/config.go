package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	APIURL    string
	DBDriver  string
	DBDSN     string
	JWTKey    string
	SaltRound int

	UploadDir      string
	MaxUploadBytes int64
	OrphanSweep    string
	OrphanGrace    time.Duration

	SessionFile string
	LogLevel    string

	AdminEmail    string
	AdminPassword string

	warnings []string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig reads .env (if present) and the environment. The result is
// also stored in AppConfig.
func LoadConfig() *Config {
	cfg := &Config{}
	if err := godotenv.Load(); err != nil {
		cfg.warn(".env file not found, using system environment variables")
	}

	cfg.Port = getEnv("PORT", "8000")
	cfg.APIURL = getEnv("API_URL", "http://localhost:"+cfg.Port+"/")
	cfg.DBDriver = getEnv("DB_DRIVER", "sqlite")
	cfg.DBDSN = getEnv("DB_DSN", "capacitaciones.db")
	cfg.JWTKey = getEnv("JWT_SECRET_KEY", "defaultSecret")
	cfg.SaltRound = cfg.getEnvInt("SALT_ROUND", 10)

	cfg.UploadDir = getEnv("UPLOAD_DIR", "media")
	cfg.MaxUploadBytes = int64(cfg.getEnvInt("MAX_UPLOAD_BYTES", 5<<20))
	cfg.OrphanSweep = getEnv("ORPHAN_SWEEP_SPEC", "@every 1h")
	cfg.OrphanGrace = cfg.getEnvDuration("ORPHAN_GRACE", 24*time.Hour)

	cfg.SessionFile = getEnv("SESSION_FILE", defaultSessionFile())
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	cfg.AdminEmail = getEnv("ADMIN_EMAIL", "admin@capacitaciones.local")
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "admin1234")

	if cfg.JWTKey == "defaultSecret" {
		cfg.warn("using default JWT_SECRET_KEY, update it in your environment")
	}
	if os.Getenv("ADMIN_PASSWORD") == "" {
		cfg.warn("using default ADMIN_PASSWORD for the seeded admin")
	}

	AppConfig = cfg
	return cfg
}

// Warnings lists problems found while loading. They are returned rather
// than logged because the logger is built from this config.
func (c *Config) Warnings() []string { return c.warnings }

func (c *Config) warn(msg string) { c.warnings = append(c.warnings, msg) }

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".capacitaciones-session.json"
	}
	return filepath.Join(home, ".capacitaciones", "session.json")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func (c *Config) getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		c.warn("invalid integer in " + key + ": " + err.Error())
		return defaultValue
	}
	return intValue
}

func (c *Config) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		c.warn("invalid duration in " + key + ": " + err.Error())
		return defaultValue
	}
	return d
}
