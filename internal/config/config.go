package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"

	AuthDemo   = "demo"
	AuthBcrypt = "bcrypt"
)

// Config holds every runtime setting of the service.
type Config struct {
	ServiceName string
	LoggerLevel string
	GinMode     string
	ServerPort  int

	StorageDriver string
	DataFile      string
	UsersFile     string
	SQLitePath    string
	DB            DBConfig

	AuthStrategy       string
	JWTSecret          string
	JWTExpirationHours int64

	SessionTTL        time.Duration
	SessionCookieName string
	CookieSecure      bool

	CORSAllowedOrigins []string
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "driver-dashboard"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "info"))
	cfg.GinMode = cast.ToString(getOrReturnDefault("GIN_MODE", "debug"))
	cfg.ServerPort = cast.ToInt(getOrReturnDefault("SERVER_PORT", 3000))

	cfg.StorageDriver = strings.ToLower(cast.ToString(getOrReturnDefault("STORAGE_DRIVER", StorageFile)))
	cfg.DataFile = cast.ToString(getOrReturnDefault("DATA_FILE", "data.json"))
	cfg.UsersFile = cast.ToString(getOrReturnDefault("USERS_FILE", "users.json"))
	cfg.SQLitePath = cast.ToString(getOrReturnDefault("SQLITE_PATH", "database.db"))

	cfg.DB = DBConfig{
		Host:     cast.ToString(getOrReturnDefault("DB_HOST", "localhost")),
		Port:     cast.ToString(getOrReturnDefault("DB_PORT", "5432")),
		User:     cast.ToString(getOrReturnDefault("DB_USER", "postgres")),
		Password: cast.ToString(getOrReturnDefault("DB_PASSWORD", "")),
		Name:     cast.ToString(getOrReturnDefault("DB_NAME", "drivers")),
	}

	cfg.AuthStrategy = strings.ToLower(cast.ToString(getOrReturnDefault("AUTH_STRATEGY", AuthDemo)))
	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET_KEY", ""))
	cfg.JWTExpirationHours = cast.ToInt64(getOrReturnDefault("JWT_EXPIRATION_HOURS", 24))
	if cfg.JWTExpirationHours <= 0 {
		cfg.JWTExpirationHours = 24
	}

	sessionHours := cast.ToInt(getOrReturnDefault("SESSION_TTL_HOURS", 24))
	if sessionHours <= 0 {
		sessionHours = 24
	}
	cfg.SessionTTL = time.Duration(sessionHours) * time.Hour
	cfg.SessionCookieName = cast.ToString(getOrReturnDefault("SESSION_COOKIE_NAME", "driver_session"))
	cfg.CookieSecure = cast.ToBool(getOrReturnDefault("COOKIE_SECURE", false))

	origins := cast.ToString(getOrReturnDefault("CORS_ALLOWED_ORIGINS", "*"))
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageFile, StorageSQLite, StoragePostgres:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (expected file, sqlite or postgres)", c.StorageDriver)
	}
	switch c.AuthStrategy {
	case AuthDemo, AuthBcrypt:
	default:
		return fmt.Errorf("unknown AUTH_STRATEGY %q (expected demo or bcrypt)", c.AuthStrategy)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY not set in environment")
	}
	return nil
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
