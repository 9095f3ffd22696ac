package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	App struct {
		Env         string
		Port        string
		FrontendURL string
	}
	DB struct {
		Host                  string
		Port                  string
		User                  string
		Password              string
		Name                  string
		SSLMode               string
		MaxOpenConns          int
		MaxIdleConns          int
		ConnMaxLifetimeMinute int
		ConnectTimeoutSeconds int
	}
	Auth struct {
		JWTSecret string // HMAC key shared with the identity provider's JWT template
		Issuer    string // expected "iss"; empty disables the check
	}
	Webhook struct {
		SigningSecret string // "whsec_..." from the provider dashboard
	}
	Log struct {
		Level  string
		Format string // "json" or "text"
	}
}

// Global DB instance, accessible after ConnectDB() is called via Initialize.
var DB *gorm.DB

// Global AppConfig instance, accessible after LoadConfig() is called via Initialize.
var appConfig *Config
var once sync.Once // Used for singleton pattern to load config only once

// LoadConfig loads configuration from environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	// Load .env file. It's okay if it doesn't exist, especially in production
	// where env vars are set directly.
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on system environment variables")
	}

	cfg := &Config{}

	// --- App Configuration ---
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.Port = getEnv("PORT", "8088")
	cfg.App.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:3000")

	// --- Database Configuration ---
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "password")
	cfg.DB.Name = getEnv("DB_NAME", "squadup_db")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	var err error
	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"DB_MAX_OPEN_CONNS", 25, &cfg.DB.MaxOpenConns},
		{"DB_MAX_IDLE_CONNS", 5, &cfg.DB.MaxIdleConns},
		{"DB_CONN_MAX_LIFETIME_MINUTES", 30, &cfg.DB.ConnMaxLifetimeMinute},
		{"DB_CONNECT_TIMEOUT_SECONDS", 60, &cfg.DB.ConnectTimeoutSeconds},
	}
	for _, v := range ints {
		if *v.dst, err = getEnvAsInt(v.key, v.fallback); err != nil {
			return nil, err
		}
	}

	// --- Auth Configuration ---
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Auth.Issuer = getEnv("JWT_ISSUER", "")
	cfg.Webhook.SigningSecret = getEnv("WEBHOOK_SIGNING_SECRET", "")

	// --- Logging ---
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "")
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		}
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.Webhook.SigningSecret == "" {
		return nil, fmt.Errorf("WEBHOOK_SIGNING_SECRET must be set")
	}
	if cfg.DB.Password == "password" && cfg.App.Env == "production" {
		logrus.Warn("Using default DB password in production. Please set DB_PASSWORD environment variable.")
	}

	return cfg, nil
}

// ConfigureLogger applies the level and format settings to the standard logrus logger.
func ConfigureLogger(cfg *Config) (*logrus.Logger, error) {
	log := logrus.StandardLogger()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	if strings.EqualFold(cfg.Log.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

// DSN renders the Postgres connection string. Timestamps are stored in UTC.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DB.Host,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.Port,
		c.DB.SSLMode,
	)
}

// ConnectDB opens the database, retrying with exponential backoff until
// DB_CONNECT_TIMEOUT_SECONDS elapses. It sets the global DB variable.
func ConnectDB(cfg *Config, log *logrus.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.App.Env == "development" {
		level = logger.Info // Log SQL queries in development
	}
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = time.Duration(cfg.DB.ConnectTimeoutSeconds) * time.Second

	var gormDB *gorm.DB
	connect := func() error {
		db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := sqlDB.Ping(); err != nil {
			_ = sqlDB.Close()
			return err
		}
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.ConnMaxLifetimeMinute) * time.Minute)
		gormDB = db
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.WithError(err).WithField("retry_in", wait.String()).Warn("database not reachable yet")
	}
	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = gormDB
	log.WithFields(logrus.Fields{"host": cfg.DB.Host, "db": cfg.DB.Name}).Info("connected to database")
	return gormDB, nil
}

// Initialize loads all configurations, sets up logging and connects to the
// database. This should be called once at the start of the application.
func Initialize() error {
	var loadErr error
	once.Do(func() {
		loadedCfg, err := LoadConfig()
		if err != nil {
			loadErr = fmt.Errorf("failed to load configuration: %w", err)
			return
		}
		appConfig = loadedCfg

		log, err := ConfigureLogger(appConfig)
		if err != nil {
			loadErr = err
			return
		}
		if _, err = ConnectDB(appConfig, log); err != nil {
			loadErr = fmt.Errorf("failed to connect to database during initialization: %w", err)
			return
		}
	})
	return loadErr
}

// GetConfig returns the loaded application configuration.
func GetConfig() *Config {
	if appConfig == nil {
		logrus.Fatal("Configuration not loaded. Call config.Initialize() first.")
	}
	return appConfig
}

// Helper function to get an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get an environment variable as an integer or return a default value.
func getEnvAsInt(key string, fallback int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected integer, got '%s'", key, valueStr)
	}
	return value, nil
}
