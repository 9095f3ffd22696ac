package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("WEBHOOK_SIGNING_SECRET", "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8088", cfg.App.Port)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Contains(t, cfg.DSN(), "dbname=squadup_db")
	assert.Contains(t, cfg.DSN(), "TimeZone=UTC")
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("JWT_ISSUER", "https://id.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.DB.MaxOpenConns)
	assert.Equal(t, "https://id.example.com", cfg.Auth.Issuer)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("bad integer", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DB_MAX_IDLE_CONNS", "many")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "DB_MAX_IDLE_CONNS")
	})
	t.Run("missing secret", func(t *testing.T) {
		setRequired(t)
		t.Setenv("JWT_SECRET", "")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})
}

func TestConfigureLogger(t *testing.T) {
	cfg := &Config{}
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	log, err := ConfigureLogger(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		log.SetLevel(logrus.InfoLevel)
		log.SetFormatter(&logrus.TextFormatter{})
	})
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	cfg.Log.Level = "loud"
	_, err = ConfigureLogger(cfg)
	assert.Error(t, err)
}
