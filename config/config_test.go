package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Uploads.MaxSizeMB)
	assert.Contains(t, cfg.Uploads.AllowedExtensions, ".pdf")
	assert.Equal(t, "local", cfg.Storage.Blob().Driver)
	assert.Equal(t, 587, cfg.SMTP.Notify().Port)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "mongo")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("R2_BUCKET", "quotes")
	t.Setenv("OPENAI_TIMEOUT", "5s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.URI)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "quotes", cfg.Storage.Blob().R2.Bucket)
	assert.Equal(t, 5*time.Second, cfg.OpenAI.Timeout)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("server:\n  port: 7000\nlogging:\n  level: debug\n  format: console\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "memory"},
			Uploads:  UploadsConfig{MaxSizeMB: 5},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Database.Driver = "mongo"
	assert.ErrorContains(t, cfg.Validate(), "database.uri")

	cfg = base()
	cfg.Database.Driver = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "unknown database driver")

	cfg = base()
	cfg.Uploads.MaxSizeMB = 0
	assert.Error(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Str("quote_id", "q1").Msg("shown")
	assert.Contains(t, buf.String(), `"quote_id":"q1"`)
	assert.Contains(t, buf.String(), `"service":"climaquote"`)

	assert.Equal(t, zerolog.InfoLevel, newLogger(LoggingConfig{Level: "bogus"}, &buf).GetLevel())
}
