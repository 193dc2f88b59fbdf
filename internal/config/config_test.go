package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  host: db.internal
  port: 5433
  database: cafepos_test

rabbitmq:
  host: mq.internal
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "cafepos_test", cfg.Database.Database)
	// Unset values keep their defaults.
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "mq.internal", cfg.RabbitMQ.Host)
	assert.Equal(t, 5672, cfg.RabbitMQ.Port)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "cafepos", cfg.Database.Database)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CAFEPOS_DATABASE_HOST", "env-host")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Database.Host)
}

func TestURLs(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d"},
		RabbitMQ: RabbitMQConfig{Host: "r", Port: 5672, User: "g", Password: "g"},
	}

	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.DatabaseURL())
	assert.Equal(t, "amqp://g:g@r:5672/", cfg.RabbitMQURL())
}
