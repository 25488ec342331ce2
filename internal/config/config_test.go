package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("missing", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "missing", cfg.Env)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 15, cfg.Server.ReadTimeout)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "", cfg.Events.Driver)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Empty(t, cfg.Grpc.Port)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
env: test
server:
  port: "9000"
  cors_origins:
    - http://localhost:3000
grpc:
  port: "9090"
database:
  host: db.internal
  user: file-user
  name: staff
events:
  driver: kafka
  kafka:
    brokers:
      - kafka:9092
    topic: staff.events
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.test.yaml"), []byte(yaml), 0o600))

	t.Setenv("DB_USER", "env-user")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("HTTP_PORT", "8081")

	cfg, err := load("test", dir)
	require.NoError(t, err)

	t.Run("file values", func(t *testing.T) {
		assert.Equal(t, "test", cfg.Env)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "staff", cfg.Database.DBName)
		assert.Equal(t, "9090", cfg.Grpc.Port)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
		assert.Equal(t, "kafka", cfg.Events.Driver)
		assert.Equal(t, []string{"kafka:9092"}, cfg.Events.Kafka.Brokers)
		assert.Equal(t, "staff.events", cfg.Events.Kafka.Topic)
	})

	t.Run("env overrides file", func(t *testing.T) {
		assert.Equal(t, "env-user", cfg.Database.User)
		assert.Equal(t, "secret", cfg.Database.Password)
		assert.Equal(t, "8081", cfg.Server.Port)
	})
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.bad.yaml"), []byte("server: [unclosed"), 0o600))

	_, err := load("bad", dir)
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "app",
		Password: "pw",
		DBName:   "employees",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://app:pw@localhost:5432/employees?sslmode=disable", c.DSN())
}
