package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"BRIDGE_APP_NAME":                os.Getenv("BRIDGE_APP_NAME"),
		"BRIDGE_APP_ENV":                 os.Getenv("BRIDGE_APP_ENV"),
		"BRIDGE_APP_PORT":                os.Getenv("BRIDGE_APP_PORT"),
		"BRIDGE_DATABASE_DRIVER":         os.Getenv("BRIDGE_DATABASE_DRIVER"),
		"BRIDGE_DATABASE_HOST":           os.Getenv("BRIDGE_DATABASE_HOST"),
		"BRIDGE_DATABASE_PORT":           os.Getenv("BRIDGE_DATABASE_PORT"),
		"BRIDGE_DATABASE_USER":           os.Getenv("BRIDGE_DATABASE_USER"),
		"BRIDGE_DATABASE_PASSWORD":       os.Getenv("BRIDGE_DATABASE_PASSWORD"),
		"BRIDGE_DATABASE_DBNAME":         os.Getenv("BRIDGE_DATABASE_DBNAME"),
		"BRIDGE_DATABASE_SSLMODE":        os.Getenv("BRIDGE_DATABASE_SSLMODE"),
		"BRIDGE_DATABASE_MAX_OPEN_CONNS": os.Getenv("BRIDGE_DATABASE_MAX_OPEN_CONNS"),
		"BRIDGE_DATABASE_MAX_IDLE_CONNS": os.Getenv("BRIDGE_DATABASE_MAX_IDLE_CONNS"),
		"BRIDGE_REMOTE_URL":              os.Getenv("BRIDGE_REMOTE_URL"),
		"BRIDGE_REMOTE_API_KEY":          os.Getenv("BRIDGE_REMOTE_API_KEY"),
		"BRIDGE_REMOTE_VERIFY_TLS":       os.Getenv("BRIDGE_REMOTE_VERIFY_TLS"),
		"BRIDGE_SYNC_BATCH_SIZE":         os.Getenv("BRIDGE_SYNC_BATCH_SIZE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storebridge", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 20, cfg.Sync.BatchSize)
		assert.Equal(t, 80, cfg.Sync.MemoryThresholdPercent)
		assert.Equal(t, 30, cfg.Sync.LogRetentionDays)
		assert.Equal(t, "en_US", cfg.Remote.Language)
	})

	t.Run("loads values from environment variables with BRIDGE prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_APP_NAME", "test-app")
		os.Setenv("BRIDGE_APP_PORT", "9000")
		os.Setenv("BRIDGE_DATABASE_DRIVER", "sqlite")
		os.Setenv("BRIDGE_REMOTE_URL", "https://erp.example.com")
		os.Setenv("BRIDGE_REMOTE_API_KEY", "secret-key")
		os.Setenv("BRIDGE_SYNC_BATCH_SIZE", "50")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "https://erp.example.com", cfg.Remote.URL)
		assert.Equal(t, "secret-key", cfg.Remote.APIKey)
		assert.Equal(t, 50, cfg.Sync.BatchSize)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("BRIDGE_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"BRIDGE_APP_ENV":           os.Getenv("BRIDGE_APP_ENV"),
		"BRIDGE_DATABASE_PASSWORD": os.Getenv("BRIDGE_DATABASE_PASSWORD"),
		"BRIDGE_DATABASE_SSLMODE":  os.Getenv("BRIDGE_DATABASE_SSLMODE"),
		"BRIDGE_REMOTE_URL":        os.Getenv("BRIDGE_REMOTE_URL"),
		"BRIDGE_REMOTE_VERIFY_TLS": os.Getenv("BRIDGE_REMOTE_VERIFY_TLS"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	setValidProductionBase := func() {
		os.Setenv("BRIDGE_APP_ENV", "production")
		os.Setenv("BRIDGE_DATABASE_PASSWORD", "secure-password")
		os.Setenv("BRIDGE_DATABASE_SSLMODE", "require")
		os.Setenv("BRIDGE_REMOTE_VERIFY_TLS", "true")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_APP_ENV", "production")
		os.Setenv("BRIDGE_DATABASE_SSLMODE", "require")
		os.Setenv("BRIDGE_REMOTE_VERIFY_TLS", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_APP_ENV", "production")
		os.Setenv("BRIDGE_DATABASE_PASSWORD", "secure-password")
		os.Setenv("BRIDGE_REMOTE_VERIFY_TLS", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("requires https remote URL in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("BRIDGE_REMOTE_URL", "http://erp.example.com")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "remote.url must use https")
	})

	t.Run("requires TLS verification in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_APP_ENV", "production")
		os.Setenv("BRIDGE_DATABASE_PASSWORD", "secure-password")
		os.Setenv("BRIDGE_DATABASE_SSLMODE", "require")
		os.Setenv("BRIDGE_REMOTE_VERIFY_TLS", "false")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "remote.verify_tls must be true in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid postgres DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("sqlite DSN is the file path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "sqlite", Path: "sync.db"}
		assert.Equal(t, "sync.db", cfg.DSN())
	})
}
