package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "./data/billbuddy.db", cfg.DB.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, devSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, "IDR", cfg.Currency)
	assert.Equal(t, int64(1), cfg.Settlement.NetThreshold)
	assert.Equal(t, int64(10), cfg.Settlement.PlanFloor)
	assert.Equal(t, "10", cfg.Settlement.PlanFloorDecimal().String())
	assert.Equal(t, 5, cfg.Split.MaxRetries)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "billbuddy:events", cfg.Redis.Channel)
	assert.Equal(t, "gemini-2.5-flash", cfg.Receipt.Model)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BILLBUDDY_PORT", "9090")
	t.Setenv("BILLBUDDY_DB_DRIVER", "postgres")
	t.Setenv("BILLBUDDY_DB_URL", "postgres://localhost/billbuddy")
	t.Setenv("BILLBUDDY_AUTH_TOKEN_TTL", "2h")
	t.Setenv("BILLBUDDY_SETTLEMENT_PLAN_FLOOR", "0")
	t.Setenv("BILLBUDDY_CURRENCY", "usd")
	t.Setenv("BILLBUDDY_REDIS_ADDR", "localhost:6379")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "postgres://localhost/billbuddy", cfg.DB.URL)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, int64(0), cfg.Settlement.PlanFloor)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BILLBUDDY_DB_PATH=/tmp/from-file.db\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("BILLBUDDY_DB_PATH") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-file.db", cfg.DB.Path)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "unknown driver",
			env:  map[string]string{"BILLBUDDY_DB_DRIVER": "mysql"},
			want: `unknown db.driver "mysql"`,
		},
		{
			name: "postgres without url",
			env:  map[string]string{"BILLBUDDY_DB_DRIVER": "postgres"},
			want: "db.url is required",
		},
		{
			name: "production without secret",
			env:  map[string]string{"BILLBUDDY_ENV": "production"},
			want: "auth.jwt_secret is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(noEnvFile(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
