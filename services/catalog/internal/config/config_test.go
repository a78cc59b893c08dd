package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8002, cfg.HTTPPort)
	assert.Equal(t, "catalog", cfg.Postgres.DBName)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Len(t, cfg.SeedCategories, 6)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_HOST", "pg.internal")
	t.Setenv("DB_NAME", "storefront")
	t.Setenv("CATALOG_SEED_CATEGORIES", "Books,Toys")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Contains(t, cfg.Postgres.DSN(), "pg.internal")
	assert.Contains(t, cfg.Postgres.DSN(), "storefront")
	assert.Equal(t, []string{"Books", "Toys"}, cfg.SeedCategories)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"port", "CATALOG_HTTP_PORT", "-5", "invalid HTTP port"},
		{"pool", "DB_MIN_CONNS", "50", "DB_MAX_CONNS (10) must be >= DB_MIN_CONNS (50)"},
		{"slow query", "CATALOG_SLOW_QUERY_THRESHOLD", "-1s", "CATALOG_SLOW_QUERY_THRESHOLD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
