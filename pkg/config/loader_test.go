package config

import (
	"os"
	"path/filepath"
	"testing"

	"lintang/transitx/pkg/engine/filterchain"
	"lintang/transitx/pkg/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Engine, cfg.Engine)
	assert.Equal(t, filterchain.LinearFunction{Constant: 900, Coefficient: 1.5}, cfg.Filter.CostLimitFunction)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":6000"
engine:
  transit_slack: 120
  lookup_cache_size: 0
  resolve_workers: 2
filter:
  cost_limit_function: "600 + 1.2 x"
  wait_factor: 0.1
  max_itineraries: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.Server.Addr)
	assert.Equal(t, 120, cfg.Engine.TransitSlack)
	assert.Equal(t, 0, cfg.Engine.LookupCacheSize)
	assert.Equal(t, filterchain.LinearFunction{Constant: 600, Coefficient: 1.2}, cfg.Filter.CostLimitFunction)
	assert.Equal(t, 0.1, cfg.Filter.WaitFactor)
	assert.Equal(t, 1.33, cfg.Footpath.WalkSpeed)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TRANSITX_TRANSIT_SLACK", "30")
	t.Setenv("TRANSITX_COST_LIMIT_FUNCTION", "0 + 2x")
	t.Setenv("TRANSITX_WAIT_FACTOR", "0.25")
	t.Setenv("DATABASE_URL", "postgres://gtfs@localhost:5432/gtfs")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Engine.TransitSlack)
	assert.Equal(t, filterchain.LinearFunction{Constant: 0, Coefficient: 2}, cfg.Filter.CostLimitFunction)
	assert.Equal(t, 0.25, cfg.Filter.WaitFactor)
	assert.Equal(t, "postgres://gtfs@localhost:5432/gtfs", cfg.GTFS.DatabaseURL)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Run("negative wait factor", func(t *testing.T) {
		t.Setenv("TRANSITX_WAIT_FACTOR", "-1")
		_, err := Load("")
		assert.ErrorIs(t, err, server.ErrBadParamInput)
	})

	t.Run("malformed cost function", func(t *testing.T) {
		_, err := Load(writeConfig(t, "filter:\n  cost_limit_function: \"x + x\"\n"))
		assert.Error(t, err)
	})

	t.Run("cost function below identity", func(t *testing.T) {
		t.Setenv("TRANSITX_COST_LIMIT_FUNCTION", "10 + 0.5x")
		_, err := Load("")
		assert.ErrorIs(t, err, server.ErrBadParamInput)
	})

	t.Run("bad number", func(t *testing.T) {
		t.Setenv("TRANSITX_TRANSIT_SLACK", "soon")
		_, err := Load("")
		assert.ErrorIs(t, err, server.ErrBadParamInput)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})
}
