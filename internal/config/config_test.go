package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "data/stockledger.db", cfg.DB.Path)
	assert.Equal(t, 5*time.Second, cfg.DB.BusyTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.Ledger.AllowNegative)
	assert.False(t, cfg.Seed.Demo)
	assert.Equal(t, 10, cfg.Stats.RecentLimit)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOCKLEDGER_DB_PATH", "/tmp/other.db")
	t.Setenv("STOCKLEDGER_LEDGER_ALLOW_NEGATIVE", "true")
	t.Setenv("STOCKLEDGER_DB_BUSY_TIMEOUT", "250ms")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.DB.Path)
	assert.True(t, cfg.Ledger.AllowNegative)
	assert.Equal(t, 250*time.Millisecond, cfg.DB.BusyTimeout)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOCKLEDGER_DB_PATH", "/tmp/env.db")
	t.Setenv("STOCKLEDGER_LOG_LEVEL", "warn")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse([]string{"--db", "/tmp/flag.db", "--seed-demo", "--export", "out.xlsx"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/flag.db", cfg.DB.Path)
	assert.True(t, cfg.Seed.Demo)
	assert.Equal(t, "out.xlsx", cfg.Export.XLSX)
	// unset flags do not mask the environment
	assert.Equal(t, "warn", cfg.Log.Level)
}
