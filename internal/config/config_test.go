package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "inventory.db", cfg.Store.DatabaseURL)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, 3, cfg.Store.Retry.MaxAttempts)
	assert.Equal(t, 200, cfg.Store.Retry.InitialBackoffMs)
	assert.Equal(t, 5000, cfg.Store.Retry.MaxBackoffMs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "3_Chemicals&Reagents", cfg.Workbook.Chemicals.Name)
	assert.Equal(t, 2, cfg.Workbook.Chemicals.SkipRows)
	assert.Equal(t, "1_Overall Budget ", cfg.Workbook.Budget.Name)
	assert.Equal(t, 11, cfg.Workbook.Budget.SkipRows)
	assert.Equal(t, "2_Consumables", cfg.Workbook.Consumables.Name)
	assert.Equal(t, "", cfg.Reference.Path)
	assert.Equal(t, "longest", cfg.Reference.TieBreak)
	assert.Equal(t, 4, cfg.Backfill.Concurrency)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/labinv
log:
  level: debug
  format: console
workbook:
  chemicals:
    name: Inventory
reference:
  tie_break: declared
backfill:
  concurrency: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/labinv", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "Inventory", cfg.Workbook.Chemicals.Name)
	assert.Equal(t, "declared", cfg.Reference.TieBreak)
	assert.Equal(t, 8, cfg.Backfill.Concurrency)
	// Defaults still apply for unset values
	assert.Equal(t, 2, cfg.Workbook.Chemicals.SkipRows)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LABINV_STORE_DRIVER", "postgres")
	t.Setenv("LABINV_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LABINV_SERVER_PORT", "3000")
	t.Setenv("LABINV_BACKFILL_CONCURRENCY", "2")
	t.Setenv("LABINV_REFERENCE_PATH", "/etc/labinv/kb.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Backfill.Concurrency)
	assert.Equal(t, "/etc/labinv/kb.yaml", cfg.Reference.Path)
}

func TestLoadBadYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [\n"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "inventory.db"
	cfg.Backfill.Concurrency = 4
	cfg.Reference.TieBreak = "longest"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidate_AllModes(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"organize", "import", "imports", "migrate", "lookup", "backfill", "serve"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidate_Store(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidate_RetryAttempts(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Retry.MaxAttempts = 11

	err := cfg.Validate("backfill")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.retry.max_attempts")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateBackfill_ConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Backfill.Concurrency = 0
	err := cfg.Validate("backfill")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "backfill.concurrency must be between 1 and 64")

	cfg.Backfill.Concurrency = 65
	assert.Error(t, cfg.Validate("backfill"))

	cfg.Backfill.Concurrency = 64
	assert.NoError(t, cfg.Validate("backfill"))

	// Other modes ignore backfill settings.
	cfg.Backfill.Concurrency = 0
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidate_TieBreak(t *testing.T) {
	cfg := validDefaults()
	cfg.Reference.TieBreak = "random"

	err := cfg.Validate("lookup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference.tie_break")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
