package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canary-hr/attendance-reconciler/internal/domain/matcher"
	"github.com/canary-hr/attendance-reconciler/internal/domain/reconciler"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	// Test loading the example config.yaml at the project root
	configPaths := []string{
		"../../../config.yaml", // From internal/infrastructure/config
		"config.yaml",          // From root
	}

	var cfg *Config
	var err error
	found := false

	for _, path := range configPaths {
		cfg, err = Load(path)
		if err == nil {
			found = true
			break
		}
	}

	if !found {
		t.Skip("config.yaml not found in expected locations")
	}

	require.NoError(t, err)
	assert.Equal(t, "reconcile_runs.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "code", cfg.Reconcile.KeyStrategy)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_SparseFileGetsDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "ledger.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ledger.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "code", cfg.Reconcile.KeyStrategy)
	assert.Equal(t, 0.60, cfg.Reconcile.NameThreshold)
	assert.Equal(t, "both", cfg.Reconcile.IncompleteBucket)
	assert.Equal(t, DefaultPort, cfg.API.Port)
	assert.Equal(t, "canary_monthly_result.xlsx", cfg.Export.FileName)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RECONCILE_DB_PATH", "test.db")
	t.Setenv("RECONCILE_TOLERANCE", "0.5")
	t.Setenv("RECONCILE_EMIT_ORPHANS", "true")
	t.Setenv("RECONCILE_KEY_STRATEGY", "code_name")
	t.Setenv("API_PORT", "9000")
	t.Setenv("API_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg := LoadFromEnv()

	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 0.5, cfg.Reconcile.Tolerance)
	assert.True(t, cfg.Reconcile.EmitOrphans)
	assert.Equal(t, "code_name", cfg.Reconcile.KeyStrategy)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.API.AllowedOrigins)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("RECONCILE_DB_PATH", "")
	t.Setenv("RECONCILE_TOLERANCE", "not-a-number")

	cfg := LoadFromEnv()

	assert.Equal(t, DefaultDatabasePath, cfg.Storage.DatabasePath)
	assert.Equal(t, 0.0, cfg.Reconcile.Tolerance)
	assert.False(t, cfg.Reconcile.StrictHeaders)
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	t.Setenv("RECONCILE_DB_PATH", "fallback.db")

	cfg := LoadOrEnv_WithPath("nonexistent.yaml")
	assert.NotNil(t, cfg)
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestEnvVarExpansion(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "${TEST_DB_PATH}"
export:
  file_name: "${TEST_EXPORT_NAME}"
`)
	t.Setenv("TEST_DB_PATH", "expanded.db")
	t.Setenv("TEST_EXPORT_NAME", "march.xlsx")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "march.xlsx", cfg.Export.FileName)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad strategy", func(c *Config) { c.Reconcile.KeyStrategy = "name" }, true},
		{"threshold above one", func(c *Config) { c.Reconcile.NameThreshold = 1.5 }, true},
		{"negative tolerance", func(c *Config) { c.Reconcile.Tolerance = -1 }, true},
		{"bad bucket", func(c *Config) { c.Reconcile.IncompleteBucket = "some" }, true},
		{"bad export name", func(c *Config) { c.Export.FileName = "out.csv" }, true},
		{"bad log level", func(c *Config) { c.Observability.Logging.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadOrEnv_WithPath("nonexistent.yaml")
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReconcileConfig_Policy(t *testing.T) {
	rc := ReconcileConfig{
		KeyStrategy:      "code_name",
		NameThreshold:    0.75,
		Tolerance:        0.25,
		EmitOrphans:      true,
		StrictHeaders:    true,
		IncompleteBucket: "either",
		CodeDigitsOnly:   true,
	}

	p := rc.Policy()

	assert.Equal(t, matcher.StrategyCodeName, p.KeyStrategy)
	assert.Equal(t, 0.75, p.NameThreshold)
	assert.Equal(t, 0.25, p.Tolerance)
	assert.True(t, p.EmitOrphans)
	assert.True(t, p.StrictHeaders)
	assert.Equal(t, reconciler.BucketEither, p.IncompleteBucket)
	assert.True(t, p.CodeDigitsOnly)
}

func TestReconcileConfig_ZeroValueIsDefaultPolicy(t *testing.T) {
	assert.Equal(t, reconciler.DefaultPolicy(), ReconcileConfig{}.Policy())
}
