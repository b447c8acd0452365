package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_WithValidConfig(t *testing.T) {
	setEnv(t, "MODEL_PATH", "/models/mlp_fraud_model.json")
	setEnv(t, "PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/models/mlp_fraud_model.json", cfg.ModelPath)
	assert.Equal(t, DefaultInputPath, cfg.InputPath)
	assert.Equal(t, DefaultOutputPath, cfg.OutputPath)
	assert.Equal(t, DefaultMaxBatchRows, cfg.MaxBatchRows)
}

func TestLoad_MissingModelPath(t *testing.T) {
	setEnv(t, "MODEL_PATH", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_PATH")
}

func TestLoad_PathOverrides(t *testing.T) {
	setEnv(t, "MODEL_PATH", "/models/m.json")
	setEnv(t, "INPUT_PATH", "/data/in.csv")
	setEnv(t, "OUTPUT_PATH", "/data/out.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/in.csv", cfg.InputPath)
	assert.Equal(t, "/data/out.csv", cfg.OutputPath)
}

func TestLoad_InvalidMaxBatchRows(t *testing.T) {
	setEnv(t, "MODEL_PATH", "/models/m.json")
	setEnv(t, "MAX_BATCH_ROWS", "-5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_BATCH_ROWS")
}

func TestLoad_NonNumericMaxBatchRowsFallsBack(t *testing.T) {
	setEnv(t, "MODEL_PATH", "/models/m.json")
	setEnv(t, "MAX_BATCH_ROWS", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxBatchRows, cfg.MaxBatchRows)
}

func TestEnvHelpers(t *testing.T) {
	setEnv(t, "MODEL_PATH", "/models/m.json")

	setEnv(t, "ENV", "production")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())

	setEnv(t, "ENV", "development")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
}
