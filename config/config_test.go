package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"CARPRICE_INPUT", "CARPRICE_OUTPUT", "CARPRICE_MODEL_PATH",
		"CARPRICE_LOG_LEVEL", "CARPRICE_BRAND_MIN_COUNT", "CARPRICE_CACHE_SIZE",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, DefaultInputPath, cfg.InputPath)
	assert.Equal(t, DefaultOutputPath, cfg.OutputPath)
	assert.Equal(t, DefaultModelPath, cfg.ModelPath)
	assert.Equal(t, DefaultBrandMinCount, cfg.BrandMinCount)
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CARPRICE_INPUT", "in.csv")
	t.Setenv("CARPRICE_BRAND_MIN_COUNT", "25")
	t.Setenv("CARPRICE_CACHE_SIZE", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, "in.csv", cfg.InputPath)
	assert.Equal(t, 25, cfg.BrandMinCount)
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
}

func TestLoadFile(t *testing.T) {
	// t.Setenv registers the restore; godotenv only fills unset variables.
	t.Setenv("CARPRICE_MODEL_PATH", "unused")
	require.NoError(t, os.Unsetenv("CARPRICE_MODEL_PATH"))
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CARPRICE_MODEL_PATH=artifacts/m.gob\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "artifacts/m.gob", cfg.ModelPath)
}
