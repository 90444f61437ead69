package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolatedLoader() *Loader {
	return &Loader{v: viper.New()}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := isolatedLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "tr", cfg.Language)
	assert.InDelta(t, 0.3, cfg.OCR.ConfidenceFloor, 0.001)
	assert.Equal(t, 3, cfg.Detect.AcceptScore)
	assert.True(t, cfg.OCR.Tesseract)
}

func TestLoadWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodlens.yaml")
	content := `
language: de
ocr:
  confidence_floor: 0.45
  workers: 4
grid:
  row_tolerance: 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := isolatedLoader().LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "de", cfg.Language)
	assert.InDelta(t, 0.45, cfg.OCR.ConfidenceFloor, 0.001)
	assert.Equal(t, 4, cfg.OCR.Workers)
	assert.InDelta(t, 20.0, cfg.Grid.RowTolerance, 0.001)
	// Untouched keys keep their defaults.
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.Detect.AcceptScore)
}

func TestLoadWithFile_Missing(t *testing.T) {
	_, err := isolatedLoader().LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadWithFile_InvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ocr:\n  confidence_floor: 2.0\n"), 0o600))

	_, err := isolatedLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FOODLENS_LANGUAGE", "fr")
	t.Setenv("FOODLENS_LOG_LEVEL", "debug")

	cfg, err := isolatedLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "fr", cfg.Language)
	assert.Equal(t, "debug", cfg.LogLevel)
}
