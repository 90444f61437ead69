package nutrient

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeywords_CoversAllKeys(t *testing.T) {
	kw := DefaultKeywords()
	require.NotEmpty(t, kw.TableHeaders)
	require.NotEmpty(t, kw.NutrientNames)
	for _, key := range Keys {
		assert.NotEmpty(t, kw.CellPatterns[key], "cell patterns for %s", key)
		assert.NotEmpty(t, kw.TextPatterns[key], "text patterns for %s", key)
	}
}

func TestDefaultKeywords_CaseInsensitive(t *testing.T) {
	kw := DefaultKeywords()
	assert.True(t, kw.CellPatterns["fat"][0].MatchString("toplam yağ"))
	assert.True(t, kw.CellPatterns["fat"][0].MatchString("YAĞ") || kw.CellPatterns["fat"][0].MatchString("yağ"))
}

func TestLoadKeywords_EmptyPathReturnsDefaults(t *testing.T) {
	kw, err := LoadKeywords("")
	require.NoError(t, err)
	assert.Equal(t, DefaultKeywords().TableHeaders, kw.TableHeaders)
}

func TestLoadKeywords_OverridesMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	content := `
table_headers:
  - nährwerte
cell_patterns:
  fat:
    - fett
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	kw, err := LoadKeywords(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"nährwerte"}, kw.TableHeaders)
	require.Len(t, kw.CellPatterns["fat"], 1)
	assert.True(t, kw.CellPatterns["fat"][0].MatchString("Fett"))
	// Untouched sections keep their defaults.
	assert.NotEmpty(t, kw.CellPatterns["sugars"])
	assert.NotEmpty(t, kw.TextPatterns["salt"])
}

func TestLoadKeywords_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadKeywords(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
	t.Run("invalid pattern", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cell_patterns:\n  fat:\n    - '['\n"), 0o600))
		_, err := LoadKeywords(path)
		require.Error(t, err)
	})
}
