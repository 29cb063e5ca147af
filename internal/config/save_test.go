package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSaveSavedFilters_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	filters := []SavedFilterConfig{{Name: "failing", Entity: "build", Query: "failed", Notify: true}}
	require.NoError(t, SaveSavedFilters(path, filters))

	var got struct {
		SavedFilters []SavedFilterConfig `yaml:"saved_filters"`
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &got))
	require.Equal(t, filters, got.SavedFilters)
}

func TestSaveSavedFilters_PreservesOtherSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`# my settings
database: custom.db # keep me
saved_filters:
  - name: old
    entity: issue
    query: resolved
`), 0o600))

	require.NoError(t, SaveSavedFilters(path, []SavedFilterConfig{
		{Name: "new", Entity: "codecomment", Query: "unresolved"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "# my settings")
	require.Contains(t, content, "# keep me")
	require.Contains(t, content, "name: new")
	require.NotContains(t, content, "name: old")
}

func TestSaveSavedFilters_AppendsSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: a.db\n"), 0o600))

	require.NoError(t, SaveSavedFilters(path, []SavedFilterConfig{{Name: "x", Entity: "pack", Query: `"Type" is "npm"`}}))

	var got map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &got))
	require.Equal(t, "a.db", got["database"])
	require.Len(t, got["saved_filters"], 1)
}
