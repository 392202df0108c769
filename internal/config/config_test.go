package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestory/codestory/internal/resolver"
)

func TestLoadSynthesizesDefaultWhenNoFileExists(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root)
	require.NoError(t, err)
	require.Len(t, cfg.SourceGroups, 1)
	require.Equal(t, []string{"**/*"}, cfg.SourceGroups[0].Includes)
	require.Equal(t, resolver.MinConfidenceDefault, cfg.MinConfidence)
}

func TestLoadReadsYAML(t *testing.T) {
	root := t.TempDir()
	yaml := `source_groups:
  - name: src
    includes: ["src/**/*.rs"]
    excludes: ["src/generated/**"]
resolver:
  min_confidence: 0.4
search:
  fuzzy_cap: 50
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(yaml), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	require.Len(t, cfg.SourceGroups, 1)
	require.Equal(t, "src", cfg.SourceGroups[0].Name)
	require.Equal(t, []string{"src/generated/**"}, cfg.SourceGroups[0].Excludes)
	require.InDelta(t, 0.4, cfg.MinConfidence, 0.0001)
	require.Equal(t, 50, cfg.FuzzySearchCap)
	require.Equal(t, 50, cfg.FullTextCap)
}

func TestLoadFallsBackToProjectJSON(t *testing.T) {
	root := t.TempDir()
	project := `{"source_groups": [{"name": "lib", "includes": ["lib/**/*.py"]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFileName), []byte(project), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	require.Len(t, cfg.SourceGroups, 1)
	require.Equal(t, "lib", cfg.SourceGroups[0].Name)
	require.Equal(t, []string{"lib/**/*.py"}, cfg.SourceGroups[0].Includes)
	require.Equal(t, resolver.MinConfidenceDefault, cfg.MinConfidence)
}

func TestLoadPrefersYAMLOverProjectJSON(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName),
		[]byte("source_groups:\n  - name: yaml\n    includes: [\"**/*.go\"]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFileName),
		[]byte(`{"source_groups": [{"name": "json", "includes": ["**/*.py"]}]}`), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	require.Equal(t, "yaml", cfg.SourceGroups[0].Name)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(":\n  - ["), 0o644))

	_, err := Load(root)
	require.Error(t, err)
}
