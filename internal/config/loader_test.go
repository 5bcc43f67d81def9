package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ConfigFileName, `
catalog: catalog.xml
schemas:
  urn:example:layout: schemas/{lang}/layout.rng
language: de
preserve:
  - Expression
  - Script
indent: "    "
`)

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.Equal(t, filepath.Join(dir, "catalog.xml"), cfg.Catalog)
	require.Equal(t, "schemas/{lang}/layout.rng", cfg.Schemas["urn:example:layout"])
	require.Equal(t, "de", cfg.Language)
	require.Equal(t, []string{"Expression", "Script"}, cfg.Preserve)
	require.Equal(t, "    ", cfg.Indent)
	// Unset keys fall back to defaults.
	require.Equal(t, DefaultSectionContainers, cfg.SectionContainers)
}

func TestLoadFromDirMissing(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	require.Nil(t, cfg)
}

func TestLoadFromDirAltName(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ConfigFileNameAlt, "language: fr\n")

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, "fr", cfg.Language)
}

func TestLoadFromDirMalformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ConfigFileName, "catalog: [unclosed\n")

	_, err := LoadFromDir(dir)
	require.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	var cfg ProjectConfig
	cfg.ApplyDefaults()

	require.Equal(t, DefaultLanguage, cfg.Language)
	require.Equal(t, DefaultIndent, cfg.Indent)
	require.Equal(t, DefaultPreserve, cfg.Preserve)
	require.Equal(t, DefaultSectionContainers, cfg.SectionContainers)

	// Explicit empty lists survive.
	cfg = ProjectConfig{Preserve: []string{}}
	cfg.ApplyDefaults()
	require.Empty(t, cfg.Preserve)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, ConfigFileName, "language: en\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	require.Equal(t, root, FindProjectRoot(nested))
	require.Equal(t, root, FindProjectRoot(root))
	require.Equal(t, "", FindProjectRoot(t.TempDir()))
}
