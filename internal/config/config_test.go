package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultMainConfig(t *testing.T) {
	cfg := DefaultMainConfig()

	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "./mapping", cfg.MappingDir)
	assert.Equal(t, "./payload", cfg.PayloadDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.MaxConcurrency)
	assert.Equal(t, "UTF-8", cfg.RosterEncoding)
	assert.Contains(t, cfg.FileNameFormat, "{artifact}")
	assert.NoError(t, cfg.Validate())
}

func TestLoadMainConfig_Success(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
output_dir: ./out
mapping_dir: ./secret
max_concurrency: 4
strict_duplicates: true
roster_encoding: CP949
vocabulary_file: vocab.toml
`)

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./out", cfg.OutputDir)
	assert.Equal(t, "./secret", cfg.MappingDir)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.True(t, cfg.StrictDuplicates)
	assert.Equal(t, "CP949", cfg.RosterEncoding)
	assert.Equal(t, filepath.Join(dir, "vocab.toml"), cfg.VocabularyFile)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMainConfig_Missing(t *testing.T) {
	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadMainConfig_BadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "output_dir: [unterminated")
	_, err := LoadMainConfig(path)
	assert.Error(t, err)
}

func TestLoadMainConfig_MappingCoLocated(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
output_dir: ./out
mapping_dir: ./out/
`)
	_, err := LoadMainConfig(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMainConfig_ValidatePayloadDir(t *testing.T) {
	cfg := DefaultMainConfig()
	cfg.PayloadDir = cfg.OutputDir
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.PayloadDir = cfg.MappingDir + "/"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.PayloadDir = "./share"
	assert.NoError(t, cfg.Validate())
}

func TestMainConfig_ValidateEncoding(t *testing.T) {
	cfg := DefaultMainConfig()
	cfg.RosterEncoding = "latin-1"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.RosterEncoding = "euc-kr"
	assert.NoError(t, cfg.Validate())
}

func TestMainConfig_ValidateFileNameFormat(t *testing.T) {
	cfg := DefaultMainConfig()
	cfg.FileNameFormat = "{uuid}.json"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
