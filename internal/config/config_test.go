package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	partialsDir := filepath.Join(projectDir, PartialsDir)
	c := &Config{ProjectDir: projectDir, PartialsProjectDir: partialsDir, Project: defaultProjectConfig()}
	require.NoError(t, c.loadProjectConfig())

	assert.Equal(t, 1, c.Project.Version)
	assert.Equal(t, "info", c.Project.Log.Level)
	assert.True(t, c.Project.Log.File)
	assert.Equal(t, filepath.Join(partialsDir, "documents"), c.DocumentsDir())
	assert.Equal(t, defaultWorkers, c.Workers())
	assert.Equal(t, defaultSumTolerance, c.SumTolerance())
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	partialsDir := filepath.Join(projectDir, PartialsDir)
	require.NoError(t, os.MkdirAll(partialsDir, 0755))
	configYAML := strings.TrimSpace(`
version: 1
log:
  level: DEBUG
  format: json
documents:
  dir: /data/alignments
  workers: 8
report:
  sum_tolerance: 0.01
`)
	require.NoError(t, os.WriteFile(filepath.Join(partialsDir, "config.yaml"), []byte(configYAML), 0644))

	c := &Config{ProjectDir: projectDir, PartialsProjectDir: partialsDir, Project: defaultProjectConfig()}
	require.NoError(t, c.loadProjectConfig())

	assert.Equal(t, "debug", c.Project.Log.Level)
	assert.Equal(t, "json", c.Project.Log.Format)
	// Omitted keys keep their defaults.
	assert.True(t, c.Project.Log.File)
	assert.Equal(t, "/data/alignments", c.DocumentsDir())
	assert.Equal(t, 8, c.Workers())
	assert.Equal(t, 0.01, c.SumTolerance())
}

func TestLoadProjectConfigRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad level":  "log:\n  level: loud\n",
		"bad format": "log:\n  format: xml\n",
		"bad yaml":   "log: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			partialsDir := filepath.Join(projectDir, PartialsDir)
			require.NoError(t, os.MkdirAll(partialsDir, 0755))
			require.NoError(t, os.WriteFile(filepath.Join(partialsDir, "config.yaml"), []byte(body), 0644))
			_, err := NewConfig(projectDir)
			assert.Error(t, err)
		})
	}
}

func TestInitDirWritesDefaultConfig(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, InitDir(projectDir))

	c, err := NewConfig(projectDir)
	require.NoError(t, err)
	assert.DirExists(t, c.LogsDir())
	assert.DirExists(t, c.DocumentsDir())
	assert.FileExists(t, c.ProjectConfigPath())
	assert.Equal(t, defaultProjectConfig().Log, c.Project.Log)

	// A second init keeps user edits.
	require.NoError(t, os.WriteFile(c.ProjectConfigPath(), []byte("log:\n  level: warn\n"), 0644))
	require.NoError(t, InitDir(projectDir))
	c, err = NewConfig(projectDir)
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Project.Log.Level)
}

func TestNewConfigEnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "Error")
	c, err := NewConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "error", c.Project.Log.Level)

	t.Setenv(EnvLogLevel, "chatty")
	_, err = NewConfig(t.TempDir())
	assert.Error(t, err)
}
