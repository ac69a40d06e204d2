package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
	return dir
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := writeConfig(t, "build:\n  output: out\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Build.Output)
	assert.Equal(t, "obkrnl", cfg.Kernel.Package)
	assert.Equal(t, "Obliteration", cfg.Project.Name)
	assert.Equal(t, "127.0.0.1:1234", cfg.Debug.Address)
}

func TestLoadFullFile(t *testing.T) {
	dir := writeConfig(t, `project:
  name: Nightly
build:
  output: /tmp/nightly
kernel:
  package: kern
gui:
  package: frontend
debug:
  address: 0.0.0.0:9000
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Project: ProjectConfig{Name: "Nightly"},
		Build:   BuildConfig{Output: "/tmp/nightly"},
		Kernel:  PackageConfig{Package: "kern"},
		GUI:     PackageConfig{Package: "frontend"},
		Debug:   DebugConfig{Address: "0.0.0.0:9000"},
	}, cfg)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := writeConfig(t, "build: [not a mapping\n")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		content string
		valid   bool
	}{
		{"empty file", "", true},
		{"valid", "build:\n  output: dist\nkernel:\n  package: obkrnl\n", true},
		{"unknown key", "deploy:\n  registry: example.com\n", false},
		{"wrong type", "build:\n  output: 42\n", false},
		{"empty name", "project:\n  name: \"\"\n", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problems, err := Validate([]byte(tc.content))
			require.NoError(t, err)
			if tc.valid {
				assert.Empty(t, problems)
			} else {
				assert.NotEmpty(t, problems)
			}
		})
	}
}
