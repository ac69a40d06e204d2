// Package config loads the optional .obbuild.yaml build configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const FileName = ".obbuild.yaml"

// Config represents the .obbuild.yaml configuration file. Every field is
// optional; absent fields keep their defaults.
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Build   BuildConfig   `yaml:"build"`
	Kernel  PackageConfig `yaml:"kernel"`
	GUI     PackageConfig `yaml:"gui"`
	Debug   DebugConfig   `yaml:"debug"`
}

// ProjectConfig holds project-level settings.
type ProjectConfig struct {
	// Name is the user-facing product name, used for the macOS bundle
	// directory and the exported GUI binary inside it.
	Name string `yaml:"name"`
}

// BuildConfig holds build output settings.
type BuildConfig struct {
	// Output is the default output root, recreated fresh each run.
	Output string `yaml:"output"`
}

// PackageConfig names a cargo package.
type PackageConfig struct {
	Package string `yaml:"package"`
}

// DebugConfig holds debug re-launch settings.
type DebugConfig struct {
	// Address is the network address passed to the GUI when --debug is
	// given without an explicit value.
	Address string `yaml:"address"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{Name: "Obliteration"},
		Build:   BuildConfig{Output: "dist"},
		Kernel:  PackageConfig{Package: "obkrnl"},
		GUI:     PackageConfig{Package: "gui"},
		Debug:   DebugConfig{Address: "127.0.0.1:1234"},
	}
}

// Load reads .obbuild.yaml from dir. A missing file yields the defaults,
// and fields the file omits keep their default values.
func Load(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return cfg, nil
}
