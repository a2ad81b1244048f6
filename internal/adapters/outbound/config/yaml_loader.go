package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pactlint/pactlint/internal/domain"
	"gopkg.in/yaml.v3"
)

const fileName = ".pactlint.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .pactlint.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .pactlint.yaml from projectPath.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	// Validate before merging, so typos in raw input surface with the
	// user's own values in the message.
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", fileName, err)
	}

	return mergeConfig(domain.DefaultConfig(), cfg), nil
}

// mergeConfig overlays explicit overrides on top of the defaults.
// Explicit (non-zero) values always win.
func mergeConfig(base, override domain.ProjectConfig) domain.ProjectConfig {
	result := base

	if override.ManifestPath != "" {
		result.ManifestPath = override.ManifestPath
	}
	if override.Workers > 0 {
		result.Workers = override.Workers
	}
	if len(override.ExcludePaths) > 0 {
		result.ExcludePaths = override.ExcludePaths
	}
	if len(override.Severity) > 0 {
		result.Severity = override.Severity
	}
	if len(override.ValidationCalls) > 0 {
		result.ValidationCalls = override.ValidationCalls
	}

	return result
}
