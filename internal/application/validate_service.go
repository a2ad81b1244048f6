package application

import (
	"fmt"
	"path/filepath"

	"github.com/pactlint/pactlint/internal/domain"
	"github.com/pactlint/pactlint/internal/domain/manifest"
)

// ValidateService checks a contract manifest without linting any code.
type ValidateService struct {
	configLoader domain.ConfigLoader
}

func NewValidateService(configLoader domain.ConfigLoader) *ValidateService {
	return &ValidateService{configLoader: configLoader}
}

// ManifestReport is the result of a standalone manifest validation.
type ManifestReport struct {
	ManifestPath string   `json:"manifest_path"`
	Version      string   `json:"manifest_version"`
	Contracts    int      `json:"contracts"`
	Endpoints    int      `json:"endpoints"`
	Errors       []string `json:"errors,omitempty"`
}

// Valid reports whether every contract survived validation.
func (r *ManifestReport) Valid() bool { return len(r.Errors) == 0 }

// ValidateManifest loads the manifest named by project config (or the
// explicit path when given) and reports what parsed and what was dropped.
func (s *ValidateService) ValidateManifest(projectPath, manifestPath string) (*ManifestReport, error) {
	if manifestPath == "" {
		cfg, err := s.configLoader.Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		manifestPath = cfg.ManifestPath
	}
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(projectPath, manifestPath)
	}

	man, manErrs, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	report := &ManifestReport{
		ManifestPath: manifestPath,
		Version:      man.Version,
		Contracts:    len(man.Contracts),
	}
	for _, c := range man.Contracts {
		report.Endpoints += len(c.Endpoints)
	}
	for _, me := range manErrs {
		report.Errors = append(report.Errors, me.Error())
	}
	return report, nil
}
