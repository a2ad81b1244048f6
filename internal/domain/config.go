package domain

import "fmt"

// ProjectConfig is the normalized representation of .pactlint.yaml.
type ProjectConfig struct {
	// ManifestPath points at the contract manifest, relative to the project
	// root unless absolute.
	ManifestPath string `yaml:"manifest"`

	// Workers bounds parallel extraction. Zero means one worker per CPU.
	Workers int `yaml:"workers"`

	// ExcludePaths are directory names skipped during scanning.
	ExcludePaths []string `yaml:"exclude_paths"`

	// Severity overrides rule default severities by rule ID.
	// Valid values: error, warning, info, off.
	Severity map[string]string `yaml:"severity"`

	// ValidationCalls lists extra function name suffixes treated as
	// validation-call signatures by the extractor, in addition to the
	// built-in regexp/range/format matchers.
	ValidationCalls []string `yaml:"validation_calls"`
}

// DefaultConfig returns the configuration used when no .pactlint.yaml exists.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		ManifestPath: ".pactlint-manifest.yaml",
		Severity:     map[string]string{},
	}
}

// Validate catches typos in user-supplied raw config before it is merged.
func (c ProjectConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	for ruleID, sev := range c.Severity {
		switch sev {
		case SeverityError, SeverityWarning, SeverityInfo, SeverityOff:
		default:
			return fmt.Errorf("severity for %s must be error, warning, info or off, got %q", ruleID, sev)
		}
	}
	return nil
}

// SeverityFor returns the configured severity for a rule, or fallback when
// no override is set.
func (c ProjectConfig) SeverityFor(ruleID, fallback string) string {
	if sev, ok := c.Severity[ruleID]; ok && sev != "" {
		return sev
	}
	return fallback
}
