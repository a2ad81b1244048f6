package domain

import "github.com/pactlint/pactlint/internal/domain/fact"

// ProjectScanner scans a project directory and returns file metadata.
type ProjectScanner interface {
	Scan(projectPath string, excludePaths ...string) (*ScanResult, error)
}

// ScanResult holds the result of scanning a project directory.
type ScanResult struct {
	RootPath string   `json:"root_path"`
	GoFiles  []string `json:"go_files"`
	AllFiles []string `json:"all_files"`
	HasGoMod bool     `json:"has_go_mod"`
}

// FactExtractor walks one file's syntax tree and emits source facts.
// Implementations are per-language; the output schema is shared.
type FactExtractor interface {
	Extract(path string, source []byte, opts fact.ExtractOptions) (*fact.FileFacts, error)
}

// ConfigLoader loads project configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// GitInfo provides version control metadata for report stamping.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
}
