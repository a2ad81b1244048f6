package domain

import "time"

// Severity levels for violations and diagnostics.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
	SeverityOff     = "off"
)

// Confidence of a finding: certain facts were traced directly from literals,
// inferred facts passed through an indirection the extractor could not follow.
const (
	ConfidenceCertain  = "certain"
	ConfidenceInferred = "inferred"
)

// Violation is one contract-conformance finding. Immutable once created;
// rule evaluators produce them, only the aggregator consumes them.
type Violation struct {
	RuleID     string `json:"rule_id"`
	Severity   string `json:"severity"`
	Confidence string `json:"confidence"`
	Message    string `json:"message"`
	ContractID string `json:"contract_id,omitempty"`
	EndpointID string `json:"endpoint_id,omitempty"`
	FieldPath  string `json:"field_path,omitempty"`
	File       string `json:"file,omitempty"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
}

// Diagnostic kinds. Diagnostics are per-unit failures that never abort the
// run; they surface alongside violations at the boundary.
const (
	DiagExtractionSkipped   = "ExtractionSkipped"
	DiagManifestError       = "ManifestError"
	DiagUnresolvedFieldPath = "UnresolvedFieldPath"
)

// Diagnostic reports a non-fatal analysis failure.
type Diagnostic struct {
	Kind    string `json:"kind"`
	File    string `json:"file,omitempty"`
	Message string `json:"message"`
}

// Summary holds aggregate statistics about a lint run.
type Summary struct {
	TotalFiles      int   `json:"total_files"`
	ExtractedFiles  int   `json:"extracted_files"`
	SkippedFiles    int   `json:"skipped_files"`
	Contracts       int   `json:"contracts"`
	TotalViolations int   `json:"total_violations"`
	ErrorCount      int   `json:"error_count"`
	WarningCount    int   `json:"warning_count"`
	DurationMillis  int64 `json:"duration_ms"`
}

// LintReport is the full result of a lint run.
type LintReport struct {
	Violations  []Violation  `json:"violations"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Summary     Summary      `json:"summary"`
	CommitHash  string       `json:"commit_hash,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// HasBlocking reports whether the run contains error-severity violations.
// When strict is false, inferred-confidence findings never block; gating on
// them is a CI policy choice, not an engine property.
func (r *LintReport) HasBlocking(strict bool) bool {
	for _, v := range r.Violations {
		if v.Severity != SeverityError {
			continue
		}
		if v.Confidence == ConfidenceCertain || strict {
			return true
		}
	}
	return false
}
