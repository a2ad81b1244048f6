package tui_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pactlint/pactlint/internal/adapters/outbound/tui"
	"github.com/pactlint/pactlint/internal/domain"
)

func sampleReport() *domain.LintReport {
	return &domain.LintReport{
		Violations: []domain.Violation{
			{
				RuleID: "CTR-request-shape", Severity: domain.SeverityError, Confidence: domain.ConfidenceCertain,
				Message:    "required request field \"currency\" is never sent",
				ContractID: "orders-v1", EndpointID: "POST /orders", FieldPath: "currency",
				File: "internal/api/orders.go", Line: 42,
			},
			{
				RuleID: "CTR-nullability", Severity: domain.SeverityWarning, Confidence: domain.ConfidenceInferred,
				Message:    "nullable field \"next_cursor\" dereferenced without a null check",
				ContractID: "orders-v1", EndpointID: "POST /orders", FieldPath: "next_cursor",
				File: "internal/api/orders.go", Line: 57,
			},
			{
				RuleID: "CTR-manifest-conformance", Severity: domain.SeverityError, Confidence: domain.ConfidenceCertain,
				Message: "manifest declares no endpoints for contract \"billing-v2\"",
			},
		},
		Diagnostics: []domain.Diagnostic{
			{Kind: domain.DiagExtractionSkipped, File: "internal/api/legacy.go", Message: "parse error"},
		},
		Summary: domain.Summary{
			TotalFiles: 14, ExtractedFiles: 9, SkippedFiles: 1, Contracts: 2,
			TotalViolations: 3, ErrorCount: 2, WarningCount: 1,
			DurationMillis: 120,
		},
		Timestamp: time.Now(),
	}
}

func TestRenderReport_ContainsHeaderAndVerdict(t *testing.T) {
	output := tui.RenderReport(sampleReport())
	assert.Contains(t, output, "pactlint")
	assert.Contains(t, output, "Contract Conformance")
	assert.Contains(t, output, "2 errors")
}

func TestRenderReport_ContainsSummaryRows(t *testing.T) {
	output := tui.RenderReport(sampleReport())
	assert.Contains(t, output, "contracts")
	assert.Contains(t, output, "files scanned")
	assert.Contains(t, output, "files extracted")
	assert.Contains(t, output, "files skipped")
	assert.Contains(t, output, "120ms")
}

func TestRenderReport_ContainsViolationDetails(t *testing.T) {
	output := tui.RenderReport(sampleReport())
	assert.Contains(t, output, "CTR-request-shape")
	assert.Contains(t, output, "never sent")
	assert.Contains(t, output, "POST /orders")
	assert.Contains(t, output, "(inferred)")
	assert.Contains(t, output, "(no file)")
}

func TestRenderReport_ContainsDiagnostics(t *testing.T) {
	output := tui.RenderReport(sampleReport())
	assert.Contains(t, output, "legacy.go")
	assert.Contains(t, output, "parse error")
}

func TestRenderReport_CleanRunIsConformant(t *testing.T) {
	report := &domain.LintReport{
		Summary:   domain.Summary{TotalFiles: 3, ExtractedFiles: 3, Contracts: 1},
		Timestamp: time.Now(),
	}
	output := tui.RenderReport(report)
	assert.Contains(t, output, "conformant")
	assert.Contains(t, output, "No violations found.")
}

func TestRenderReport_WarningsOnlyVerdict(t *testing.T) {
	report := sampleReport()
	report.Violations = report.Violations[1:2]
	report.Summary.ErrorCount = 0
	report.Summary.WarningCount = 1
	report.Summary.TotalViolations = 1
	output := tui.RenderReport(report)
	assert.Contains(t, output, "1 findings")
}
