package application_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactlint/pactlint/internal/adapters/outbound/config"
	"github.com/pactlint/pactlint/internal/adapters/outbound/extractor"
	"github.com/pactlint/pactlint/internal/adapters/outbound/gitinfo"
	"github.com/pactlint/pactlint/internal/adapters/outbound/scanner"
	"github.com/pactlint/pactlint/internal/application"
	"github.com/pactlint/pactlint/internal/domain"
)

const ordersManifest = `
manifest_version: "1"
contracts:
  - id: orders-api
    producer: orders-service
    consumer: web-frontend
    protocol: http
    endpoints:
      - path: /orders
        method: post
        statuses: [200, 400, 422]
        request:
          - name: amount
            type: number
            required: true
            range: [0.01, 10000]
          - name: currency
            type: enum
            required: true
            enum: [USD, EUR, GBP]
        responses:
          "200":
            - name: order_id
              type: string
              required: true
            - name: next_cursor
              type: string
              nullable: true
              continuation: true
`

const conformantClient = `// pactlint:contract orders-api client
package client

import "errors"

// pactlint:endpoint POST /orders
func PlaceOrder(req Req, resp Resp) error {
	if req.Amount < 0.01 || req.Amount > 10000 {
		return errors.New("amount out of range")
	}
	switch req.Currency {
	case "USD", "EUR", "GBP":
	default:
		return errors.New("unsupported currency")
	}
	send(Order{Amount: 10.5, Currency: "USD"})

	switch resp.StatusCode {
	case 200:
		use(resp.OrderID)
		if resp.NextCursor != nil {
			use(resp.NextCursor.Value)
		}
		for resp.NextCursor != nil {
			resp = fetch(resp.NextCursor)
		}
	case 400, 422:
		return errors.New("rejected")
	}
	return nil
}
`

const sloppyClient = `// pactlint:contract orders-api client
package client

// pactlint:endpoint POST /orders
func PlaceOrder(resp Resp) error {
	send(Order{Amount: 10.5})
	if resp.StatusCode == 200 {
		use(resp.OrderID)
		use(resp.NextCursor.Value)
	}
	return nil
}
`

func newService() *application.LintService {
	return application.NewLintService(scanner.New(), extractor.New(), config.New(), gitinfo.New())
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func ruleIDs(violations []domain.Violation) []string {
	var ids []string
	for _, v := range violations {
		ids = append(ids, v.RuleID)
	}
	return ids
}

func TestLintProject_ConformantProject(t *testing.T) {
	dir := writeProject(t, map[string]string{
		".pactlint-manifest.yaml": ordersManifest,
		"client.go":               conformantClient,
	})

	report, err := newService().LintProject(context.Background(), dir)
	require.NoError(t, err)

	assert.Empty(t, report.Violations)
	assert.Empty(t, report.Diagnostics)
	assert.Equal(t, 1, report.Summary.TotalFiles)
	assert.Equal(t, 1, report.Summary.ExtractedFiles)
	assert.Equal(t, 1, report.Summary.Contracts)
	assert.Zero(t, report.Summary.ErrorCount)
	assert.False(t, report.HasBlocking(true))
}

func TestLintProject_FlagsContractDrift(t *testing.T) {
	dir := writeProject(t, map[string]string{
		".pactlint-manifest.yaml": ordersManifest,
		"client.go":               sloppyClient,
	})

	report, err := newService().LintProject(context.Background(), dir)
	require.NoError(t, err)

	ids := ruleIDs(report.Violations)
	assert.Contains(t, ids, "CTR-request-shape")
	assert.Contains(t, ids, "CTR-status-code-handling")
	assert.Contains(t, ids, "CTR-nullability")
	assert.True(t, report.HasBlocking(false))

	for _, v := range report.Violations {
		assert.Equal(t, "client.go", v.File)
		assert.Equal(t, "orders-api", v.ContractID)
	}
	assert.Equal(t, len(report.Violations), report.Summary.TotalViolations)
}

func TestLintProject_SuppressionDirective(t *testing.T) {
	suppressed := `// pactlint:contract orders-api client
package client

// pactlint:endpoint POST /orders
func PlaceOrder(resp Resp) error {
	send(Order{Amount: 10.5})
	if resp.StatusCode == 200 {
		use(resp.OrderID)
		//pactlint-disable-next-line CTR-nullability -- cursor checked upstream
		use(resp.NextCursor.Value)
	}
	return nil
}
`
	dir := writeProject(t, map[string]string{
		".pactlint-manifest.yaml": ordersManifest,
		"client.go":               suppressed,
	})

	report, err := newService().LintProject(context.Background(), dir)
	require.NoError(t, err)

	ids := ruleIDs(report.Violations)
	assert.NotContains(t, ids, "CTR-nullability")
	assert.Contains(t, ids, "CTR-request-shape")
}

func TestLintProject_UnparseableFileBecomesDiagnostic(t *testing.T) {
	dir := writeProject(t, map[string]string{
		".pactlint-manifest.yaml": ordersManifest,
		"client.go":               conformantClient,
		"broken.go":               "this is not valid go source",
	})

	report, err := newService().LintProject(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.SkippedFiles)
	require.NotEmpty(t, report.Diagnostics)
	var found bool
	for _, d := range report.Diagnostics {
		if d.Kind == domain.DiagExtractionSkipped && d.File == "broken.go" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLintProject_UnresolvedPathSurfacesOnce(t *testing.T) {
	twoReaders := `// pactlint:contract orders-api client
package client

// pactlint:endpoint POST /orders
func PlaceOrder(resp Resp) string {
	use(resp.TraceID)
	return resp.TraceID
}
`
	dir := writeProject(t, map[string]string{
		".pactlint-manifest.yaml": ordersManifest,
		"client.go":               twoReaders,
	})

	report, err := newService().LintProject(context.Background(), dir)
	require.NoError(t, err)

	var unresolved []domain.Diagnostic
	for _, d := range report.Diagnostics {
		if d.Kind == domain.DiagUnresolvedFieldPath {
			unresolved = append(unresolved, d)
		}
	}
	require.Len(t, unresolved, 1)
	assert.Contains(t, unresolved[0].Message, `"trace_id"`)
}

func TestLintProject_NullableObjectChildDeref(t *testing.T) {
	const cursorManifest = `
manifest_version: "1"
contracts:
  - id: orders-api
    producer: orders-service
    consumer: web-frontend
    protocol: http
    endpoints:
      - path: /orders
        method: post
        statuses: [200]
        request:
          - name: amount
            type: number
            required: true
        responses:
          "200":
            - name: order_id
              type: string
              required: true
            - name: next_cursor
              type: object
              nullable: true
              fields:
                - name: value
                  type: string
`
	const client = `// pactlint:contract orders-api client
package client

// pactlint:endpoint POST /orders
func PlaceOrder(resp Resp) string {
	send(Order{Amount: 10.5})
	if resp.StatusCode == 200 {
		use(resp.OrderID)
	}
	return resp.NextCursor.Value
}
`
	dir := writeProject(t, map[string]string{
		".pactlint-manifest.yaml": cursorManifest,
		"client.go":               client,
	})

	report, err := newService().LintProject(context.Background(), dir)
	require.NoError(t, err)

	var nullability []domain.Violation
	for _, v := range report.Violations {
		if v.RuleID == "CTR-nullability" {
			nullability = append(nullability, v)
		}
	}
	require.Len(t, nullability, 1, "reading a declared child of a nullable object is a dereference")
	assert.Equal(t, "next_cursor", nullability[0].FieldPath)
}

func TestLintProject_MissingManifestIsFatal(t *testing.T) {
	dir := writeProject(t, map[string]string{"client.go": conformantClient})

	_, err := newService().LintProject(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading manifest")
}

func TestLintProject_SeverityOverrideFromConfig(t *testing.T) {
	dir := writeProject(t, map[string]string{
		".pactlint-manifest.yaml": ordersManifest,
		".pactlint.yaml":          "severity:\n  CTR-nullability: off\n",
		"client.go":               sloppyClient,
	})

	report, err := newService().LintProject(context.Background(), dir)
	require.NoError(t, err)

	assert.NotContains(t, ruleIDs(report.Violations), "CTR-nullability")
}

func TestLintService_RulesExposed(t *testing.T) {
	rules := newService().Rules()
	require.Len(t, rules, 7)
	assert.Equal(t, "CTR-request-shape", rules[0].ID())
}
