package application_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactlint/pactlint/internal/adapters/outbound/config"
	"github.com/pactlint/pactlint/internal/application"
)

func TestValidateManifest_DefaultPathFromConfig(t *testing.T) {
	dir := writeProject(t, map[string]string{
		".pactlint-manifest.yaml": ordersManifest,
	})

	report, err := application.NewValidateService(config.New()).ValidateManifest(dir, "")
	require.NoError(t, err)

	assert.True(t, report.Valid())
	assert.Equal(t, "1", report.Version)
	assert.Equal(t, 1, report.Contracts)
	assert.Equal(t, 1, report.Endpoints)
	assert.Equal(t, filepath.Join(dir, ".pactlint-manifest.yaml"), report.ManifestPath)
}

func TestValidateManifest_ExplicitRelativePath(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"contracts/api.yaml": ordersManifest,
	})

	report, err := application.NewValidateService(config.New()).ValidateManifest(dir, "contracts/api.yaml")
	require.NoError(t, err)
	assert.True(t, report.Valid())
}

func TestValidateManifest_ReportsDroppedContracts(t *testing.T) {
	const badRange = `
manifest_version: "1"
contracts:
  - id: orders-api
    endpoints:
      - path: /orders
        method: post
        statuses: [200]
        request:
          - name: amount
            type: number
            range: [100, 1]
`
	dir := writeProject(t, map[string]string{
		".pactlint-manifest.yaml": badRange,
	})

	report, err := application.NewValidateService(config.New()).ValidateManifest(dir, "")
	require.NoError(t, err)

	assert.False(t, report.Valid())
	assert.Zero(t, report.Contracts)
	require.NotEmpty(t, report.Errors)
}

func TestValidateManifest_MissingFile(t *testing.T) {
	_, err := application.NewValidateService(config.New()).ValidateManifest(t.TempDir(), "")
	require.Error(t, err)
}
