package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_ValidManifest(t *testing.T) {
	dir := fixtureProject(t, fixtureClient)

	output, err := runCommand(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, output, "contracts: 1, endpoints: 1")
}

func TestValidateCommand_ExplicitManifestFlag(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "contracts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contracts", "api.yaml"), []byte(fixtureManifest), 0o644))

	_, err := runCommand(t, "validate", dir, "--manifest", "contracts/api.yaml")
	require.NoError(t, err)
}

func TestValidateCommand_JSON(t *testing.T) {
	dir := fixtureProject(t, fixtureClient)

	output, err := runCommand(t, "validate", dir, "--json")
	require.NoError(t, err)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &report))
	assert.Contains(t, report, "manifest_version")
	assert.Contains(t, report, "contracts")
}

func TestValidateCommand_BrokenManifestFails(t *testing.T) {
	dir := t.TempDir()
	broken := `
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
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pactlint-manifest.yaml"), []byte(broken), 0o644))

	output, err := runCommand(t, "validate", dir)
	require.Error(t, err)
	assert.Contains(t, output, "error:")
}
