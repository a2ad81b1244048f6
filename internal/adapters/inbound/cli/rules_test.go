package cli_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesCommand_ListsAllRules(t *testing.T) {
	output, err := runCommand(t, "rules")
	require.NoError(t, err)

	for _, id := range []string{
		"CTR-request-shape",
		"CTR-response-shape",
		"CTR-manifest-conformance",
		"CTR-strictness-parity",
		"CTR-status-code-handling",
		"CTR-nullability",
		"CTR-pagination",
	} {
		assert.Contains(t, output, id)
	}
}

func TestRulesCommand_JSON(t *testing.T) {
	output, err := runCommand(t, "rules", "--json")
	require.NoError(t, err)

	var docs []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &docs))
	require.Len(t, docs, 7)
	assert.Equal(t, "CTR-request-shape", docs[0]["id"])
	assert.Contains(t, docs[0], "default_severity")
	assert.Contains(t, docs[0], "why")
}

func TestVersionCommand(t *testing.T) {
	output, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "pactlint")
}
