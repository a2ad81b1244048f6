package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactlint/pactlint/internal/domain"
	"github.com/pactlint/pactlint/internal/domain/aggregate"
)

func violation(rule, file string, line int, field string) domain.Violation {
	return domain.Violation{
		RuleID:     rule,
		Severity:   domain.SeverityError,
		Confidence: domain.ConfidenceCertain,
		Message:    "m",
		EndpointID: "POST /orders",
		FieldPath:  field,
		File:       file,
		Line:       line,
	}
}

func TestAggregator_DeduplicatesIdenticalFindings(t *testing.T) {
	agg := aggregate.New()
	v := violation("CTR-request-shape", "client.go", 10, "amount")
	agg.Add(v)
	agg.Add(v)
	agg.Add(v)

	assert.Len(t, agg.Result(), 1)
}

func TestAggregator_DistinctSitesSurviveDedupe(t *testing.T) {
	agg := aggregate.New()
	agg.Add(violation("CTR-nullability", "client.go", 10, "user.email"))
	agg.Add(violation("CTR-nullability", "client.go", 22, "user.email"))

	assert.Len(t, agg.Result(), 2)
}

func TestAggregator_StableOrder(t *testing.T) {
	agg := aggregate.New()
	agg.Add(violation("CTR-response-shape", "b.go", 5, "x"))
	agg.Add(violation("CTR-request-shape", "a.go", 9, "x"))
	agg.Add(violation("CTR-request-shape", "a.go", 3, "z"))
	agg.Add(violation("CTR-request-shape", "a.go", 3, "a"))

	out := agg.Result()
	require.Len(t, out, 4)
	assert.Equal(t, "a.go", out[0].File)
	assert.Equal(t, 3, out[0].Line)
	assert.Equal(t, "a", out[0].FieldPath)
	assert.Equal(t, "z", out[1].FieldPath)
	assert.Equal(t, 9, out[2].Line)
	assert.Equal(t, "b.go", out[3].File)
}

func TestAggregator_ResultIsACopy(t *testing.T) {
	agg := aggregate.New()
	agg.Add(violation("CTR-pagination", "a.go", 1, ""))

	first := agg.Result()
	first[0].RuleID = "mutated"

	second := agg.Result()
	assert.Equal(t, "CTR-pagination", second[0].RuleID)
}

func TestPolicy_DisableNextLine(t *testing.T) {
	p := aggregate.CompilePolicy([]byte(`package x

// pactlint-disable-next-line CTR-nullability -- guarded upstream
value := resp.User.Email
other := resp.User.Name
`))

	assert.True(t, p.Suppressed("CTR-nullability", 4))
	assert.False(t, p.Suppressed("CTR-nullability", 5))
	assert.False(t, p.Suppressed("CTR-request-shape", 4))
}

func TestPolicy_DisableNextLineAllRules(t *testing.T) {
	p := aggregate.CompilePolicy([]byte(`package x
// pactlint-disable-next-line
v := resp.Total
`))
	assert.True(t, p.Suppressed("CTR-request-shape", 3))
	assert.True(t, p.Suppressed("CTR-nullability", 3))
}

func TestPolicy_DisableFile(t *testing.T) {
	p := aggregate.CompilePolicy([]byte(`// pactlint-disable-file
package x
`))
	assert.True(t, p.Suppressed("CTR-request-shape", 99))
}

func TestPolicy_DisableFileSingleRule(t *testing.T) {
	p := aggregate.CompilePolicy([]byte(`// pactlint-disable-file CTR-pagination
package x
`))
	assert.True(t, p.Suppressed("CTR-pagination", 50))
	assert.False(t, p.Suppressed("CTR-request-shape", 50))
}

func TestPolicy_BlockDisableEnable(t *testing.T) {
	p := aggregate.CompilePolicy([]byte(`package x
// pactlint-disable CTR-status-code-handling, CTR-nullability
a()
b()
// pactlint-enable CTR-nullability
c()
`))

	assert.True(t, p.Suppressed("CTR-status-code-handling", 3))
	assert.True(t, p.Suppressed("CTR-nullability", 4))
	// after enable, only the still-disabled rule is filtered
	assert.True(t, p.Suppressed("CTR-status-code-handling", 6))
	assert.False(t, p.Suppressed("CTR-nullability", 6))
}

func TestPolicy_BlockDisableAllThenEnable(t *testing.T) {
	p := aggregate.CompilePolicy([]byte(`package x
// pactlint-disable
a()
// pactlint-enable
b()
`))
	assert.True(t, p.Suppressed("CTR-request-shape", 3))
	assert.False(t, p.Suppressed("CTR-request-shape", 5))
}

func TestAggregator_PolicyAppliedAtResult(t *testing.T) {
	agg := aggregate.New()
	agg.Add(violation("CTR-nullability", "client.go", 4, "user.email"))
	agg.Add(violation("CTR-nullability", "client.go", 8, "user.name"))

	agg.SetPolicy("client.go", aggregate.CompilePolicy([]byte(`package x
c()
// pactlint-disable-next-line CTR-nullability
v := u.Email
`)))

	out := agg.Result()
	require.Len(t, out, 1)
	assert.Equal(t, 8, out[0].Line)
}

func TestParseDirective_ReasonStripped(t *testing.T) {
	p := aggregate.CompilePolicy([]byte(`package x
// pactlint-disable-next-line CTR-request-shape -- tracked in JIRA-142
send()
`))
	assert.True(t, p.Suppressed("CTR-request-shape", 3))
	assert.False(t, p.Suppressed("tracked", 3))
}
