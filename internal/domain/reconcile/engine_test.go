package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactlint/pactlint/internal/domain"
	"github.com/pactlint/pactlint/internal/domain/fact"
	"github.com/pactlint/pactlint/internal/domain/manifest"
	"github.com/pactlint/pactlint/internal/domain/reconcile"
)

const epOrders = "POST /orders"

func ordersContract() *manifest.Contract {
	return &manifest.Contract{
		ID: "orders-api",
		Endpoints: []manifest.Endpoint{{
			Path:     "/orders",
			Method:   "POST",
			Statuses: []int{200, 400, 422},
			Request: []manifest.FieldConstraint{
				{Name: "amount", Kind: manifest.KindNumber, Required: true, Range: &manifest.Range{Min: 0.01, Max: 10000}},
				{Name: "currency", Kind: manifest.KindEnum, Required: true, Enum: []string{"USD", "EUR", "GBP"}},
				{Name: "note", Kind: manifest.KindString},
			},
			Responses: map[int][]manifest.FieldConstraint{
				200: {
					{Name: "order_id", Kind: manifest.KindString, Required: true},
					{Name: "eta", Kind: manifest.KindString, Nullable: true},
				},
			},
		}},
	}
}

func setOf(facts ...fact.Fact) *fact.Set {
	for i := range facts {
		if facts[i].EndpointID == "" {
			facts[i].EndpointID = epOrders
		}
		if facts[i].Confidence == "" {
			facts[i].Confidence = fact.Certain
		}
	}
	return fact.NewSet([]*fact.FileFacts{{File: "client.go", Facts: facts}})
}

func taintedSetOf(facts ...fact.Fact) *fact.Set {
	for i := range facts {
		if facts[i].EndpointID == "" {
			facts[i].EndpointID = epOrders
		}
		if facts[i].Confidence == "" {
			facts[i].Confidence = fact.Certain
		}
	}
	return fact.NewSet([]*fact.FileFacts{
		{File: "client.go", Facts: facts},
		{File: "broken.go", Skipped: true},
	})
}

func emptySet() *fact.Set { return fact.NewSet(nil) }

func run(t *testing.T, contract *manifest.Contract, client, server *fact.Set) []domain.Violation {
	t.Helper()
	return reconcile.NewEngine().ReconcileContract(contract, client, server, domain.DefaultConfig())
}

func byRule(violations []domain.Violation, ruleID string) []domain.Violation {
	var out []domain.Violation
	for _, v := range violations {
		if v.RuleID == ruleID {
			out = append(out, v)
		}
	}
	return out
}

// A client that sends every required field, handles every status, and
// consumes the required response field produces zero violations.
func TestEngine_ConformantClientIsClean(t *testing.T) {
	client := setOf(
		fact.Fact{Kind: fact.SentField, FieldPath: "amount", ObservedType: "number"},
		fact.Fact{Kind: fact.SentField, FieldPath: "currency", ObservedType: "string"},
		fact.Fact{Kind: fact.ValidationCall, FieldPath: "amount", CheckKind: fact.CheckRange, Min: f64(0.01), Max: f64(10000)},
		fact.Fact{Kind: fact.StatusBranch, Statuses: []int{200}},
		fact.Fact{Kind: fact.StatusBranch, Statuses: []int{400, 422}},
		fact.Fact{Kind: fact.ConsumedField, FieldPath: "order_id", ObservedType: "string"},
		fact.Fact{Kind: fact.EnumBranch, FieldPath: "currency", EnumValue: "USD"},
		fact.Fact{Kind: fact.EnumBranch, FieldPath: "currency", EnumValue: "EUR"},
		fact.Fact{Kind: fact.EnumBranch, FieldPath: "currency", EnumValue: "GBP"},
	)

	violations := run(t, ordersContract(), client, emptySet())
	assert.Empty(t, violations)
}

// No implementing files on a side means no absence claims about that side.
func TestEngine_EmptySidesProduceNothing(t *testing.T) {
	violations := run(t, ordersContract(), emptySet(), emptySet())
	assert.Empty(t, violations)
}

func TestEngine_SeverityOffDisablesRule(t *testing.T) {
	client := setOf(fact.Fact{Kind: fact.SentField, FieldPath: "currency"})
	cfg := domain.DefaultConfig()
	cfg.Severity["CTR-request-shape"] = domain.SeverityOff

	violations := reconcile.NewEngine().ReconcileContract(ordersContract(), client, emptySet(), cfg)
	assert.Empty(t, byRule(violations, "CTR-request-shape"))
}

func TestEngine_SeverityOverride(t *testing.T) {
	client := setOf(fact.Fact{Kind: fact.SentField, FieldPath: "currency"})
	cfg := domain.DefaultConfig()
	cfg.Severity["CTR-request-shape"] = domain.SeverityInfo

	violations := reconcile.NewEngine().ReconcileContract(ordersContract(), client, emptySet(), cfg)
	vs := byRule(violations, "CTR-request-shape")
	require.NotEmpty(t, vs)
	assert.Equal(t, domain.SeverityInfo, vs[0].Severity)
}

// Re-running the engine over identical inputs yields identical output.
func TestEngine_Deterministic(t *testing.T) {
	client := setOf(
		fact.Fact{Kind: fact.SentField, FieldPath: "amount"},
		fact.Fact{Kind: fact.StatusBranch, Statuses: []int{200}},
		fact.Fact{Kind: fact.ConsumedField, FieldPath: "eta", Deref: true},
	)

	first := run(t, ordersContract(), client, emptySet())
	second := run(t, ordersContract(), client, emptySet())
	assert.Equal(t, first, second)
}

func TestEngine_RulesRegisteredInStableOrder(t *testing.T) {
	rules := reconcile.NewEngine().Rules()
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID()
	}
	assert.Equal(t, []string{
		"CTR-request-shape",
		"CTR-response-shape",
		"CTR-manifest-conformance",
		"CTR-strictness-parity",
		"CTR-status-code-handling",
		"CTR-nullability",
		"CTR-pagination",
	}, ids)
}

func f64(v float64) *float64 { return &v }
