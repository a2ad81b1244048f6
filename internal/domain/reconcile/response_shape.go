package reconcile

import (
	"fmt"
	"sort"

	"github.com/pactlint/pactlint/internal/domain"
	"github.com/pactlint/pactlint/internal/domain/fact"
	"github.com/pactlint/pactlint/internal/domain/manifest"
)

// ResponseShape checks that required response fields are consumed for every
// status bucket the client observably branches on.
type ResponseShape struct{}

func (r *ResponseShape) ID() string { return "CTR-response-shape" }
func (r *ResponseShape) Description() string {
	return "Ensure required response fields are consumed for handled statuses"
}
func (r *ResponseShape) Why() string {
	return "Ignoring required response fields hides contract drift until production."
}
func (r *ResponseShape) DefaultSeverity() string { return domain.SeverityError }

func (r *ResponseShape) Check(ctx *EndpointContext) []domain.Violation {
	if ctx.Client.Empty() || len(ctx.Endpoint.Responses) == 0 {
		return nil
	}

	epID := ctx.Endpoint.ID()
	observed := observedStatuses(ctx.Client, epID)
	if len(observed) == 0 {
		return nil
	}

	var out []domain.Violation
	site := ctx.siteFor(fact.StatusBranch, fact.ConsumedField)

	for _, status := range observed {
		schema, ok := ctx.Endpoint.Responses[status]
		if !ok {
			continue
		}
		for _, ff := range manifest.FlattenFields(schema) {
			if !ff.Required || !leafOnly(ff.Constraint) {
				continue
			}
			if len(ctx.Client.Lookup(epID, fact.ConsumedField, ff.Path)) == 0 {
				confidence := ctx.Client.AbsenceConfidence()
				msg := fmt.Sprintf("required response field %q for status %d is never consumed", ff.Path, status)
				out = append(out, ctx.violation(r, confidence, ff.Path, msg, site))
			}
		}
	}
	return out
}

// observedStatuses collects the distinct literal status codes the client
// branches on, in ascending order.
func observedStatuses(client *fact.Set, epID string) []int {
	seen := map[int]bool{}
	for _, f := range client.ByKind(epID, fact.StatusBranch) {
		for _, s := range f.Statuses {
			seen[s] = true
		}
	}
	out := make([]int, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}
