package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pactlint/pactlint/internal/domain"
	"github.com/pactlint/pactlint/internal/domain/fact"
)

// StatusCodeHandling checks that the client branches on every status code
// the endpoint can return. A default arm that delegates non-success paths
// covers the remainder; a default arm that treats every response as
// success is the stronger failure.
type StatusCodeHandling struct{}

func (r *StatusCodeHandling) ID() string { return "CTR-status-code-handling" }
func (r *StatusCodeHandling) Description() string {
	return "Require client handling for every accepted status code"
}
func (r *StatusCodeHandling) Why() string {
	return "Unhandled status codes create silent failure paths in clients."
}
func (r *StatusCodeHandling) DefaultSeverity() string { return domain.SeverityError }

func (r *StatusCodeHandling) Check(ctx *EndpointContext) []domain.Violation {
	if ctx.Client.Empty() || len(ctx.Endpoint.Statuses) == 0 {
		return nil
	}

	epID := ctx.Endpoint.ID()
	branches := ctx.Client.ByKind(epID, fact.StatusBranch)
	if len(branches) == 0 {
		return nil
	}

	covered := map[int]bool{}
	confidence := fact.Certain
	hasDefault, blanketSuccess := false, false
	site := branches[0].Loc
	for _, b := range branches {
		if b.Confidence == fact.Inferred {
			confidence = fact.Inferred
		}
		if b.Default {
			hasDefault = true
			if b.BlanketSuccess {
				blanketSuccess = true
				site = b.Loc
			}
			continue
		}
		for _, s := range b.Statuses {
			covered[s] = true
		}
	}

	if blanketSuccess {
		msg := fmt.Sprintf("status handling for %s falls through to a branch that treats every response as success", epID)
		return []domain.Violation{ctx.violation(r, confidence, "", msg, site)}
	}
	if hasDefault {
		// A non-success default routes the remaining accepted codes.
		return nil
	}

	var missing []int
	for _, s := range ctx.Endpoint.Statuses {
		if !covered[s] {
			missing = append(missing, s)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Ints(missing)

	parts := make([]string, len(missing))
	for i, s := range missing {
		parts[i] = fmt.Sprintf("%d", s)
	}
	// The coverage claim inherits uncertainty from both the branch facts
	// and the set itself.
	if ctx.Client.AbsenceConfidence() == fact.Inferred {
		confidence = fact.Inferred
	}
	msg := fmt.Sprintf("%s can return status %s but the client handles only %s, missing: %s",
		epID, joinInts(ctx.Endpoint.Statuses), joinCovered(covered), strings.Join(parts, ","))
	return []domain.Violation{ctx.violation(r, confidence, "", msg, site)}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ",")
}

func joinCovered(covered map[int]bool) string {
	values := make([]int, 0, len(covered))
	for v := range covered {
		values = append(values, v)
	}
	sort.Ints(values)
	if len(values) == 0 {
		return "none"
	}
	return joinInts(values)
}
