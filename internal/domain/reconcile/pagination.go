package reconcile

import (
	"fmt"

	"github.com/pactlint/pactlint/internal/domain"
	"github.com/pactlint/pactlint/internal/domain/fact"
)

// Pagination checks that callers of a paginated endpoint actually loop on
// the declared continuation field. Reading only the first page silently
// truncates results.
type Pagination struct{}

func (r *Pagination) ID() string { return "CTR-pagination" }
func (r *Pagination) Description() string {
	return "Require callers of paginated endpoints to loop on the continuation field"
}
func (r *Pagination) Why() string {
	return "A missing pagination loop silently truncates multi-page results."
}
func (r *Pagination) DefaultSeverity() string { return domain.SeverityError }

func (r *Pagination) Check(ctx *EndpointContext) []domain.Violation {
	cont, _, ok := ctx.Endpoint.ContinuationField()
	if !ok || ctx.Client.Empty() {
		return nil
	}

	epID := ctx.Endpoint.ID()
	invoked := len(ctx.Client.ByKind(epID, fact.ConsumedField)) > 0 ||
		len(ctx.Client.ByKind(epID, fact.SentField)) > 0 ||
		len(ctx.Client.ByKind(epID, fact.StatusBranch)) > 0
	if !invoked {
		return nil
	}

	loops := ctx.Client.ByKind(epID, fact.PaginationLoop)
	if len(loops) == 0 {
		confidence := ctx.Client.AbsenceConfidence()
		site := ctx.siteFor(fact.ConsumedField, fact.SentField, fact.StatusBranch)
		msg := fmt.Sprintf("%s declares continuation field %q but the caller reads only the first page", epID, cont.Path)
		return []domain.Violation{ctx.violation(r, confidence, cont.Path, msg, site)}
	}

	for _, loop := range loops {
		if loop.LoopField == cont.Path {
			return nil
		}
	}
	first := loops[0]
	msg := fmt.Sprintf("pagination loop for %s reads %q, not the declared continuation field %q",
		epID, first.LoopField, cont.Path)
	return []domain.Violation{ctx.violation(r, first.Confidence, cont.Path, msg, first.Loc)}
}
