package reconcile

import (
	"fmt"

	"github.com/pactlint/pactlint/internal/domain"
	"github.com/pactlint/pactlint/internal/domain/fact"
	"github.com/pactlint/pactlint/internal/domain/manifest"
)

// RequestShape checks that every required request field is actually sent by
// the client side of the contract.
type RequestShape struct{}

func (r *RequestShape) ID() string { return "CTR-request-shape" }
func (r *RequestShape) Description() string {
	return "Ensure every required request field is sent by the client"
}
func (r *RequestShape) Why() string {
	return "Missing required request fields cause immediate runtime rejections."
}
func (r *RequestShape) DefaultSeverity() string { return domain.SeverityError }

func (r *RequestShape) Check(ctx *EndpointContext) []domain.Violation {
	if ctx.Client.Empty() {
		return nil
	}

	var out []domain.Violation
	epID := ctx.Endpoint.ID()
	site := ctx.siteFor(fact.SentField, fact.StatusBranch, fact.ConsumedField)

	for _, ff := range manifest.FlattenFields(ctx.Endpoint.Request) {
		if !ff.Required {
			continue
		}
		if leafOnly(ff.Constraint) && len(ctx.Client.Lookup(epID, fact.SentField, ff.Path)) == 0 {
			confidence := ctx.Client.AbsenceConfidence()
			msg := fmt.Sprintf("required request field %q is never sent to %s", ff.Path, epID)
			out = append(out, ctx.violation(r, confidence, ff.Path, msg, site))
		}
	}
	return out
}

// leafOnly reports whether a constraint is a leaf: completeness is judged on
// leaves, since object containers are implied by their sent children.
func leafOnly(fc manifest.FieldConstraint) bool {
	return len(fc.Fields) == 0 && fc.Items == nil
}
