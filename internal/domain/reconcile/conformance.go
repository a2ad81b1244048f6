package reconcile

import (
	"fmt"
	"sort"

	"github.com/pactlint/pactlint/internal/domain"
	"github.com/pactlint/pactlint/internal/domain/fact"
	"github.com/pactlint/pactlint/internal/domain/manifest"
)

// ManifestConformance checks that observed field types agree with the kinds
// the manifest declares.
type ManifestConformance struct{}

func (r *ManifestConformance) ID() string { return "CTR-manifest-conformance" }
func (r *ManifestConformance) Description() string {
	return "Ensure observed field types match declared manifest kinds"
}
func (r *ManifestConformance) Why() string {
	return "Type drift between manifest and code erodes trust in the declared API."
}
func (r *ManifestConformance) DefaultSeverity() string { return domain.SeverityError }

func (r *ManifestConformance) Check(ctx *EndpointContext) []domain.Violation {
	var out []domain.Violation
	epID := ctx.Endpoint.ID()

	check := func(ff manifest.FlatField, f fact.Fact, role string) {
		if typeCompatible(ff.Constraint.Kind, f.ObservedType) {
			return
		}
		msg := fmt.Sprintf("%s field %q is %s in code but the manifest declares %s",
			role, ff.Path, f.ObservedType, ff.Constraint.Kind)
		out = append(out, ctx.violation(r, f.Confidence, ff.Path, msg, f.Loc))
	}

	for _, ff := range manifest.FlattenFields(ctx.Endpoint.Request) {
		for _, f := range ctx.Client.Lookup(epID, fact.SentField, ff.Path) {
			check(ff, f, "request")
		}
		for _, f := range ctx.Server.Lookup(epID, fact.ConsumedField, ff.Path) {
			check(ff, f, "request")
		}
	}

	statuses := make([]int, 0, len(ctx.Endpoint.Responses))
	for s := range ctx.Endpoint.Responses {
		statuses = append(statuses, s)
	}
	sort.Ints(statuses)
	for _, s := range statuses {
		for _, ff := range manifest.FlattenFields(ctx.Endpoint.Responses[s]) {
			for _, f := range ctx.Client.Lookup(epID, fact.ConsumedField, ff.Path) {
				check(ff, f, "response")
			}
			for _, f := range ctx.Server.Lookup(epID, fact.SentField, ff.Path) {
				check(ff, f, "response")
			}
		}
	}
	return out
}
