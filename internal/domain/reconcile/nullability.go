package reconcile

import (
	"fmt"
	"sort"

	"github.com/pactlint/pactlint/internal/domain"
	"github.com/pactlint/pactlint/internal/domain/fact"
	"github.com/pactlint/pactlint/internal/domain/manifest"
)

// Nullability flags dereferences of nullable fields that no NullGuard
// dominates. This is a crash-on-null failure mode, independent of whether
// the field is otherwise present and well-typed, so it fires per site.
type Nullability struct{}

func (r *Nullability) ID() string { return "CTR-nullability" }
func (r *Nullability) Description() string {
	return "Forbid unguarded dereference of nullable contract fields"
}
func (r *Nullability) Why() string {
	return "A nullable field dereferenced without a guard crashes on the null case."
}
func (r *Nullability) DefaultSeverity() string { return domain.SeverityError }

func (r *Nullability) Check(ctx *EndpointContext) []domain.Violation {
	var out []domain.Violation
	epID := ctx.Endpoint.ID()

	for _, ff := range nullableFields(ctx.Endpoint) {
		facts := append(ctx.Client.Lookup(epID, fact.ConsumedField, ff.Path),
			ctx.Server.Lookup(epID, fact.ConsumedField, ff.Path)...)
		sort.SliceStable(facts, func(a, b int) bool {
			if facts[a].Loc.File != facts[b].Loc.File {
				return facts[a].Loc.File < facts[b].Loc.File
			}
			return facts[a].Loc.Line < facts[b].Loc.Line
		})
		for _, f := range facts {
			if !f.Deref || f.Guarded {
				continue
			}
			msg := fmt.Sprintf("nullable field %q is dereferenced without a null check", ff.Path)
			out = append(out, ctx.violation(r, f.Confidence, ff.Path, msg, f.Loc))
		}
	}
	return out
}

func nullableFields(ep *manifest.Endpoint) []manifest.FlatField {
	var out []manifest.FlatField
	seen := map[string]bool{}
	for _, ff := range constrainedFields(ep) {
		if ff.Constraint.Nullable && !seen[ff.Path] {
			seen[ff.Path] = true
			out = append(out, ff)
		}
	}
	return out
}
