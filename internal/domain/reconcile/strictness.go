package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pactlint/pactlint/internal/domain"
	"github.com/pactlint/pactlint/internal/domain/fact"
	"github.com/pactlint/pactlint/internal/domain/manifest"
)

// StrictnessParity checks that validation in code is at least as strict as
// the manifest constraint: a check that exists but is provably weaker is
// reported distinctly from one that is absent. Enum switches must cover the
// declared value set unless a default arm delegates safely.
type StrictnessParity struct{}

func (r *StrictnessParity) ID() string { return "CTR-strictness-parity" }
func (r *StrictnessParity) Description() string {
	return "Require validation in code to be as strict as the manifest constraint"
}
func (r *StrictnessParity) Why() string {
	return "Weaker-than-declared checks admit values the contract forbids."
}
func (r *StrictnessParity) DefaultSeverity() string { return domain.SeverityError }

func (r *StrictnessParity) Check(ctx *EndpointContext) []domain.Violation {
	if ctx.Client.Empty() && ctx.Server.Empty() {
		return nil
	}

	var out []domain.Violation
	for _, ff := range constrainedFields(ctx.Endpoint) {
		out = append(out, r.checkConstraint(ctx, ff)...)
		if ff.Constraint.Kind == manifest.KindEnum {
			out = append(out, r.checkEnumCoverage(ctx, ff)...)
		}
	}
	return out
}

// constrainedFields returns request then response fields, response buckets
// in ascending status order, so output order is stable across runs.
func constrainedFields(ep *manifest.Endpoint) []manifest.FlatField {
	out := manifest.FlattenFields(ep.Request)
	statuses := make([]int, 0, len(ep.Responses))
	for s := range ep.Responses {
		statuses = append(statuses, s)
	}
	sort.Ints(statuses)
	for _, s := range statuses {
		out = append(out, manifest.FlattenFields(ep.Responses[s])...)
	}
	return out
}

func (r *StrictnessParity) checkConstraint(ctx *EndpointContext, ff manifest.FlatField) []domain.Violation {
	fc := ff.Constraint
	if fc.Pattern == "" && fc.Range == nil && fc.Format == "" {
		return nil
	}

	// A constraint only needs enforcement where the field actually flows
	// through code.
	epID := ctx.Endpoint.ID()
	flows := len(ctx.Client.Lookup(epID, fact.SentField, ff.Path)) > 0 ||
		len(ctx.Server.Lookup(epID, fact.ConsumedField, ff.Path)) > 0 ||
		len(ctx.Client.Lookup(epID, fact.ConsumedField, ff.Path)) > 0
	if !flows {
		return nil
	}

	facts := ctx.validationFacts(ff.Path)
	var out []domain.Violation

	report := func(outcome Outcome, found *fact.Fact, requirement string) {
		switch outcome {
		case PresentConformant:
		case PresentWeaker:
			loc := found.Loc
			msg := fmt.Sprintf("field %q has a %s check but it is weaker than the manifest %s", ff.Path, found.CheckKind, requirement)
			out = append(out, ctx.violation(r, found.Confidence, ff.Path, msg, loc))
		case Absent:
			confidence := absenceConfidence(ctx)
			loc := ctx.siteFor(fact.SentField, fact.ConsumedField)
			msg := fmt.Sprintf("field %q has no enforcement for the manifest %s", ff.Path, requirement)
			out = append(out, ctx.violation(r, confidence, ff.Path, msg, loc))
		}
	}

	if fc.Pattern != "" {
		outcome, found := judgePattern(fc.Pattern, facts)
		report(outcome, found, fmt.Sprintf("pattern %s", fc.Pattern))
	}
	if fc.Range != nil {
		outcome, found := judgeRange(fc.Range, facts)
		report(outcome, found, fmt.Sprintf("range [%v, %v]", fc.Range.Min, fc.Range.Max))
	}
	if fc.Format != "" {
		outcome, found := judgeFormat(fc.Format, facts)
		report(outcome, found, fmt.Sprintf("format %s", fc.Format))
	}
	return out
}

// checkEnumCoverage diffs observed EnumBranch arms against the declared
// value set. No branching observed means no claim: silence beats a wrong
// certain finding. A default arm that delegates safely covers the rest.
func (r *StrictnessParity) checkEnumCoverage(ctx *EndpointContext, ff manifest.FlatField) []domain.Violation {
	epID := ctx.Endpoint.ID()
	arms := append(ctx.Client.Lookup(epID, fact.EnumBranch, ff.Path),
		ctx.Server.Lookup(epID, fact.EnumBranch, ff.Path)...)
	if len(arms) == 0 {
		return nil
	}

	covered := map[string]bool{}
	confidence := fact.Certain
	hasDefault, safeDefault := false, false
	var site fact.Location
	for _, arm := range arms {
		if site.File == "" {
			site = arm.Loc
		}
		if arm.Confidence == fact.Inferred {
			confidence = fact.Inferred
		}
		if arm.Default {
			hasDefault = true
			if arm.SafeDefault {
				safeDefault = true
			}
			continue
		}
		// Arms from constants carry identifier names, so coverage is
		// matched case-insensitively.
		covered[strings.ToLower(arm.EnumValue)] = true
	}

	if hasDefault && safeDefault {
		return nil
	}

	var missing []string
	for _, v := range ff.Constraint.Enum {
		if !covered[strings.ToLower(v)] {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)

	detail := "and no default arm exists"
	if hasDefault {
		detail = "and the default arm silently swallows unknown values"
	}
	msg := fmt.Sprintf("enum field %q is not exhaustively handled: missing %s %s",
		ff.Path, strings.Join(missing, ", "), detail)
	return []domain.Violation{ctx.violation(r, confidence, ff.Path, msg, site)}
}

func absenceConfidence(ctx *EndpointContext) string {
	if ctx.Client.Tainted() || ctx.Server.Tainted() {
		return fact.Inferred
	}
	return fact.Certain
}
