package reconcile

import (
	"strings"

	"github.com/pactlint/pactlint/internal/domain/fact"
	"github.com/pactlint/pactlint/internal/domain/manifest"
)

// Outcome is the three-valued result of comparing a declared constraint
// against the checks observed in code. "Exists but weaker" is a distinct
// failure mode from "absent" and produces a different message.
type Outcome int

const (
	Absent Outcome = iota
	PresentWeaker
	PresentConformant
)

// judgePattern compares a declared regex against observed pattern checks.
// A check conforms only when its pattern provably subsumes the declared one;
// with textual patterns that means equality modulo anchoring.
func judgePattern(declared string, facts []fact.Fact) (Outcome, *fact.Fact) {
	var weakest *fact.Fact
	for i := range facts {
		f := &facts[i]
		if f.CheckKind != fact.CheckPattern {
			continue
		}
		if samePattern(declared, f.Pattern) {
			return PresentConformant, f
		}
		if weakest == nil {
			weakest = f
		}
	}
	if weakest == nil {
		return Absent, nil
	}
	return PresentWeaker, weakest
}

func samePattern(a, b string) bool {
	return normalizePattern(a) == normalizePattern(b) && b != ""
}

func normalizePattern(p string) string {
	p = strings.TrimPrefix(p, "^")
	return strings.TrimSuffix(p, "$")
}

// judgeRange compares a declared numeric range against observed bound
// checks. A check conforms when its bounds are at least as strict as the
// declared ones; unknown bounds cannot prove subsumption and rank weaker.
func judgeRange(declared *manifest.Range, facts []fact.Fact) (Outcome, *fact.Fact) {
	var weakest *fact.Fact
	for i := range facts {
		f := &facts[i]
		if f.CheckKind != fact.CheckRange {
			continue
		}
		if f.Min != nil && f.Max != nil && *f.Min >= declared.Min && *f.Max <= declared.Max {
			return PresentConformant, f
		}
		if weakest == nil {
			weakest = f
		}
	}
	if weakest == nil {
		return Absent, nil
	}
	return PresentWeaker, weakest
}

// judgeFormat compares a declared format tag against observed format checks.
func judgeFormat(declared string, facts []fact.Fact) (Outcome, *fact.Fact) {
	var weakest *fact.Fact
	for i := range facts {
		f := &facts[i]
		if f.CheckKind != fact.CheckFormat {
			continue
		}
		if strings.EqualFold(f.Pattern, declared) {
			return PresentConformant, f
		}
		if weakest == nil {
			weakest = f
		}
	}
	if weakest == nil {
		return Absent, nil
	}
	return PresentWeaker, weakest
}

// typeCompatible reports whether an observed primitive kind satisfies the
// declared one. Unknown observations never conflict.
func typeCompatible(declared, observed string) bool {
	if observed == "" {
		return true
	}
	switch declared {
	case manifest.KindInteger:
		return observed == "integer"
	case manifest.KindNumber:
		return observed == "integer" || observed == "number"
	case manifest.KindString, manifest.KindEnum:
		return observed == "string"
	case manifest.KindBoolean:
		return observed == "boolean"
	case manifest.KindObject:
		return observed == "object"
	case manifest.KindArray:
		return observed == "array"
	case manifest.KindUnion:
		return true
	}
	return true
}
