// Package aggregate deduplicates, orders, and filters violations before they
// reach the reporter. No rule logic lives here.
package aggregate

import (
	"sort"

	"github.com/pactlint/pactlint/internal/domain"
)

type dedupeKey struct {
	ruleID     string
	endpointID string
	fieldPath  string
	file       string
	line       int
}

// Aggregator collects violations across analysis passes. Adding is
// idempotent for identical findings, so incremental re-runs do not inflate
// the result. The aggregator holds no pending state: it is safe for a
// cancelled run to simply never call Result.
type Aggregator struct {
	seen       map[dedupeKey]bool
	violations []domain.Violation
	policies   map[string]*Policy
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{
		seen:     make(map[dedupeKey]bool),
		policies: make(map[string]*Policy),
	}
}

// Add records violations, dropping exact duplicates.
func (a *Aggregator) Add(violations ...domain.Violation) {
	for _, v := range violations {
		k := dedupeKey{
			ruleID:     v.RuleID,
			endpointID: v.EndpointID,
			fieldPath:  v.FieldPath,
			file:       v.File,
			line:       v.Line,
		}
		if a.seen[k] {
			continue
		}
		a.seen[k] = true
		a.violations = append(a.violations, v)
	}
}

// SetPolicy registers a file's suppression policy, applied at Result time.
// Suppression is an aggregator concern, never a rule concern.
func (a *Aggregator) SetPolicy(file string, p *Policy) {
	if p != nil {
		a.policies[file] = p
	}
}

// Result returns the final violation list: suppressions applied, stable
// sorted by file, line, rule ID, then field path. The returned slice is a
// copy; the aggregator's state is not exposed mutably.
func (a *Aggregator) Result() []domain.Violation {
	out := make([]domain.Violation, 0, len(a.violations))
	for _, v := range a.violations {
		if p, ok := a.policies[v.File]; ok && p.Suppressed(v.RuleID, v.Line) {
			continue
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		if out[i].RuleID != out[j].RuleID {
			return out[i].RuleID < out[j].RuleID
		}
		return out[i].FieldPath < out[j].FieldPath
	})
	return out
}
