package fact

import "sort"

type setKey struct {
	endpoint string
	kind     Kind
	path     string
}

// Set is a read-only index over the facts of one contract side, built at the
// reconciliation barrier. Facts are keyed by (endpointID, kind, fieldPath)
// for O(1) lookup during rule evaluation.
type Set struct {
	byKey     map[setKey][]Fact
	byKind    map[string]map[Kind][]Fact
	files     int
	anyFailed bool
}

// NewSet indexes the given per-file extraction results. Files that were
// skipped or partially parsed taint the set: absence of a fact can then only
// be claimed with inferred confidence.
func NewSet(files []*FileFacts) *Set {
	s := &Set{
		byKey:  make(map[setKey][]Fact),
		byKind: make(map[string]map[Kind][]Fact),
	}
	for _, ff := range files {
		if ff == nil {
			continue
		}
		s.files++
		if ff.Skipped || ff.Partial {
			s.anyFailed = true
		}
		for _, f := range ff.Facts {
			k := setKey{endpoint: f.EndpointID, kind: f.Kind, path: f.FieldPath}
			s.byKey[k] = append(s.byKey[k], f)
			perKind := s.byKind[f.EndpointID]
			if perKind == nil {
				perKind = make(map[Kind][]Fact)
				s.byKind[f.EndpointID] = perKind
			}
			perKind[f.Kind] = append(perKind[f.Kind], f)
		}
	}
	return s
}

// Lookup returns the facts recorded for (endpointID, kind, fieldPath).
func (s *Set) Lookup(endpointID string, kind Kind, fieldPath string) []Fact {
	if s == nil {
		return nil
	}
	return s.byKey[setKey{endpoint: endpointID, kind: kind, path: fieldPath}]
}

// ByKind returns all facts of one kind for an endpoint, in source order.
func (s *Set) ByKind(endpointID string, kind Kind) []Fact {
	if s == nil {
		return nil
	}
	facts := s.byKind[endpointID][kind]
	sorted := make([]Fact, len(facts))
	copy(sorted, facts)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Loc.File != sorted[b].Loc.File {
			return sorted[a].Loc.File < sorted[b].Loc.File
		}
		return sorted[a].Loc.Line < sorted[b].Loc.Line
	})
	return sorted
}

// Empty reports whether the set indexed no files at all. Rules skip sides
// with no implementing files rather than claim everything is missing.
func (s *Set) Empty() bool { return s == nil || s.files == 0 }

// Tainted reports whether any contributing file was skipped or partially
// parsed. Absence claims from a tainted set are downgraded to inferred.
func (s *Set) Tainted() bool { return s != nil && s.anyFailed }

// AbsenceConfidence is the confidence carried by "no such fact" claims.
func (s *Set) AbsenceConfidence() string {
	if s.Tainted() {
		return Inferred
	}
	return Certain
}
