// Package manifest parses and validates the contract manifest into a typed
// constraint tree. Pure transform: no side effects, no I/O beyond Load.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrUnreadable is the only fatal manifest condition: no contracts could be
// derived at all. Per-contract problems surface as []Error instead.
var ErrUnreadable = errors.New("manifest unreadable")

// Field kinds.
const (
	KindString  = "string"
	KindInteger = "integer"
	KindNumber  = "number"
	KindBoolean = "boolean"
	KindEnum    = "enum"
	KindObject  = "object"
	KindArray   = "array"
	KindUnion   = "union"
)

// Manifest is the validated contract tree.
type Manifest struct {
	Version   string
	Contracts []Contract
}

// Contract is one producer/consumer API agreement.
type Contract struct {
	ID        string
	Producer  string
	Consumer  string
	Protocol  string
	Endpoints []Endpoint
}

// Endpoint is a path/method pair with request and per-status response
// schemas. Every status keyed in Responses appears in Statuses.
type Endpoint struct {
	Path      string
	Method    string
	Statuses  []int
	Request   []FieldConstraint
	Responses map[int][]FieldConstraint
}

// ID returns the endpoint identifier used to key source facts.
func (e Endpoint) ID() string {
	return strings.ToUpper(e.Method) + " " + e.Path
}

// AcceptsStatus reports whether code is in the endpoint's accepted list.
func (e Endpoint) AcceptsStatus(code int) bool {
	for _, s := range e.Statuses {
		if s == code {
			return true
		}
	}
	return false
}

// ContinuationField returns the response field marked as the pagination
// cursor, with the status bucket that declares it.
func (e Endpoint) ContinuationField() (FlatField, int, bool) {
	statuses := make([]int, 0, len(e.Responses))
	for s := range e.Responses {
		statuses = append(statuses, s)
	}
	sort.Ints(statuses)
	for _, s := range statuses {
		for _, ff := range FlattenFields(e.Responses[s]) {
			if ff.Constraint.Continuation {
				return ff, s, true
			}
		}
	}
	return FlatField{}, 0, false
}

// Range bounds a numeric constraint. Min > Max is rejected at load.
type Range struct {
	Min float64
	Max float64
}

// FieldConstraint is the atomic unit of both schemas: a named, typed field
// with zero or more modifiers. Required and Nullable are independent flags:
// required+nullable means the key must be present but its value may be null.
type FieldConstraint struct {
	Name         string
	Kind         string
	Required     bool
	Nullable     bool
	Range        *Range
	Pattern      string
	Enum         []string
	Format       string
	HasDefault   bool
	Default      string
	Continuation bool
	Fields       []FieldConstraint // object children
	Items        *FieldConstraint  // array element
}

// FlatField is a constraint paired with its dotted path from the schema root.
type FlatField struct {
	Path       string
	Constraint FieldConstraint
	// Required is the effective requiredness: the field and every ancestor
	// on its path are required.
	Required bool
}

// FlattenFields walks a constraint tree and returns every addressable field
// with its dotted path. Array elements flatten under the array's own path,
// matching how code addresses elements after iteration.
func FlattenFields(fields []FieldConstraint) []FlatField {
	var out []FlatField
	for _, f := range fields {
		flattenInto(&out, "", f, true)
	}
	return out
}

func flattenInto(out *[]FlatField, prefix string, f FieldConstraint, ancestorsRequired bool) {
	path := f.Name
	if prefix != "" {
		path = prefix + "." + f.Name
	}
	required := ancestorsRequired && f.Required
	*out = append(*out, FlatField{Path: path, Constraint: f, Required: required})
	for _, child := range f.Fields {
		flattenInto(out, path, child, required)
	}
	if f.Items != nil {
		for _, child := range f.Items.Fields {
			flattenInto(out, path, child, required)
		}
	}
}

// FindField resolves a dotted path within a schema.
func FindField(fields []FieldConstraint, path string) (FlatField, bool) {
	for _, ff := range FlattenFields(fields) {
		if ff.Path == path {
			return ff, true
		}
	}
	return FlatField{}, false
}

// Load reads a manifest from disk. Fatal only when the document is
// unreadable; per-contract failures come back as []Error.
func Load(path string) (*Manifest, []Error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load manifest %s: %w", path, err)
	}
	return Parse(data)
}
