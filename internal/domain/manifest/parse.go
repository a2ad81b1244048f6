package manifest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrorKind classifies manifest load failures.
type ErrorKind string

const (
	MissingRequiredKey    ErrorKind = "MissingRequiredKey"
	InvalidRange          ErrorKind = "InvalidRange"
	DuplicateContractID   ErrorKind = "DuplicateContractId"
	UnversionedManifest   ErrorKind = "UnversionedManifest"
	UnsupportedConstraint ErrorKind = "UnsupportedConstraint"
	UnacceptedStatus      ErrorKind = "UnacceptedStatus"
	ConflictingModifiers  ErrorKind = "ConflictingModifiers"
)

// Error is one manifest load failure, scoped to the contract it occurred in.
// A contract with errors is dropped from the result; other contracts load.
type Error struct {
	Kind       ErrorKind
	ContractID string
	FieldPath  string
	Message    string
}

func (e Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.ContractID != "" {
		b.WriteString(": contract " + e.ContractID)
	}
	if e.FieldPath != "" {
		b.WriteString(", field " + e.FieldPath)
	}
	b.WriteString(": " + e.Message)
	return b.String()
}

type rawManifest struct {
	Version   string        `yaml:"manifest_version"`
	Contracts []rawContract `yaml:"contracts"`
}

type rawContract struct {
	ID        string        `yaml:"id"`
	Producer  string        `yaml:"producer"`
	Consumer  string        `yaml:"consumer"`
	Protocol  string        `yaml:"protocol"`
	Endpoints []rawEndpoint `yaml:"endpoints"`
}

type rawEndpoint struct {
	Path      string                 `yaml:"path"`
	Method    string                 `yaml:"method"`
	Statuses  []int                  `yaml:"statuses"`
	Request   []yaml.Node            `yaml:"request"`
	Responses map[string][]yaml.Node `yaml:"responses"`
}

// Parse parses and validates manifest bytes. Unknown top-level keys are
// tolerated; unknown constraint modifiers on a known field type fail that
// contract closed. The returned manifest contains only clean contracts.
func Parse(data []byte) (*Manifest, []Error, error) {
	var raw rawManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(raw.Contracts) == 0 {
		return nil, nil, fmt.Errorf("%w: no contracts declared", ErrUnreadable)
	}

	m := &Manifest{Version: strings.TrimSpace(raw.Version)}
	var errs []Error
	if m.Version == "" {
		errs = append(errs, Error{
			Kind:    UnversionedManifest,
			Message: "manifest_version is required",
		})
	}

	seen := map[string]bool{}
	for i, rc := range raw.Contracts {
		contract, contractErrs := buildContract(i, rc)
		if seen[contract.ID] {
			errs = append(errs, Error{
				Kind:       DuplicateContractID,
				ContractID: contract.ID,
				Message:    "contract id declared more than once",
			})
			continue
		}
		if contract.ID != "" {
			seen[contract.ID] = true
		}
		if len(contractErrs) > 0 {
			errs = append(errs, contractErrs...)
			continue
		}
		m.Contracts = append(m.Contracts, contract)
	}

	return m, errs, nil
}

func buildContract(index int, rc rawContract) (Contract, []Error) {
	c := Contract{
		ID:       strings.TrimSpace(rc.ID),
		Producer: strings.TrimSpace(rc.Producer),
		Consumer: strings.TrimSpace(rc.Consumer),
		Protocol: strings.TrimSpace(rc.Protocol),
	}
	var errs []Error
	if c.ID == "" {
		errs = append(errs, Error{
			Kind:    MissingRequiredKey,
			Message: fmt.Sprintf("contract at index %d has no id", index),
		})
		return c, errs
	}
	if len(rc.Endpoints) == 0 {
		errs = append(errs, Error{
			Kind:       MissingRequiredKey,
			ContractID: c.ID,
			Message:    "contract declares no endpoints",
		})
	}

	for _, re := range rc.Endpoints {
		ep, epErrs := buildEndpoint(c.ID, re)
		errs = append(errs, epErrs...)
		c.Endpoints = append(c.Endpoints, ep)
	}
	return c, errs
}

func buildEndpoint(contractID string, re rawEndpoint) (Endpoint, []Error) {
	ep := Endpoint{
		Path:     strings.TrimSpace(re.Path),
		Method:   strings.ToUpper(strings.TrimSpace(re.Method)),
		Statuses: re.Statuses,
	}
	var errs []Error
	if ep.Path == "" || ep.Method == "" {
		errs = append(errs, Error{
			Kind:       MissingRequiredKey,
			ContractID: contractID,
			Message:    "endpoint requires both path and method",
		})
		return ep, errs
	}

	for _, node := range re.Request {
		fc, fcErrs := parseConstraint(contractID, "", node)
		errs = append(errs, fcErrs...)
		ep.Request = append(ep.Request, fc)
	}

	if len(re.Responses) > 0 {
		ep.Responses = make(map[int][]FieldConstraint, len(re.Responses))
		statuses := make([]string, 0, len(re.Responses))
		for s := range re.Responses {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		for _, s := range statuses {
			code, err := strconv.Atoi(s)
			if err != nil {
				errs = append(errs, Error{
					Kind:       MissingRequiredKey,
					ContractID: contractID,
					Message:    fmt.Sprintf("response status %q is not numeric", s),
				})
				continue
			}
			if !ep.AcceptsStatus(code) {
				errs = append(errs, Error{
					Kind:       UnacceptedStatus,
					ContractID: contractID,
					Message:    fmt.Sprintf("endpoint %s declares a schema for status %d outside its accepted list %v", ep.ID(), code, ep.Statuses),
				})
			}
			for _, node := range re.Responses[s] {
				fc, fcErrs := parseConstraint(contractID, "", node)
				errs = append(errs, fcErrs...)
				ep.Responses[code] = append(ep.Responses[code], fc)
			}
		}
	}
	return ep, errs
}

var knownKinds = map[string]bool{
	KindString:  true,
	KindInteger: true,
	KindNumber:  true,
	KindBoolean: true,
	KindEnum:    true,
	KindObject:  true,
	KindArray:   true,
	KindUnion:   true,
}

// parseConstraint decodes one field constraint mapping, failing closed on
// unknown modifier keys.
func parseConstraint(contractID, prefix string, node yaml.Node) (FieldConstraint, []Error) {
	var fc FieldConstraint
	var errs []Error

	if node.Kind != yaml.MappingNode {
		return fc, []Error{{
			Kind:       MissingRequiredKey,
			ContractID: contractID,
			Message:    "field constraint must be a mapping",
		}}
	}

	path := func() string {
		if prefix == "" {
			return fc.Name
		}
		return prefix + "." + fc.Name
	}

	// First pass: name and type, needed for error context and for deciding
	// whether a modifier is legal on this field kind.
	for i := 0; i+1 < len(node.Content); i += 2 {
		switch node.Content[i].Value {
		case "name":
			fc.Name = strings.TrimSpace(node.Content[i+1].Value)
		case "type":
			fc.Kind = strings.TrimSpace(node.Content[i+1].Value)
		}
	}
	if fc.Name == "" {
		return fc, []Error{{
			Kind:       MissingRequiredKey,
			ContractID: contractID,
			Message:    "field constraint has no name",
		}}
	}
	if !knownKinds[fc.Kind] {
		return fc, []Error{{
			Kind:       UnsupportedConstraint,
			ContractID: contractID,
			FieldPath:  path(),
			Message:    fmt.Sprintf("unknown field type %q", fc.Kind),
		}}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "name", "type":
			// handled above
		case "required":
			fc.Required = val.Value == "true"
		case "nullable":
			fc.Nullable = val.Value == "true"
		case "continuation":
			fc.Continuation = val.Value == "true"
		case "pattern":
			fc.Pattern = val.Value
		case "format":
			fc.Format = val.Value
		case "default":
			fc.HasDefault = true
			fc.Default = val.Value
		case "range":
			r, err := parseRange(val)
			if err != nil {
				errs = append(errs, Error{
					Kind:       InvalidRange,
					ContractID: contractID,
					FieldPath:  path(),
					Message:    err.Error(),
				})
				continue
			}
			fc.Range = r
		case "enum":
			for _, item := range val.Content {
				fc.Enum = append(fc.Enum, item.Value)
			}
		case "fields":
			for _, child := range val.Content {
				childFC, childErrs := parseConstraint(contractID, path(), *child)
				errs = append(errs, childErrs...)
				fc.Fields = append(fc.Fields, childFC)
			}
		case "items":
			itemFC, itemErrs := parseConstraint(contractID, path(), *val)
			errs = append(errs, itemErrs...)
			fc.Items = &itemFC
		default:
			errs = append(errs, Error{
				Kind:       UnsupportedConstraint,
				ContractID: contractID,
				FieldPath:  path(),
				Message:    fmt.Sprintf("unknown constraint modifier %q", key),
			})
		}
	}

	errs = append(errs, validateConstraint(contractID, path(), fc)...)
	return fc, errs
}

func parseRange(node *yaml.Node) (*Range, error) {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return nil, fmt.Errorf("range must be [min, max]")
	}
	min, err := strconv.ParseFloat(node.Content[0].Value, 64)
	if err != nil {
		return nil, fmt.Errorf("range min %q is not numeric", node.Content[0].Value)
	}
	max, err := strconv.ParseFloat(node.Content[1].Value, 64)
	if err != nil {
		return nil, fmt.Errorf("range max %q is not numeric", node.Content[1].Value)
	}
	if min > max {
		return nil, fmt.Errorf("range min %v exceeds max %v", min, max)
	}
	return &Range{Min: min, Max: max}, nil
}

func validateConstraint(contractID, path string, fc FieldConstraint) []Error {
	var errs []Error
	if fc.Kind == KindEnum && len(fc.Enum) == 0 {
		errs = append(errs, Error{
			Kind:       MissingRequiredKey,
			ContractID: contractID,
			FieldPath:  path,
			Message:    "enum field declares no values",
		})
	}
	if fc.Required && fc.HasDefault {
		errs = append(errs, Error{
			Kind:       ConflictingModifiers,
			ContractID: contractID,
			FieldPath:  path,
			Message:    "required field cannot carry a default implying absence",
		})
	}
	return errs
}
