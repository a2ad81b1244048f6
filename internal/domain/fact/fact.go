// Package fact defines the unified source fact model: the language-neutral
// schema every extractor emits and the reconciliation engine consumes. No
// business logic lives here.
package fact

// Kind identifies the closed set of observations an extractor may emit.
type Kind string

const (
	SentField      Kind = "SentField"
	ConsumedField  Kind = "ConsumedField"
	StatusBranch   Kind = "StatusBranch"
	ValidationCall Kind = "ValidationCall"
	NullGuard      Kind = "NullGuard"
	EnumBranch     Kind = "EnumBranch"
	PaginationLoop Kind = "PaginationLoop"
	ErrorHandler   Kind = "ErrorHandler"
)

// Confidence values. Certain facts were traced through direct literals;
// inferred facts passed through an indirection.
const (
	Certain  = "certain"
	Inferred = "inferred"
)

// Side of a contract a file implements.
type Side string

const (
	SideClient Side = "client"
	SideServer Side = "server"
)

// CheckKind classifies what a ValidationCall appears to enforce.
const (
	CheckPattern = "pattern"
	CheckRange   = "range"
	CheckFormat  = "format"
	CheckNull    = "null"
)

// Location is a source position.
type Location struct {
	File   string
	Line   int
	Column int
}

// Fact is one observation extracted from code. Facts are immutable after
// extraction; rule evaluators only read them.
type Fact struct {
	Kind       Kind
	ContractID string
	EndpointID string
	Side       Side
	FieldPath  string
	// ObservedType is the primitive kind observed at the site, if known
	// (string, integer, number, boolean, object, array).
	ObservedType string
	Confidence   string

	// StatusBranch: literal status codes covered by the branch. Default
	// marks an else/default arm; BlanketSuccess marks a default arm that
	// returns a success-typed value regardless of status.
	Statuses       []int
	Default        bool
	BlanketSuccess bool

	// EnumBranch: the arm's literal value. SafeDefault marks a default arm
	// whose body escapes (panic, error return) rather than silently
	// swallowing unknown values.
	EnumValue   string
	SafeDefault bool

	// ValidationCall: the constraint kind it appears to enforce, plus the
	// literal pattern or bounds if they could be traced.
	CheckKind string
	Pattern   string
	Min, Max  *float64

	// ConsumedField: Deref means the value is dereferenced in the same
	// expression chain; Guarded means a NullGuard dominates the use.
	Deref   bool
	Guarded bool

	// PaginationLoop: the response field read by the loop condition.
	LoopField string

	Loc Location
}

// FileFacts is one file's extraction result. It owns its facts and its
// interner shard; nothing mutates it after extraction.
type FileFacts struct {
	File       string
	ContractID string
	Side       Side
	Facts      []Fact
	Paths      *Interner
	// Skipped is set when the file produced zero facts because it could not
	// be parsed. Partial is set when facts cover only a parseable prefix.
	Skipped    bool
	Partial    bool
	SkipReason string
	// Unresolved lists field paths that could not be matched to any
	// manifest-known path.
	Unresolved []string
}

// ExtractOptions configures an extractor run. It travels with the shared
// schema so every language extractor honors the same knobs.
type ExtractOptions struct {
	// KnownEndpoints maps endpoint ID ("METHOD /path") to its contract ID.
	KnownEndpoints map[string]string
	// KnownFields maps endpoint ID to the set of dotted field paths the
	// manifest declares for it (request and response merged).
	KnownFields map[string]map[string]bool
	// KnownStatuses maps endpoint ID to its accepted status codes, used to
	// expand relational status comparisons into covered literal sets.
	KnownStatuses map[string][]int
	// ValidationCalls are extra function name suffixes treated as
	// validation-call signatures.
	ValidationCalls []string
}
