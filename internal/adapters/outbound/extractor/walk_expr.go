package extractor

import (
	"go/ast"
	"go/token"
	"regexp"
	"strconv"
	"strings"

	"github.com/pactlint/pactlint/internal/domain/fact"
)

func (w *walker) walkExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.CompositeLit:
		if !w.walkPayload(e) {
			// Not a payload literal: still scan nested values.
			for _, elt := range e.Elts {
				if kv, ok := elt.(*ast.KeyValueExpr); ok {
					w.walkExpr(kv.Value)
				} else {
					w.walkExpr(elt)
				}
			}
		}
	case *ast.CallExpr:
		w.walkCall(e)
	case *ast.SelectorExpr:
		w.walkSelector(e, false)
	case *ast.BinaryExpr:
		w.walkExpr(e.X)
		w.walkExpr(e.Y)
	case *ast.UnaryExpr:
		w.walkExpr(e.X)
	case *ast.ParenExpr:
		w.walkExpr(e.X)
	case *ast.StarExpr:
		w.walkExpr(e.X)
	case *ast.IndexExpr:
		w.walkExpr(e.X)
	case *ast.KeyValueExpr:
		w.walkExpr(e.Value)
	case *ast.FuncLit:
		w.walkStmts(e.Body.List)
	}
}

// walkPayload treats a composite literal as a request/response payload when
// at least one of its keys resolves to a manifest-known field, and emits a
// SentField per leaf. Values traced through identifiers or helpers rather
// than literals carry inferred confidence.
func (w *walker) walkPayload(lit *ast.CompositeLit) bool {
	if !w.payloadShaped(lit, "") {
		return false
	}
	w.emitPayload(lit, "")
	return true
}

func (w *walker) payloadShaped(lit *ast.CompositeLit, prefix string) bool {
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		name, ok := keyName(kv.Key)
		if !ok {
			continue
		}
		path := joinPath(prefix, normalizeName(name))
		if w.known[path] {
			return true
		}
		if nested, ok := kv.Value.(*ast.CompositeLit); ok && w.payloadShaped(nested, path) {
			return true
		}
	}
	return false
}

func (w *walker) emitPayload(lit *ast.CompositeLit, prefix string) {
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		name, ok := keyName(kv.Key)
		if !ok {
			continue
		}
		path := joinPath(prefix, normalizeName(name))

		confidence := fact.Certain
		if !w.known[path] {
			confidence = fact.Inferred
			w.markUnresolved(path)
		}
		observed := literalType(kv.Value)
		if observed == "" {
			confidence = fact.Inferred
		}
		w.emit(fact.Fact{
			Kind:         fact.SentField,
			FieldPath:    path,
			ObservedType: observed,
			Confidence:   w.cap(confidence),
			Loc:          w.loc(kv.Pos()),
		})

		if nested, ok := kv.Value.(*ast.CompositeLit); ok {
			w.emitPayload(nested, path)
		} else {
			w.walkExpr(kv.Value)
		}
	}
}

func keyName(expr ast.Expr) (string, bool) {
	switch k := expr.(type) {
	case *ast.Ident:
		return k.Name, true
	case *ast.BasicLit:
		if k.Kind == token.STRING {
			return strings.Trim(k.Value, "`\""), true
		}
	}
	return "", false
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// walkSelector emits a ConsumedField for a maximal selector chain. When the
// full chain fails to resolve but the chain minus its final element does,
// the final element is an access on the field itself: a dereference.
func (w *walker) walkSelector(sel *ast.SelectorExpr, inCall bool) {
	chain, ok := selectorChain(sel)
	if !ok || len(chain) < 2 || w.imports[chain[0]] {
		return
	}

	line := w.fset.Position(sel.Pos()).Line
	if path, matched := resolvePath(chain, w.known); matched {
		w.emit(fact.Fact{
			Kind:       fact.ConsumedField,
			FieldPath:  path,
			Confidence: w.cap(fact.Certain),
			Deref:      inCall,
			Guarded:    w.guarded(path, line),
			Loc:        w.loc(sel.Pos()),
		})
		// Reading a declared child dereferences every declared ancestor
		// on the way down.
		for parent := path; ; {
			i := strings.LastIndex(parent, ".")
			if i < 0 {
				break
			}
			parent = parent[:i]
			if !w.known[parent] {
				continue
			}
			w.emit(fact.Fact{
				Kind:       fact.ConsumedField,
				FieldPath:  parent,
				Confidence: w.cap(fact.Certain),
				Deref:      true,
				Guarded:    w.guarded(parent, line),
				Loc:        w.loc(sel.Pos()),
			})
		}
		return
	}
	if len(chain) > 2 {
		if path, matched := resolvePath(chain[:len(chain)-1], w.known); matched {
			w.emit(fact.Fact{
				Kind:       fact.ConsumedField,
				FieldPath:  path,
				Confidence: w.cap(fact.Certain),
				Deref:      true,
				Guarded:    w.guarded(path, line),
				Loc:        w.loc(sel.Pos()),
			})
			return
		}
	}

	path := pathFromChain(chain)
	if path == "" {
		return
	}
	w.markUnresolved(path)
	w.emit(fact.Fact{
		Kind:       fact.ConsumedField,
		FieldPath:  path,
		Confidence: fact.Inferred,
		Guarded:    w.guarded(path, line),
		Loc:        w.loc(sel.Pos()),
	})
}

// walkCall emits ValidationCall facts for recognized validation signatures
// and recurses into arguments.
func (w *walker) walkCall(call *ast.CallExpr) {
	name := calleeName(call)

	switch {
	case strings.HasSuffix(name, ".MatchString") || strings.HasSuffix(name, ".Match"):
		w.emitPatternCheck(call)
	case name == "strings.HasPrefix" || name == "strings.HasSuffix" || name == "strings.Contains":
		w.emitSubstringCheck(call, name)
	default:
		if tag, ok := formatCalls[name]; ok {
			w.emitFormatCheck(call, tag)
		} else if kind, tag, ok := w.configuredCheck(name); ok {
			w.emitConfiguredCheck(call, kind, tag)
		}
	}

	// Method call on a selector chain: the receiver may be a contract
	// field being dereferenced.
	if sel, ok := call.Fun.(*ast.SelectorExpr); ok {
		w.walkSelector(sel, true)
	}
	for _, arg := range call.Args {
		w.walkExpr(arg)
	}
}

// emitPatternCheck handles re.MatchString(x) and friends. The pattern is
// certain when the receiver is regexp.MustCompile with a literal, or a
// package-level compiled var; otherwise the check is an indirection.
func (w *walker) emitPatternCheck(call *ast.CallExpr) {
	if len(call.Args) == 0 {
		return
	}
	path, pathConfidence := w.resolveValue(call.Args[0])
	if path == "" {
		return
	}

	pattern := ""
	confidence := fact.Inferred
	sel := call.Fun.(*ast.SelectorExpr)
	switch recv := sel.X.(type) {
	case *ast.CallExpr:
		if calleeName(recv) == "regexp.MustCompile" && len(recv.Args) == 1 {
			if lit, ok := recv.Args[0].(*ast.BasicLit); ok && lit.Kind == token.STRING {
				pattern = strings.Trim(lit.Value, "`\"")
				confidence = fact.Certain
			}
		}
	case *ast.Ident:
		if p, ok := w.patternVars[recv.Name]; ok {
			pattern = p
			confidence = fact.Certain
		}
	}
	if pathConfidence == fact.Inferred {
		confidence = fact.Inferred
	}
	w.emit(fact.Fact{
		Kind:       fact.ValidationCall,
		FieldPath:  path,
		CheckKind:  fact.CheckPattern,
		Pattern:    pattern,
		Confidence: w.cap(confidence),
		Loc:        w.loc(call.Pos()),
	})
}

// emitSubstringCheck records prefix/suffix/contains tests as pattern checks
// so the engine can classify them as weaker than a declared regex.
func (w *walker) emitSubstringCheck(call *ast.CallExpr, name string) {
	if len(call.Args) < 2 {
		return
	}
	path, _ := w.resolveValue(call.Args[0])
	if path == "" {
		return
	}
	pattern := ""
	if lit, ok := call.Args[1].(*ast.BasicLit); ok && lit.Kind == token.STRING {
		quoted := regexp.QuoteMeta(strings.Trim(lit.Value, "`\""))
		switch name {
		case "strings.HasPrefix":
			pattern = "^" + quoted
		case "strings.HasSuffix":
			pattern = quoted + "$"
		default:
			pattern = quoted
		}
	}
	w.emit(fact.Fact{
		Kind:       fact.ValidationCall,
		FieldPath:  path,
		CheckKind:  fact.CheckPattern,
		Pattern:    pattern,
		Confidence: w.cap(fact.Certain),
		Loc:        w.loc(call.Pos()),
	})
}

func (w *walker) emitFormatCheck(call *ast.CallExpr, tag string) {
	arg := lastArg(call)
	if arg == nil {
		return
	}
	path, confidence := w.resolveValue(arg)
	if path == "" {
		return
	}
	w.emit(fact.Fact{
		Kind:       fact.ValidationCall,
		FieldPath:  path,
		CheckKind:  fact.CheckFormat,
		Pattern:    tag,
		Confidence: w.cap(confidence),
		Loc:        w.loc(call.Pos()),
	})
}

// configuredCheck matches a call name against user-configured validation
// signatures of the form "Suffix=kind" or "Suffix=kind:tag".
func (w *walker) configuredCheck(name string) (kind, tag string, ok bool) {
	for _, entry := range w.opts.ValidationCalls {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 || !strings.HasSuffix(name, parts[0]) {
			continue
		}
		kindTag := strings.SplitN(parts[1], ":", 2)
		kind = kindTag[0]
		if len(kindTag) == 2 {
			tag = kindTag[1]
		}
		return kind, tag, true
	}
	return "", "", false
}

func (w *walker) emitConfiguredCheck(call *ast.CallExpr, kind, tag string) {
	arg := lastArg(call)
	if arg == nil {
		return
	}
	path, confidence := w.resolveValue(arg)
	if path == "" {
		return
	}
	w.emit(fact.Fact{
		Kind:       fact.ValidationCall,
		FieldPath:  path,
		CheckKind:  kind,
		Pattern:    tag,
		Confidence: w.cap(confidence),
		Loc:        w.loc(call.Pos()),
	})
}

func lastArg(call *ast.CallExpr) ast.Expr {
	if len(call.Args) == 0 {
		return nil
	}
	return call.Args[len(call.Args)-1]
}

// parseFloatLit reads a numeric literal, tolerating a leading minus.
func parseFloatLit(expr ast.Expr) (float64, bool) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind == token.INT || e.Kind == token.FLOAT {
			v, err := strconv.ParseFloat(e.Value, 64)
			return v, err == nil
		}
	case *ast.UnaryExpr:
		if e.Op == token.SUB {
			if v, ok := parseFloatLit(e.X); ok {
				return -v, true
			}
		}
	}
	return 0, false
}
