package extractor

import (
	"go/ast"
	"go/token"

	"github.com/pactlint/pactlint/internal/domain/fact"
)

// guard is a resolved null check and the line range it dominates.
type guard struct {
	path     string
	from, to int
}

// walker emits facts for one endpoint-bound function.
type walker struct {
	ff         *fact.FileFacts
	fset       *token.FileSet
	endpointID string
	// confidence is the ceiling set by how the function was bound to its
	// endpoint; no fact from an inferred binding can claim certainty.
	confidence string
	known      map[string]bool
	statuses   []int
	opts       fact.ExtractOptions
	aliases    map[string]string
	guards     []guard
	// patternVars maps identifiers of package-level regexp.MustCompile
	// vars to their pattern literal.
	patternVars map[string]string
	imports     map[string]bool
	unresolved  map[string]bool
}

func (w *walker) loc(pos token.Pos) fact.Location {
	p := w.fset.Position(pos)
	return fact.Location{File: w.ff.File, Line: p.Line, Column: p.Column}
}

// cap lowers a confidence claim to the binding ceiling.
func (w *walker) cap(confidence string) string {
	if w.confidence == fact.Inferred {
		return fact.Inferred
	}
	return confidence
}

func (w *walker) emit(f fact.Fact) {
	f.ContractID = w.ff.ContractID
	f.EndpointID = w.endpointID
	f.Side = w.ff.Side
	if f.FieldPath != "" {
		f.FieldPath = w.ff.Paths.Intern(f.FieldPath)
	}
	w.ff.Facts = append(w.ff.Facts, f)
}

func (w *walker) markUnresolved(path string) {
	if w.unresolved == nil {
		w.unresolved = map[string]bool{}
	}
	if !w.unresolved[path] {
		w.unresolved[path] = true
		w.ff.Unresolved = append(w.ff.Unresolved, path)
	}
}

func (w *walker) walkFunc(fn *ast.FuncDecl) {
	w.collectAliasesAndGuards(fn.Body)
	w.walkStmts(fn.Body.List)
}

// collectAliasesAndGuards runs a first pass: one-level value aliases and
// null guards, which the main pass needs for resolution and Guarded flags.
func (w *walker) collectAliasesAndGuards(body *ast.BlockStmt) {
	funcEnd := w.fset.Position(body.End()).Line

	ast.Inspect(body, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.AssignStmt:
			if len(s.Lhs) == 1 && len(s.Rhs) == 1 {
				ident, ok := s.Lhs[0].(*ast.Ident)
				if !ok {
					return true
				}
				chain, ok := selectorChain(s.Rhs[0])
				if !ok || len(chain) < 2 {
					return true
				}
				if path, matched := resolvePath(chain, w.known); matched {
					w.aliases[ident.Name] = path
				}
			}
		case *ast.IfStmt:
			w.collectGuard(s, funcEnd)
		}
		return true
	})
}

func (w *walker) collectGuard(s *ast.IfStmt, funcEnd int) {
	bin, ok := s.Cond.(*ast.BinaryExpr)
	if !ok {
		return
	}
	if bin.Op != token.NEQ && bin.Op != token.EQL {
		return
	}
	valueSide, ok := nullComparison(bin)
	if !ok {
		return
	}
	path, confidence := w.resolveValue(valueSide)
	if path == "" {
		return
	}

	w.emit(fact.Fact{
		Kind:       fact.NullGuard,
		FieldPath:  path,
		Confidence: w.cap(confidence),
		Loc:        w.loc(s.Pos()),
	})

	if bin.Op == token.NEQ {
		// if x != nil { ... } guards the then-block.
		w.guards = append(w.guards, guard{
			path: path,
			from: w.fset.Position(s.Body.Pos()).Line,
			to:   w.fset.Position(s.Body.End()).Line,
		})
		return
	}
	// if x == nil { return } guards everything after the if.
	if escapesEarly(s.Body.List) {
		w.guards = append(w.guards, guard{
			path: path,
			from: w.fset.Position(s.End()).Line,
			to:   funcEnd,
		})
	}
}

// nullComparison returns the non-nil side of a comparison against nil or
// the empty string.
func nullComparison(bin *ast.BinaryExpr) (ast.Expr, bool) {
	if isNullish(bin.Y) {
		return bin.X, true
	}
	if isNullish(bin.X) {
		return bin.Y, true
	}
	return nil, false
}

func isNullish(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name == "nil"
	case *ast.BasicLit:
		return e.Kind == token.STRING && (e.Value == `""` || e.Value == "``")
	}
	return false
}

func escapesEarly(body []ast.Stmt) bool {
	for _, stmt := range body {
		switch stmt.(type) {
		case *ast.ReturnStmt, *ast.BranchStmt:
			return true
		}
	}
	return escapingBody(body)
}

// resolveValue resolves an expression to a field path: selector chains
// directly, identifiers through the one-level alias map.
func (w *walker) resolveValue(expr ast.Expr) (path, confidence string) {
	if ident, ok := expr.(*ast.Ident); ok {
		if aliased, ok := w.aliases[ident.Name]; ok {
			return aliased, fact.Inferred
		}
		return "", ""
	}
	chain, ok := selectorChain(expr)
	if !ok || len(chain) < 2 {
		return "", ""
	}
	if w.imports[chain[0]] {
		return "", ""
	}
	resolved, matched := resolvePath(chain, w.known)
	if matched {
		return resolved, fact.Certain
	}
	return resolved, fact.Inferred
}

func (w *walker) guarded(path string, line int) bool {
	for _, g := range w.guards {
		if g.path == path && line >= g.from && line <= g.to {
			return true
		}
	}
	return false
}

// walkStmts is the main pass. Statements are visited in order; expression
// scanning tracks enough parent context to tell a maximal selector chain
// from one that is further dereferenced.
func (w *walker) walkStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		w.walkStmt(stmt)
	}
}

func (w *walker) walkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		w.walkExpr(s.X)
	case *ast.AssignStmt:
		for _, rhs := range s.Rhs {
			w.walkExpr(rhs)
		}
	case *ast.ReturnStmt:
		for _, res := range s.Results {
			w.walkExpr(res)
		}
	case *ast.DeclStmt:
		if gd, ok := s.Decl.(*ast.GenDecl); ok {
			for _, spec := range gd.Specs {
				if vs, ok := spec.(*ast.ValueSpec); ok {
					for _, v := range vs.Values {
						w.walkExpr(v)
					}
				}
			}
		}
	case *ast.IfStmt:
		w.walkIf(s)
	case *ast.SwitchStmt:
		w.walkSwitch(s)
	case *ast.ForStmt:
		w.walkFor(s)
	case *ast.RangeStmt:
		w.walkExpr(s.X)
		w.walkStmts(s.Body.List)
	case *ast.BlockStmt:
		w.walkStmts(s.List)
	case *ast.DeferStmt:
		w.walkExpr(s.Call)
	case *ast.GoStmt:
		w.walkExpr(s.Call)
	}
}
