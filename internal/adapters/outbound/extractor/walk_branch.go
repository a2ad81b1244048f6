package extractor

import (
	"go/ast"
	"go/token"

	"github.com/pactlint/pactlint/internal/domain/fact"
)

// walkIf classifies a condition: status comparison, range check, error
// handler, or plain expression. Null guards were emitted by the first pass.
func (w *walker) walkIf(s *ast.IfStmt) {
	if s.Init != nil {
		w.walkStmt(s.Init)
	}

	switch {
	case w.emitStatusComparison(s):
	case w.emitRangeCheck(s.Cond):
	case isErrCheck(s.Cond):
		w.emit(fact.Fact{
			Kind:       fact.ErrorHandler,
			Confidence: w.cap(fact.Certain),
			Loc:        w.loc(s.Pos()),
		})
	default:
		w.walkExpr(s.Cond)
	}

	w.walkStmts(s.Body.List)
	if s.Else != nil {
		w.walkStmt(s.Else)
	}
}

// emitStatusComparison handles if-form status branching. A comparison
// covers the literal it names; a relational comparison covers the accepted
// codes that satisfy it; an else branch covers the complement.
func (w *walker) emitStatusComparison(s *ast.IfStmt) bool {
	bin, ok := s.Cond.(*ast.BinaryExpr)
	if !ok {
		return false
	}

	statusExpr, litExpr := bin.X, bin.Y
	op := bin.Op
	if !isStatusExpr(statusExpr) {
		statusExpr, litExpr = bin.Y, bin.X
		op = flipComparison(op)
		if !isStatusExpr(statusExpr) {
			return false
		}
	}
	code, ok := statusLiteral(litExpr)
	if !ok {
		return false
	}

	var covered []int
	switch op {
	case token.EQL:
		covered = []int{code}
	case token.NEQ:
		covered = w.statusesWhere(func(s int) bool { return s != code })
	case token.GEQ:
		covered = w.statusesWhere(func(s int) bool { return s >= code })
	case token.GTR:
		covered = w.statusesWhere(func(s int) bool { return s > code })
	case token.LEQ:
		covered = w.statusesWhere(func(s int) bool { return s <= code })
	case token.LSS:
		covered = w.statusesWhere(func(s int) bool { return s < code })
	default:
		return false
	}

	w.emit(fact.Fact{
		Kind:       fact.StatusBranch,
		Statuses:   covered,
		Confidence: w.cap(fact.Certain),
		Loc:        w.loc(s.Pos()),
	})
	if s.Else != nil {
		complement := w.complementOf(covered)
		w.emit(fact.Fact{
			Kind:       fact.StatusBranch,
			Statuses:   complement,
			Confidence: w.cap(fact.Certain),
			Loc:        w.loc(s.Else.Pos()),
		})
	}
	return true
}

func flipComparison(op token.Token) token.Token {
	switch op {
	case token.GEQ:
		return token.LEQ
	case token.GTR:
		return token.LSS
	case token.LEQ:
		return token.GEQ
	case token.LSS:
		return token.GTR
	}
	return op
}

func (w *walker) statusesWhere(keep func(int) bool) []int {
	var out []int
	for _, s := range w.statuses {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func (w *walker) complementOf(covered []int) []int {
	in := map[int]bool{}
	for _, s := range covered {
		in[s] = true
	}
	return w.statusesWhere(func(s int) bool { return !in[s] })
}

// emitRangeCheck recognizes numeric bound checks on a known field, in both
// the reject form (x < min || x > max) and the accept form
// (x >= min && x <= max). Partial bounds still emit, ranked weaker by the
// engine because subsumption cannot be proven.
func (w *walker) emitRangeCheck(cond ast.Expr) bool {
	bounds := map[string]*fact.Fact{}
	w.gatherBounds(cond, bounds)
	if len(bounds) == 0 {
		return false
	}
	for _, f := range bounds {
		w.emit(*f)
	}
	return true
}

func (w *walker) gatherBounds(expr ast.Expr, bounds map[string]*fact.Fact) {
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok {
		return
	}
	if bin.Op == token.LOR || bin.Op == token.LAND {
		w.gatherBounds(bin.X, bounds)
		w.gatherBounds(bin.Y, bounds)
		return
	}

	valueExpr, litExpr := bin.X, bin.Y
	op := bin.Op
	value, ok := parseFloatLit(litExpr)
	if !ok {
		valueExpr, litExpr = bin.Y, bin.X
		op = flipComparison(op)
		value, ok = parseFloatLit(litExpr)
		if !ok {
			return
		}
	}
	path, confidence := w.resolveValue(valueExpr)
	if path == "" {
		return
	}

	f := bounds[path]
	if f == nil {
		f = &fact.Fact{
			Kind:       fact.ValidationCall,
			FieldPath:  path,
			CheckKind:  fact.CheckRange,
			Confidence: w.cap(confidence),
			Loc:        w.loc(bin.Pos()),
		}
		bounds[path] = f
	}
	if confidence == fact.Inferred {
		f.Confidence = fact.Inferred
	}

	// Reject-form "x < min" and accept-form "x >= min" both put min at the
	// literal; the mirror ops fix the max bound.
	v := value
	switch op {
	case token.LSS, token.GEQ:
		f.Min = &v
	case token.GTR, token.LEQ:
		f.Max = &v
	}
}

func isErrCheck(cond ast.Expr) bool {
	bin, ok := cond.(*ast.BinaryExpr)
	if !ok || bin.Op != token.NEQ {
		return false
	}
	x, okX := bin.X.(*ast.Ident)
	y, okY := bin.Y.(*ast.Ident)
	if okX && okY {
		return (x.Name == "err" && y.Name == "nil") || (x.Name == "nil" && y.Name == "err")
	}
	return false
}

// walkSwitch emits StatusBranch facts for switches over a status value and
// EnumBranch facts for switches over an enum-typed contract field.
func (w *walker) walkSwitch(s *ast.SwitchStmt) {
	if s.Init != nil {
		w.walkStmt(s.Init)
	}
	if s.Tag == nil {
		w.walkCaseBodies(s)
		return
	}

	if isStatusExpr(s.Tag) {
		w.emitStatusSwitch(s)
		return
	}
	if path, confidence := w.resolveValue(s.Tag); path != "" {
		w.emitEnumSwitch(s, path, confidence)
		return
	}
	w.walkExpr(s.Tag)
	w.walkCaseBodies(s)
}

func (w *walker) emitStatusSwitch(s *ast.SwitchStmt) {
	for _, clause := range s.Body.List {
		cc, ok := clause.(*ast.CaseClause)
		if !ok {
			continue
		}
		if cc.List == nil {
			w.emit(fact.Fact{
				Kind:           fact.StatusBranch,
				Default:        true,
				BlanketSuccess: returnsSuccessValue(cc.Body),
				Confidence:     w.cap(fact.Certain),
				Loc:            w.loc(cc.Pos()),
			})
			w.walkStmts(cc.Body)
			continue
		}
		var covered []int
		for _, e := range cc.List {
			if code, ok := statusLiteral(e); ok {
				covered = append(covered, code)
			}
		}
		if len(covered) > 0 {
			w.emit(fact.Fact{
				Kind:       fact.StatusBranch,
				Statuses:   covered,
				Confidence: w.cap(fact.Certain),
				Loc:        w.loc(cc.Pos()),
			})
		}
		w.walkStmts(cc.Body)
	}
}

func (w *walker) emitEnumSwitch(s *ast.SwitchStmt, path, confidence string) {
	for _, clause := range s.Body.List {
		cc, ok := clause.(*ast.CaseClause)
		if !ok {
			continue
		}
		if cc.List == nil {
			w.emit(fact.Fact{
				Kind:        fact.EnumBranch,
				FieldPath:   path,
				Default:     true,
				SafeDefault: escapingBody(cc.Body),
				Confidence:  w.cap(confidence),
				Loc:         w.loc(cc.Pos()),
			})
			w.walkStmts(cc.Body)
			continue
		}
		for _, e := range cc.List {
			value, literal, ok := enumArmValue(e)
			if !ok {
				continue
			}
			armConfidence := confidence
			if !literal {
				// A constant arm is an indirection: its value was not
				// traced, only its name.
				armConfidence = fact.Inferred
			}
			w.emit(fact.Fact{
				Kind:       fact.EnumBranch,
				FieldPath:  path,
				EnumValue:  value,
				Confidence: w.cap(armConfidence),
				Loc:        w.loc(cc.Pos()),
			})
		}
		w.walkStmts(cc.Body)
	}
}

// enumArmValue reads one case expression. String literals carry their exact
// value; constants carry their identifier name, which callers must treat as
// a best-effort claim.
func enumArmValue(expr ast.Expr) (value string, literal, ok bool) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind == token.STRING {
			return trimQuotes(e.Value), true, true
		}
	case *ast.Ident:
		return e.Name, false, true
	case *ast.SelectorExpr:
		return e.Sel.Name, false, true
	}
	return "", false, false
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}

func (w *walker) walkCaseBodies(s *ast.SwitchStmt) {
	for _, clause := range s.Body.List {
		if cc, ok := clause.(*ast.CaseClause); ok {
			w.walkStmts(cc.Body)
		}
	}
}

// returnsSuccessValue reports whether a branch body returns a value without
// an error: the blanket-success shape that treats any status as a good
// response.
func returnsSuccessValue(body []ast.Stmt) bool {
	if escapingBody(body) {
		return false
	}
	for _, stmt := range body {
		ret, ok := stmt.(*ast.ReturnStmt)
		if !ok || len(ret.Results) == 0 {
			continue
		}
		for _, res := range ret.Results {
			if returnsError(res) {
				return false
			}
		}
		return true
	}
	return false
}

// walkFor emits a PaginationLoop when the loop condition reads a contract
// field, directly or through a one-level alias.
func (w *walker) walkFor(s *ast.ForStmt) {
	if s.Init != nil {
		w.walkStmt(s.Init)
	}
	if s.Cond != nil {
		if path, confidence := w.loopField(s.Cond); path != "" {
			w.emit(fact.Fact{
				Kind:       fact.PaginationLoop,
				FieldPath:  path,
				LoopField:  path,
				Confidence: w.cap(confidence),
				Loc:        w.loc(s.Pos()),
			})
		} else {
			w.walkExpr(s.Cond)
		}
	}
	if s.Post != nil {
		w.walkStmt(s.Post)
	}
	w.walkStmts(s.Body.List)
}

// loopField finds the first resolvable field reference in a loop condition.
func (w *walker) loopField(cond ast.Expr) (string, string) {
	switch e := cond.(type) {
	case *ast.BinaryExpr:
		if path, confidence := w.loopField(e.X); path != "" {
			return path, confidence
		}
		return w.loopField(e.Y)
	case *ast.UnaryExpr:
		return w.loopField(e.X)
	case *ast.ParenExpr:
		return w.loopField(e.X)
	case *ast.Ident:
		if aliased, ok := w.aliases[e.Name]; ok {
			return aliased, fact.Inferred
		}
	case *ast.SelectorExpr:
		return w.resolveValue(e)
	case *ast.CallExpr:
		if len(e.Args) == 1 {
			return w.loopField(e.Args[0])
		}
	}
	return "", ""
}
