package extractor

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/fatih/camelcase"
)

// normalizeName converts a Go identifier to the manifest's snake_case field
// naming: NextPageURI -> next_page_uri.
func normalizeName(name string) string {
	words := camelcase.Split(name)
	parts := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || w == "_" {
			continue
		}
		parts = append(parts, w)
	}
	return strings.Join(parts, "_")
}

// selectorChain flattens a selector expression into its identifier chain:
// resp.Data.NextPageURI -> ["resp", "Data", "NextPageURI"]. Returns false
// when the chain is rooted in something other than a plain identifier.
func selectorChain(expr ast.Expr) ([]string, bool) {
	switch e := expr.(type) {
	case *ast.Ident:
		return []string{e.Name}, true
	case *ast.SelectorExpr:
		base, ok := selectorChain(e.X)
		if !ok {
			return nil, false
		}
		return append(base, e.Sel.Name), true
	case *ast.ParenExpr:
		return selectorChain(e.X)
	case *ast.StarExpr:
		return selectorChain(e.X)
	case *ast.IndexExpr:
		return selectorChain(e.X)
	}
	return nil, false
}

// pathFromChain normalizes a selector chain (root dropped) into a dotted
// field path.
func pathFromChain(chain []string) string {
	if len(chain) <= 1 {
		return ""
	}
	parts := make([]string, 0, len(chain)-1)
	for _, c := range chain[1:] {
		parts = append(parts, normalizeName(c))
	}
	return strings.Join(parts, ".")
}

// resolvePath matches a selector chain against the manifest-known paths of
// an endpoint, preferring the longest suffix match. An unmatched chain still
// yields a path, flagged unresolved, so the engine can downgrade rather
// than invent certainty.
func resolvePath(chain []string, known map[string]bool) (path string, matched bool) {
	if len(chain) < 2 {
		return "", false
	}
	norm := make([]string, 0, len(chain)-1)
	for _, c := range chain[1:] {
		norm = append(norm, normalizeName(c))
	}
	for start := 0; start < len(norm); start++ {
		candidate := strings.Join(norm[start:], ".")
		if known[candidate] {
			return candidate, true
		}
	}
	return strings.Join(norm, "."), false
}

// literalType classifies a composite literal value expression into the
// manifest's primitive kinds. Unknown expressions return "".
func literalType(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.BasicLit:
		switch e.Kind {
		case token.INT:
			return "integer"
		case token.FLOAT:
			return "number"
		case token.STRING:
			return "string"
		}
	case *ast.Ident:
		if e.Name == "true" || e.Name == "false" {
			return "boolean"
		}
	case *ast.CompositeLit:
		if _, ok := e.Type.(*ast.ArrayType); ok {
			return "array"
		}
		return "object"
	case *ast.UnaryExpr:
		return literalType(e.X)
	}
	return ""
}

// httpStatusConsts maps the net/http status identifiers the walker
// recognizes in branch conditions.
var httpStatusConsts = map[string]int{
	"StatusOK":                  200,
	"StatusCreated":             201,
	"StatusAccepted":            202,
	"StatusNoContent":           204,
	"StatusMovedPermanently":    301,
	"StatusFound":               302,
	"StatusNotModified":         304,
	"StatusBadRequest":          400,
	"StatusUnauthorized":        401,
	"StatusForbidden":           403,
	"StatusNotFound":            404,
	"StatusConflict":            409,
	"StatusGone":                410,
	"StatusUnprocessableEntity": 422,
	"StatusTooManyRequests":     429,
	"StatusInternalServerError": 500,
	"StatusBadGateway":          502,
	"StatusServiceUnavailable":  503,
}

// statusLiteral extracts a status code from an expression: either an int
// literal or a recognized http.Status* identifier.
func statusLiteral(expr ast.Expr) (int, bool) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind == token.INT {
			if v, err := strconv.Atoi(e.Value); err == nil {
				return v, true
			}
		}
	case *ast.SelectorExpr:
		if code, ok := httpStatusConsts[e.Sel.Name]; ok {
			return code, true
		}
	case *ast.Ident:
		if code, ok := httpStatusConsts[e.Name]; ok {
			return code, true
		}
	}
	return 0, false
}

// isStatusExpr reports whether an expression reads an HTTP status value.
func isStatusExpr(expr ast.Expr) bool {
	chain, ok := selectorChain(expr)
	if !ok || len(chain) == 0 {
		return false
	}
	leaf := normalizeName(chain[len(chain)-1])
	return leaf == "status_code" || leaf == "status" || leaf == "code"
}

// formatCalls maps well-known parse/validate calls to the format tag they
// enforce.
var formatCalls = map[string]string{
	"mail.ParseAddress":   "email",
	"uuid.Parse":          "uuid",
	"url.Parse":           "uri",
	"url.ParseRequestURI": "uri",
	"net.ParseIP":         "ip",
	"time.Parse":          "date-time",
}

// escapingBody reports whether a statement block escapes rather than
// silently continuing: it panics, exits, or returns an error value.
func escapingBody(body []ast.Stmt) bool {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.ExprStmt:
			if call, ok := s.X.(*ast.CallExpr); ok {
				if name := calleeName(call); name == "panic" || name == "os.Exit" || strings.HasSuffix(name, ".Fatal") || strings.HasSuffix(name, ".Fatalf") {
					return true
				}
			}
		case *ast.ReturnStmt:
			for _, res := range s.Results {
				if returnsError(res) {
					return true
				}
			}
		case *ast.BranchStmt:
			// continue/break alone do not escape
		case *ast.IfStmt:
			if escapingBody(s.Body.List) {
				return true
			}
		}
	}
	return false
}

func returnsError(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name == "err" || strings.HasSuffix(e.Name, "Err")
	case *ast.CallExpr:
		name := calleeName(e)
		return name == "errors.New" || name == "fmt.Errorf" || strings.HasSuffix(name, "Error")
	case *ast.UnaryExpr:
		return returnsError(e.X)
	case *ast.CompositeLit:
		if chain, ok := selectorChain(e.Type); ok {
			leaf := chain[len(chain)-1]
			return strings.HasSuffix(leaf, "Error") || strings.HasSuffix(leaf, "Err")
		}
	}
	return false
}

// calleeName renders a call target as "pkg.Func", "recv.Method" or "Func".
func calleeName(call *ast.CallExpr) string {
	chain, ok := selectorChain(call.Fun)
	if !ok {
		return ""
	}
	return strings.Join(chain, ".")
}
