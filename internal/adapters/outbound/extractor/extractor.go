// Package extractor implements the Go fact extractor: it walks one file's
// syntax tree and emits source facts in the unified schema. Unparseable
// files produce zero facts and a skip marker, never an error.
package extractor

import (
	"go/ast"
	goparser "go/parser"
	"go/token"
	"strings"

	"github.com/pactlint/pactlint/internal/domain/fact"
)

// Binding directives recognized in comments:
//
//	pactlint:contract <contract-id> <client|server>   (file scope)
//	pactlint:endpoint <METHOD> <path>                 (function doc)
//
// Files without a contract binding, and functions without an endpoint
// binding (explicit or inferred from a path literal), contribute no facts.
const (
	contractDirective = "pactlint:contract"
	endpointDirective = "pactlint:endpoint"
)

// GoExtractor implements domain.FactExtractor using go/ast.
type GoExtractor struct{}

func New() *GoExtractor {
	return &GoExtractor{}
}

// Extract parses source and emits facts for every endpoint-bound function.
// Partial parses extract from the parsed region only; a nil AST yields a
// skipped result. The returned error is always nil: extraction failures are
// data, not control flow.
func (x *GoExtractor) Extract(path string, source []byte, opts fact.ExtractOptions) (*fact.FileFacts, error) {
	ff := &fact.FileFacts{File: path, Paths: fact.NewInterner()}

	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, path, source, goparser.ParseComments)
	if file == nil {
		ff.Skipped = true
		if err != nil {
			ff.SkipReason = err.Error()
		}
		return ff, nil
	}
	if err != nil {
		ff.Partial = true
	}

	contractID, side := fileBinding(file)
	if contractID == "" {
		return ff, nil
	}
	ff.ContractID = contractID
	ff.Side = side

	imports := importNames(file)
	patternVars := packagePatterns(file)

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		epID, bindConfidence := endpointFor(fn, opts)
		if epID == "" {
			continue
		}
		w := &walker{
			ff:          ff,
			fset:        fset,
			endpointID:  epID,
			confidence:  bindConfidence,
			known:       opts.KnownFields[epID],
			statuses:    opts.KnownStatuses[epID],
			opts:        opts,
			aliases:     map[string]string{},
			imports:     imports,
			patternVars: patternVars,
		}
		w.walkFunc(fn)
	}
	return ff, nil
}

// importNames collects the local names the file imports under, so selector
// chains rooted at a package qualifier are not mistaken for field reads.
func importNames(file *ast.File) map[string]bool {
	names := map[string]bool{}
	for _, imp := range file.Imports {
		if imp.Name != nil {
			if imp.Name.Name != "_" && imp.Name.Name != "." {
				names[imp.Name.Name] = true
			}
			continue
		}
		p := strings.Trim(imp.Path.Value, `"`)
		if i := strings.LastIndex(p, "/"); i >= 0 {
			p = p[i+1:]
		}
		names[p] = true
	}
	return names
}

// packagePatterns collects package-level regexp.MustCompile vars so a later
// receiver.MatchString call can recover the literal pattern.
func packagePatterns(file *ast.File) map[string]string {
	patterns := map[string]string{}
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.VAR {
			continue
		}
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok || len(vs.Names) != len(vs.Values) {
				continue
			}
			for i, name := range vs.Names {
				if p, ok := compiledPattern(vs.Values[i]); ok {
					patterns[name.Name] = p
				}
			}
		}
	}
	return patterns
}

func compiledPattern(expr ast.Expr) (string, bool) {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return "", false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", false
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != "regexp" {
		return "", false
	}
	if sel.Sel.Name != "MustCompile" && sel.Sel.Name != "MustCompilePOSIX" {
		return "", false
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	return strings.Trim(lit.Value, "`\""), true
}

// fileBinding scans comments for the contract directive.
func fileBinding(file *ast.File) (contractID string, side fact.Side) {
	for _, group := range file.Comments {
		for _, c := range group.List {
			text := strings.TrimSpace(strings.TrimLeft(c.Text, "/* "))
			if !strings.HasPrefix(text, contractDirective) {
				continue
			}
			args := strings.Fields(strings.TrimPrefix(text, contractDirective))
			if len(args) == 0 {
				continue
			}
			contractID = args[0]
			side = fact.SideClient
			if len(args) > 1 && args[1] == string(fact.SideServer) {
				side = fact.SideServer
			}
			return contractID, side
		}
	}
	return "", ""
}

// endpointFor binds a function to an endpoint: directive first, then a
// unique path-literal match. Literal inference is an indirection, so facts
// from it carry inferred confidence at best.
func endpointFor(fn *ast.FuncDecl, opts fact.ExtractOptions) (epID, confidence string) {
	if fn.Doc != nil {
		for _, c := range fn.Doc.List {
			text := strings.TrimSpace(strings.TrimLeft(c.Text, "/* "))
			if !strings.HasPrefix(text, endpointDirective) {
				continue
			}
			args := strings.Fields(strings.TrimPrefix(text, endpointDirective))
			if len(args) >= 2 {
				return strings.ToUpper(args[0]) + " " + args[1], fact.Certain
			}
		}
	}
	if id := inferEndpoint(fn, opts.KnownEndpoints); id != "" {
		return id, fact.Inferred
	}
	return "", ""
}

// inferEndpoint looks for a string literal naming exactly one known
// endpoint path inside the function body.
func inferEndpoint(fn *ast.FuncDecl, known map[string]string) string {
	var matches []string
	seen := map[string]bool{}
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		lit, ok := n.(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return true
		}
		value := strings.Trim(lit.Value, "`\"")
		for epID := range known {
			parts := strings.SplitN(epID, " ", 2)
			if len(parts) != 2 {
				continue
			}
			if (value == parts[1] || strings.HasSuffix(value, parts[1])) && !seen[epID] {
				seen[epID] = true
				matches = append(matches, epID)
			}
		}
		return true
	})
	if len(matches) == 1 {
		return matches[0]
	}
	return ""
}
