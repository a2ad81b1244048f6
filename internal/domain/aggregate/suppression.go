package aggregate

import "strings"

// Suppression directives recognized in source comments:
//
//	pactlint-disable-file [rule...]
//	pactlint-disable-next-line [rule...]
//	pactlint-disable [rule...]
//	pactlint-enable [rule...]
//
// An empty rule list means all rules. Text after "--" is a free-form reason.
const directivePrefix = "pactlint-"

// Policy answers whether a violation at (ruleID, line) is suppressed in one
// file. Compiled once per file from its raw source.
type Policy struct {
	wholeFile  bool
	fileRules  map[string]bool
	allAtLine  map[int]bool
	rulesAtLin map[int]map[string]bool
}

// CompilePolicy scans source line by line and resolves block directives into
// per-line suppression state.
func CompilePolicy(source []byte) *Policy {
	p := &Policy{
		fileRules:  map[string]bool{},
		allAtLine:  map[int]bool{},
		rulesAtLin: map[int]map[string]bool{},
	}

	blockAll := false
	blockRules := map[string]bool{}

	for i, line := range strings.Split(string(source), "\n") {
		lineNo := i + 1
		if blockAll {
			p.allAtLine[lineNo] = true
		}
		for ruleID := range blockRules {
			p.markLine(lineNo, ruleID)
		}

		verb, rules, all := parseDirective(line)
		switch verb {
		case "disable-file":
			if all {
				p.wholeFile = true
				continue
			}
			for _, ruleID := range rules {
				p.fileRules[ruleID] = true
			}
		case "disable-next-line":
			if all {
				p.allAtLine[lineNo+1] = true
				continue
			}
			for _, ruleID := range rules {
				p.markLine(lineNo+1, ruleID)
			}
		case "disable":
			if all {
				blockAll = true
				continue
			}
			for _, ruleID := range rules {
				blockRules[ruleID] = true
			}
		case "enable":
			if all {
				blockAll = false
				blockRules = map[string]bool{}
				continue
			}
			for _, ruleID := range rules {
				delete(blockRules, ruleID)
			}
		}
	}
	return p
}

// Suppressed reports whether ruleID at line is filtered by this policy.
func (p *Policy) Suppressed(ruleID string, line int) bool {
	if p == nil {
		return false
	}
	if p.wholeFile || p.fileRules[ruleID] {
		return true
	}
	if p.allAtLine[line] {
		return true
	}
	return p.rulesAtLin[line][ruleID]
}

func (p *Policy) markLine(line int, ruleID string) {
	byRule := p.rulesAtLin[line]
	if byRule == nil {
		byRule = map[string]bool{}
		p.rulesAtLin[line] = byRule
	}
	byRule[ruleID] = true
}

var directiveVerbs = []string{
	"disable-next-line",
	"disable-file",
	"disable",
	"enable",
}

func parseDirective(line string) (verb string, rules []string, all bool) {
	idx := strings.Index(line, directivePrefix)
	if idx < 0 {
		return "", nil, false
	}
	rest := strings.TrimPrefix(line[idx:], directivePrefix)

	for _, candidate := range directiveVerbs {
		if !strings.HasPrefix(rest, candidate) {
			continue
		}
		args := strings.TrimSpace(strings.TrimPrefix(rest, candidate))
		args = strings.TrimSpace(strings.TrimPrefix(args, ":"))
		if reason := strings.Index(args, "--"); reason >= 0 {
			args = strings.TrimSpace(args[:reason])
		}
		if args == "" {
			return candidate, nil, true
		}
		for _, part := range strings.Fields(strings.ReplaceAll(args, ",", " ")) {
			rules = append(rules, part)
		}
		if len(rules) == 0 {
			return candidate, nil, true
		}
		return candidate, rules, false
	}
	return "", nil, false
}
