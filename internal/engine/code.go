package engine

import (
	"regexp"
	"strings"
)

// codeExtensions are the source file types the pattern scanner looks at.
var codeExtensions = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".mjs": true, ".cjs": true, ".vue": true, ".svelte": true,
}

// codeScanner applies registry rules line by line, plus the multi-line
// heuristics over the whole file text.
type codeScanner struct {
	registry   *Registry
	heuristics []compiledHeuristic
}

type compiledHeuristic struct {
	multiLineHeuristic
	res []*regexp.Regexp
}

func newCodeScanner(registry *Registry) *codeScanner {
	cs := &codeScanner{registry: registry}
	for _, h := range multiLineHeuristics {
		ch := compiledHeuristic{multiLineHeuristic: h}
		for _, p := range h.all {
			ch.res = append(ch.res, regexp.MustCompile(p))
		}
		cs.heuristics = append(cs.heuristics, ch)
	}
	return cs
}

func (cs *codeScanner) wants(rel string) bool {
	return codeExtensions[extOf(rel)]
}

func (cs *codeScanner) scanFile(rel string, content []byte) []Finding {
	var findings []Finding
	text := string(content)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for _, rule := range cs.registry.Rules() {
			loc := rule.re.FindString(line)
			if loc == "" {
				continue
			}
			findings = append(findings, Finding{
				Type:        rule.ID,
				Severity:    rule.Severity,
				Category:    rule.Category,
				Description: rule.Description,
				File:        rel,
				Line:        i + 1,
				MatchedText: trimMatch(loc),
				CWE:         rule.CWE,
				OWASP:       rule.OWASP,
				Remediation: rule.Remediation,
			})
		}
	}

	for _, h := range cs.heuristics {
		matched := true
		for _, re := range h.res {
			if !re.MatchString(text) {
				matched = false
				break
			}
		}
		if matched {
			f := h.finding
			f.File = rel
			findings = append(findings, f)
		}
	}

	return findings
}

func trimMatch(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}

func extOf(rel string) string {
	if i := strings.LastIndex(rel, "."); i >= 0 {
		return strings.ToLower(rel[i:])
	}
	return ""
}
