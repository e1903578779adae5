package engine

import (
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// SecurityRule is a line-oriented detection pattern plus metadata. Rules are
// immutable once the registry is built.
type SecurityRule struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Category    Category `json:"category" yaml:"category"`
	Pattern     string   `json:"pattern" yaml:"pattern"`
	CWE         string   `json:"cwe,omitempty" yaml:"cwe,omitempty"`
	OWASP       string   `json:"owasp,omitempty" yaml:"owasp,omitempty"`
	Remediation string   `json:"remediation" yaml:"remediation"`

	re *regexp.Regexp
}

// Registry is the read-only rule collection shared by all scan workers.
type Registry struct {
	rules      []SecurityRule
	byCategory map[Category][]SecurityRule
}

// NewRegistry builds a registry from the builtin rules plus custom ones.
// Every rule must carry a non-empty id, a known severity and category, and a
// pattern that compiles; duplicate ids are rejected.
func NewRegistry(custom []SecurityRule) (*Registry, error) {
	all := make([]SecurityRule, 0, len(builtinRules)+len(custom))
	all = append(all, builtinRules...)
	all = append(all, custom...)

	seen := make(map[string]bool, len(all))
	byCat := make(map[Category][]SecurityRule)

	for i := range all {
		r := &all[i]
		if r.ID == "" {
			return nil, configErrorf("rules", "rule %d has empty id", i)
		}
		if seen[r.ID] {
			return nil, configErrorf("rules", "duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true

		sev, err := ParseSeverity(string(r.Severity))
		if err != nil {
			return nil, configErrorf("rules", "rule %q: %v", r.ID, err)
		}
		r.Severity = sev

		cat, err := ParseCategory(string(r.Category))
		if err != nil {
			return nil, configErrorf("rules", "rule %q: %v", r.ID, err)
		}
		r.Category = cat

		if r.Pattern == "" {
			return nil, configErrorf("rules", "rule %q has empty pattern", r.ID)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, configErrorf("rules", "rule %q pattern does not compile: %v", r.ID, err)
		}
		r.re = re

		byCat[r.Category] = append(byCat[r.Category], *r)
	}

	return &Registry{rules: all, byCategory: byCat}, nil
}

// Rules returns all rules. The returned slice must not be mutated.
func (r *Registry) Rules() []SecurityRule { return r.rules }

// RulesFor returns rules for one category, or all rules when cat is empty.
func (r *Registry) RulesFor(cat Category) []SecurityRule {
	if cat == "" {
		return r.rules
	}
	return r.byCategory[cat]
}

// Len reports the number of registered rules.
func (r *Registry) Len() int { return len(r.rules) }

type rulesFile struct {
	Rules []SecurityRule `yaml:"rules"`
}

// LoadRulesFile reads custom rules from a YAML file. Validation happens when
// the registry is built.
func LoadRulesFile(path string) ([]SecurityRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, configErrorf("rules_file", "failed to parse %s: %v", path, err)
	}
	return f.Rules, nil
}
