package engine

import "fmt"

// ComplianceRequirement is one evaluated checklist item.
type ComplianceRequirement struct {
	ID             string   `json:"id"`
	Description    string   `json:"description"`
	Met            bool     `json:"met"`
	Severity       Severity `json:"severity"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// ComplianceResult is the outcome for one standard.
type ComplianceResult struct {
	Standard     string                  `json:"standard"`
	Compliant    bool                    `json:"compliant"`
	Score        int                     `json:"score"`
	Requirements []ComplianceRequirement `json:"requirements"`
}

// evalInput is what requirement predicates see: the accumulated findings
// (already deduplicated and thresholded) and the hardening assessment.
type evalInput struct {
	counts     SeverityCounts
	categories map[Category]SeverityCounts
	hardening  HardeningAssessment
}

// requirementDef is a standard's checklist entry with its met predicate.
type requirementDef struct {
	ID             string
	Description    string
	Severity       Severity
	Recommendation string
	Met            func(in evalInput) bool
}

// Standard is a named, fixed requirement checklist. The passing threshold is
// a property of the standard, not of the engine.
type Standard struct {
	Name         string
	Description  string
	Requirements []requirementDef

	// Passing threshold over the scan's overall counts.
	MaxCritical int
	MaxHigh     int
}

// evaluate computes the result for one standard.
func (s Standard) evaluate(in evalInput) ComplianceResult {
	res := ComplianceResult{Standard: s.Name}
	met := 0
	for _, r := range s.Requirements {
		ok := r.Met(in)
		if ok {
			met++
		}
		res.Requirements = append(res.Requirements, ComplianceRequirement{
			ID:             r.ID,
			Description:    r.Description,
			Met:            ok,
			Severity:       r.Severity,
			Recommendation: r.Recommendation,
		})
	}
	if len(s.Requirements) > 0 {
		res.Score = 100 * met / len(s.Requirements)
	}
	res.Compliant = in.counts.Critical <= s.MaxCritical && in.counts.High <= s.MaxHigh
	return res
}

// resolveStandards maps names onto builtin standards, failing fast on an
// unknown name. The result preserves caller order.
func resolveStandards(names []string) ([]Standard, error) {
	out := make([]Standard, 0, len(names))
	for _, name := range names {
		std, ok := builtinStandards[name]
		if !ok {
			return nil, configErrorf("compliance_standards", "unknown standard %q (known: %v)", name, KnownStandards())
		}
		out = append(out, std)
	}
	return out, nil
}

// KnownStandards lists the builtin standard names.
func KnownStandards() []string {
	return []string{"owasp-top10", "cis-npm", "soc2-lite"}
}

func categoryCount(in evalInput, cat Category, min Severity) int {
	c := in.categories[cat]
	n := 0
	if SeverityLow.Rank() >= min.Rank() {
		n += c.Low
	}
	if SeverityMedium.Rank() >= min.Rank() {
		n += c.Medium
	}
	if SeverityHigh.Rank() >= min.Rank() {
		n += c.High
	}
	if SeverityCritical.Rank() >= min.Rank() {
		n += c.Critical
	}
	return n
}

func init() {
	// sanity: every builtin standard name resolves through KnownStandards
	for _, name := range KnownStandards() {
		if _, ok := builtinStandards[name]; !ok {
			panic(fmt.Sprintf("standard %q not defined", name))
		}
	}
}
