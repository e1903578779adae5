package engine

import (
	"fmt"
	"sort"
)

// categoryAdvice is the one deduplicated sentence emitted per distinct
// category present among the findings.
var categoryAdvice = map[Category]string{
	CategoryInjection: "Sanitize and validate all external input; avoid dynamic code execution and string-built queries or commands",
	CategoryXSS:       "Escape output by default and sanitize any raw HTML before it reaches the DOM",
	CategoryCrypto:    "Use modern algorithms and keep TLS verification enabled everywhere",
	CategoryAuth:      "Remove hardcoded credentials; load secrets from environment variables or a secret store",
	CategoryMisc:      "Review project configuration and dependencies; upgrade vulnerable packages and tighten manifest hygiene",
}

// dedupeFindings removes identical findings and sorts the rest for stable
// output: severity descending, then file, then line.
func dedupeFindings(findings []Finding) []Finding {
	seen := make(map[string]bool, len(findings))
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		k := f.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity.Rank() != out[j].Severity.Rank() {
			return out[i].Severity.Rank() > out[j].Severity.Rank()
		}
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// computeMetrics buckets findings and derives score and risk level.
func computeMetrics(findings []Finding, w Weights, mediumThreshold int) Metrics {
	m := Metrics{Categories: make(map[Category]int)}
	for _, f := range findings {
		m.Counts.add(f.Severity)
		m.Categories[f.Category]++
	}
	m.Score = scoreFromCounts(m.Counts, w)
	m.RiskLevel = riskFromCounts(m.Counts, mediumThreshold)
	return m
}

// scoreFromCounts: clamp(100 − Σ count×weight, 0, 100).
func scoreFromCounts(c SeverityCounts, w Weights) int {
	penalty := c.Critical*w.Critical + c.High*w.High + c.Medium*w.Medium + c.Low*w.Low
	score := 100 - penalty
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// riskFromCounts derives the discrete risk level deterministically and
// solely from counts.
func riskFromCounts(c SeverityCounts, mediumThreshold int) RiskLevel {
	switch {
	case c.Critical > 0:
		return RiskCritical
	case c.High > 0:
		return RiskHigh
	case c.Medium > mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// buildRecommendations emits one sentence per distinct finding category,
// one per non-compliant standard, and one per failed hardening check,
// deduplicated while preserving first-seen order.
func buildRecommendations(m Metrics, compliance []ComplianceResult, hardening HardeningAssessment) []string {
	var recs []string
	seen := make(map[string]bool)
	push := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			recs = append(recs, s)
		}
	}

	cats := make([]Category, 0, len(m.Categories))
	for c := range m.Categories {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	for _, c := range cats {
		push(categoryAdvice[c])
	}

	for _, cr := range compliance {
		if !cr.Compliant {
			push(fmt.Sprintf("Address the failed requirements of the %s standard (score %d)", cr.Standard, cr.Score))
		}
	}

	for _, r := range hardening.Recommendations {
		push(r)
	}

	return recs
}

// severityByCategory builds the per-category counts the compliance
// predicates consume.
func severityByCategory(findings []Finding) map[Category]SeverityCounts {
	out := make(map[Category]SeverityCounts)
	for _, f := range findings {
		c := out[f.Category]
		c.add(f.Severity)
		out[f.Category] = c
	}
	return out
}
