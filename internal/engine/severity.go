package engine

import (
	"fmt"
	"strings"
)

// Severity levels, ordered low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Category buckets for findings and rules.
type Category string

const (
	CategoryInjection Category = "injection"
	CategoryXSS       Category = "xss"
	CategoryCrypto    Category = "crypto"
	CategoryAuth      Category = "auth"
	CategoryMisc      Category = "misc"
)

// RiskLevel is the discrete summary derived from severity counts.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

var riskRank = map[RiskLevel]int{
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// Rank returns the numeric order of a severity (low=1 .. critical=4), 0 if unknown.
func (s Severity) Rank() int { return severityRank[s] }

// Rank returns the numeric order of a risk level (low=1 .. critical=4), 0 if unknown.
func (r RiskLevel) Rank() int { return riskRank[r] }

// ParseSeverity normalizes a severity string. External tools use wider
// vocabularies; "moderate" and "info" are folded onto the four-level scale.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical, nil
	case "high":
		return SeverityHigh, nil
	case "medium", "moderate":
		return SeverityMedium, nil
	case "low", "info":
		return SeverityLow, nil
	default:
		return "", fmt.Errorf("unknown severity: %q", s)
	}
}

// ParseCategory normalizes a category string.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "injection":
		return CategoryInjection, nil
	case "xss":
		return CategoryXSS, nil
	case "crypto":
		return CategoryCrypto, nil
	case "auth":
		return CategoryAuth, nil
	case "misc":
		return CategoryMisc, nil
	default:
		return "", fmt.Errorf("unknown category: %q", s)
	}
}

// ParseRiskLevel normalizes a risk level string (used by CLI gating).
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, nil
	case "medium":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	case "critical":
		return RiskCritical, nil
	default:
		return "", fmt.Errorf("unknown risk level: %q", s)
	}
}
