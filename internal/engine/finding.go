package engine

import (
	"fmt"
	"strings"
)

// Finding is one detected security issue instance. Findings are value
// objects: two findings with identical fields are duplicates.
type Finding struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	File        string   `json:"file,omitempty"`
	Line        int      `json:"line,omitempty"`
	MatchedText string   `json:"matched_text,omitempty"`
	CWE         string   `json:"cwe,omitempty"`
	OWASP       string   `json:"owasp,omitempty"`
	CVE         string   `json:"cve,omitempty"`
	Remediation string   `json:"remediation,omitempty"`
}

// key identifies duplicate findings for the aggregator.
func (f Finding) key() string {
	return strings.Join([]string{
		f.Type, string(f.Severity), string(f.Category), f.Description,
		f.File, fmt.Sprintf("%d", f.Line), f.MatchedText, f.CWE, f.OWASP, f.CVE,
	}, "\x1f")
}

// SeverityCounts value object.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

func (c *SeverityCounts) add(s Severity) {
	switch s {
	case SeverityCritical:
		c.Critical++
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	case SeverityLow:
		c.Low++
	}
	c.Total++
}
