package engine

import (
	"strings"
	"testing"
	"time"
)

func sampleReport() *ScanReport {
	return &ScanReport{
		Root: "/srv/app",
		Findings: []Finding{
			{
				Type:        "js-eval",
				Severity:    SeverityCritical,
				Category:    CategoryInjection,
				Description: "Use of eval() with dynamic input",
				File:        "src/index.js",
				Line:        42,
				MatchedText: "eval(",
				CWE:         "CWE-94",
				OWASP:       "A03:2021",
				Remediation: "Replace eval with a safe parser",
			},
			{
				Type:        "generic-credential",
				Severity:    SeverityHigh,
				Category:    CategoryAuth,
				Description: "Hardcoded credential assignment",
				File:        ".env",
				MatchedText: "password...t2\"",
			},
		},
		Metrics: Metrics{
			Counts:    SeverityCounts{Critical: 1, High: 1, Total: 2},
			Score:     70,
			RiskLevel: RiskCritical,
		},
		Compliance: []ComplianceResult{
			{
				Standard:  "owasp-top10",
				Compliant: false,
				Score:     66,
				Requirements: []ComplianceRequirement{
					{ID: "A03-injection", Description: "No high or critical injection findings", Met: false},
					{ID: "A05-misconfig", Description: "Security headers and HTTPS enforcement present", Met: true},
				},
			},
		},
		Hardening: HardeningAssessment{
			Checks: map[string]bool{"security_headers": true},
			Score:  20,
		},
		Recommendations:  []string{"Eliminate dynamic code execution"},
		ScannedFileCount: 12,
		DurationMS:       35,
		Timestamp:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Warnings:         []string{"npm audit unavailable: exec: \"npm\": executable file not found"},
	}
}

func TestToMarkdownSections(t *testing.T) {
	md := ToMarkdown(sampleReport())

	for _, want := range []string{
		"# Security Scan Report",
		"## Summary",
		"- **Score:** 70/100",
		"- **Risk level:** critical",
		"(critical 1, high 1, medium 0, low 0)",
		"## Findings",
		"CRITICAL — Use of eval() with dynamic input",
		"`src/index.js:42`",
		"CWE-94, A03:2021",
		"## Compliance",
		"| owasp-top10 | ❌ no | 66 | 1/2 |",
		"**owasp-top10 / A03-injection** (unmet)",
		"## Hardening",
		"Posture score: 20/100",
		"[x] Security headers configured",
		"[ ] Input validation present",
		"## Recommendations",
		"## Warnings",
		"npm audit unavailable",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestToMarkdownFindingWithoutLine(t *testing.T) {
	md := ToMarkdown(sampleReport())
	// line 0 renders the bare path, not path:0
	if strings.Contains(md, ".env:0") {
		t.Error("zero line numbers should not be rendered")
	}
	if !strings.Contains(md, "`.env`") {
		t.Error("expected the bare file path for a line-less finding")
	}
}

func TestToMarkdownCleanReport(t *testing.T) {
	r := &ScanReport{
		Root:      "/srv/clean",
		Metrics:   Metrics{Score: 100, RiskLevel: RiskLow},
		Hardening: HardeningAssessment{Checks: map[string]bool{}, Score: 0},
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	md := ToMarkdown(r)

	if strings.Contains(md, "## Findings") {
		t.Error("clean report should have no findings section")
	}
	if strings.Contains(md, "## Compliance") {
		t.Error("no standards requested means no compliance section")
	}
	if strings.Contains(md, "## Warnings") {
		t.Error("clean report should have no warnings section")
	}
	if !strings.Contains(md, "- **Score:** 100/100") {
		t.Error("summary should always be present")
	}
}
