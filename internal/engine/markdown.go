package engine

import (
	"fmt"
	"strings"
)

var severityIcons = map[Severity]string{
	SeverityCritical: "🔴",
	SeverityHigh:     "🟠",
	SeverityMedium:   "🟡",
	SeverityLow:      "🟢",
}

// ToMarkdown renders a report as a human-readable document. Pure function,
// no side effects.
func ToMarkdown(r *ScanReport) string {
	var b strings.Builder

	b.WriteString("# Security Scan Report\n\n")
	fmt.Fprintf(&b, "Scanned `%s` at %s — %d files in %dms.\n\n",
		r.Root, r.Timestamp.Format("2006-01-02 15:04:05 UTC"), r.ScannedFileCount, r.DurationMS)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Score:** %d/100\n", r.Metrics.Score)
	fmt.Fprintf(&b, "- **Risk level:** %s\n", r.Metrics.RiskLevel)
	fmt.Fprintf(&b, "- **Findings:** %d total", r.Metrics.Counts.Total)
	if r.Metrics.Counts.Total > 0 {
		fmt.Fprintf(&b, " (critical %d, high %d, medium %d, low %d)",
			r.Metrics.Counts.Critical, r.Metrics.Counts.High,
			r.Metrics.Counts.Medium, r.Metrics.Counts.Low)
	}
	b.WriteString("\n\n")
	b.WriteString("_Detection is pattern-based, not AST-based; findings can include false positives and the absence of findings is not proof of safety._\n\n")

	if len(r.Findings) > 0 {
		b.WriteString("## Findings\n\n")
		for _, f := range r.Findings {
			icon := severityIcons[f.Severity]
			loc := f.File
			if f.Line > 0 {
				loc = fmt.Sprintf("%s:%d", f.File, f.Line)
			}
			fmt.Fprintf(&b, "### %s %s — %s\n\n", icon, strings.ToUpper(string(f.Severity)), f.Description)
			if loc != "" {
				fmt.Fprintf(&b, "- **Location:** `%s`\n", loc)
			}
			fmt.Fprintf(&b, "- **Category:** %s\n", f.Category)
			if f.MatchedText != "" {
				fmt.Fprintf(&b, "- **Matched:** `%s`\n", f.MatchedText)
			}
			refs := joinRefs(f.CWE, f.OWASP, f.CVE)
			if refs != "" {
				fmt.Fprintf(&b, "- **References:** %s\n", refs)
			}
			if f.Remediation != "" {
				fmt.Fprintf(&b, "- **Remediation:** %s\n", f.Remediation)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Compliance) > 0 {
		b.WriteString("## Compliance\n\n")
		b.WriteString("| Standard | Compliant | Score | Requirements met |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, cr := range r.Compliance {
			met := 0
			for _, req := range cr.Requirements {
				if req.Met {
					met++
				}
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %d/%d |\n",
				cr.Standard, yesNo(cr.Compliant), cr.Score, met, len(cr.Requirements))
		}
		b.WriteString("\n")
		for _, cr := range r.Compliance {
			for _, req := range cr.Requirements {
				if !req.Met {
					fmt.Fprintf(&b, "- **%s / %s** (unmet): %s\n", cr.Standard, req.ID, req.Description)
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## Hardening\n\n")
	fmt.Fprintf(&b, "Posture score: %d/100\n\n", r.Hardening.Score)
	for _, c := range hardeningChecks {
		fmt.Fprintf(&b, "- [%s] %s\n", checkbox(r.Hardening.Checks[c.name]), c.description)
	}
	b.WriteString("\n")

	if len(r.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "✅ yes"
	}
	return "❌ no"
}

func checkbox(b bool) string {
	if b {
		return "x"
	}
	return " "
}

func joinRefs(refs ...string) string {
	var out []string
	for _, r := range refs {
		if r != "" {
			out = append(out, r)
		}
	}
	return strings.Join(out, ", ")
}
