package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// auditRunner invokes `npm audit --json` in the scan root and normalizes
// its vulnerability list into Findings. Any failure (binary missing,
// timeout, malformed output) degrades to empty findings plus a warning; it
// never aborts the scan.
type auditRunner struct {
	timeout time.Duration
}

// npmAuditReport is the subset of the npm v7+ audit JSON document we map.
type npmAuditReport struct {
	Vulnerabilities map[string]struct {
		Name     string `json:"name"`
		Severity string `json:"severity"`
		Range    string `json:"range"`
		Via      []json.RawMessage `json:"via"`
	} `json:"vulnerabilities"`
}

type npmAuditVia struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	CWE   []string `json:"cwe"`
}

func (a *auditRunner) run(parent context.Context, root string) ([]Finding, []string) {
	ctx, cancel := context.WithTimeout(parent, a.timeout)
	defer cancel()

	out, err := a.invoke(ctx, root)
	if err != nil {
		// one retry, on transient launch failure only, never on timeout
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) && ctx.Err() == nil {
			out, err = a.invoke(ctx, root)
		}
	}
	if ctx.Err() != nil {
		if parent.Err() != nil {
			return nil, []string{"npm audit cancelled before completion"}
		}
		return nil, []string{fmt.Sprintf("npm audit timed out after %s", a.timeout)}
	}
	if err != nil {
		// npm audit exits non-zero when vulnerabilities exist; only treat it
		// as a failure when there is no parseable output
		if len(bytes.TrimSpace(out)) == 0 {
			return nil, []string{fmt.Sprintf("npm audit unavailable: %v", err)}
		}
	}

	findings, warn := parseAuditOutput(out)
	if warn != "" {
		return nil, []string{warn}
	}
	return findings, nil
}

func (a *auditRunner) invoke(ctx context.Context, root string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "npm", "audit", "--json")
	cmd.Dir = root
	return cmd.Output()
}

// parseAuditOutput maps the audit document into Findings. A shape mismatch
// is "no data" plus a warning, per the external process contract.
func parseAuditOutput(out []byte) ([]Finding, string) {
	var report npmAuditReport
	if err := json.Unmarshal(out, &report); err != nil {
		return nil, fmt.Sprintf("npm audit output not understood: %v", err)
	}

	var findings []Finding
	for name, v := range report.Vulnerabilities {
		sev, err := ParseSeverity(v.Severity)
		if err != nil {
			sev = SeverityLow
		}
		title := ""
		cwe := ""
		for _, raw := range v.Via {
			var via npmAuditVia
			// via entries are either advisory objects or plain strings
			if json.Unmarshal(raw, &via) == nil && via.Title != "" {
				title = via.Title
				if len(via.CWE) > 0 {
					cwe = via.CWE[0]
				}
				break
			}
		}
		desc := fmt.Sprintf("npm audit: %s (%s) is vulnerable", name, v.Range)
		if title != "" {
			desc = fmt.Sprintf("npm audit: %s (%s): %s", name, v.Range, title)
		}
		findings = append(findings, Finding{
			Type:        "vulnerable_dependency",
			Severity:    sev,
			Category:    CategoryMisc,
			Description: desc,
			File:        "package.json",
			CWE:         cwe,
			Remediation: fmt.Sprintf("Run npm audit fix, or upgrade %s past the affected range %s", name, v.Range),
		})
	}
	return findings, ""
}
