package engine

import (
	"regexp"
	"strings"
)

const secretRemediation = "Remove the hardcoded secret; load it from environment variables or a secret store, and rotate the exposed value"

// minSecretLength bounds false positives: captured secret values shorter
// than this are discarded.
const minSecretLength = 8

type secretPattern struct {
	id          string
	description string
	severity    Severity
	re          *regexp.Regexp
	// group is the capture index holding the secret value; 0 = whole match.
	group int
}

// secretPatterns is the fixed credential-shaped pattern set, applied to
// every text file regardless of extension.
var secretPatterns = []secretPattern{
	{
		id:          "aws-access-key",
		description: "AWS access key id",
		severity:    SeverityCritical,
		re:          regexp.MustCompile(`\b(AKIA|ASIA)[0-9A-Z]{16}\b`),
	},
	{
		id:          "github-token",
		description: "GitHub personal access token",
		severity:    SeverityCritical,
		re:          regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`),
	},
	{
		id:          "private-key-block",
		description: "Private key material",
		severity:    SeverityCritical,
		re:          regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`),
	},
	{
		id:          "slack-token",
		description: "Slack token",
		severity:    SeverityHigh,
		re:          regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`),
	},
	{
		id:          "generic-credential",
		description: "Hardcoded credential assignment",
		severity:    SeverityHigh,
		re:          regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret|api[_-]?key|auth[_-]?token|access[_-]?token)\b\s*[:=]\s*["']([^"']+)["']`),
		group:       2,
	},
	{
		id:          "bearer-token",
		description: "Bearer token literal",
		severity:    SeverityHigh,
		re:          regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]{20,}=*`),
	},
}

type secretScanner struct{}

// wants: every text file; binary content is filtered by the caller.
func (secretScanner) wants(rel string) bool { return true }

func (secretScanner) scanFile(rel string, content []byte) []Finding {
	var findings []Finding
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		for _, p := range secretPatterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			value := m[0]
			if p.group > 0 && p.group < len(m) {
				value = m[p.group]
			}
			if len(value) < minSecretLength {
				continue
			}
			findings = append(findings, Finding{
				Type:        p.id,
				Severity:    p.severity,
				Category:    CategoryAuth,
				Description: p.description,
				File:        rel,
				Line:        i + 1,
				MatchedText: redact(m[0]),
				CWE:         "CWE-798",
				OWASP:       "A07:2021",
				Remediation: secretRemediation,
			})
		}
	}
	return findings
}

// redact keeps the shape of a match without reproducing the full secret.
func redact(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 12 {
		return s[:len(s)/2] + "..."
	}
	return s[:8] + "..." + s[len(s)-4:]
}
