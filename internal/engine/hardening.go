package engine

import (
	"regexp"
	"sort"
)

// hardeningCheck is a project-level boolean posture check, independent of
// individual findings. A check passes when its indicator pattern appears
// anywhere in the scanned sources.
type hardeningCheck struct {
	name           string
	description    string
	indicator      *regexp.Regexp
	recommendation string
}

var hardeningChecks = []hardeningCheck{
	{
		name:           "https_enforcement",
		description:    "HTTPS enforcement present",
		indicator:      regexp.MustCompile(`(?i)(hsts|strict-transport-security|forceSSL|requireHTTPS|https\.createServer|express-sslify)`),
		recommendation: "Enforce HTTPS: redirect cleartext traffic and enable HSTS",
	},
	{
		name:           "security_headers",
		description:    "Security headers configured",
		indicator:      regexp.MustCompile(`(?i)(helmet|x-frame-options|content-security-policy|x-content-type-options)`),
		recommendation: "Configure security headers (helmet or equivalent): CSP, X-Frame-Options, nosniff",
	},
	{
		name:           "input_validation",
		description:    "Input validation present",
		indicator:      regexp.MustCompile(`(?i)(joi|zod|yup|express-validator|ajv|class-validator|\bsanitize)`),
		recommendation: "Validate and sanitize all external input with a schema validator",
	},
	{
		name:           "error_handling",
		description:    "Structured error handling present",
		indicator:      regexp.MustCompile(`catch\s*[({]|\.catch\s*\(|process\.on\s*\(\s*['"]uncaughtException`),
		recommendation: "Add centralized error handling; avoid leaking stack traces to clients",
	},
	{
		name:           "security_logging",
		description:    "Security event logging present",
		indicator:      regexp.MustCompile(`(?i)(winston|pino|morgan|bunyan|audit[_-]?log)`),
		recommendation: "Log authentication and authorization events with a structured logger",
	},
}

// HardeningAssessment reports the posture checks, a derived score, and one
// recommendation per failed check.
type HardeningAssessment struct {
	Checks          map[string]bool `json:"checks"`
	Score           int             `json:"score"`
	Recommendations []string        `json:"recommendations"`
}

// assessHardening reduces the per-file indicator hits into the assessment.
func assessHardening(found map[string]bool) HardeningAssessment {
	a := HardeningAssessment{Checks: make(map[string]bool, len(hardeningChecks))}
	passed := 0
	for _, c := range hardeningChecks {
		ok := found[c.name]
		a.Checks[c.name] = ok
		if ok {
			passed++
		} else {
			a.Recommendations = append(a.Recommendations, c.recommendation)
		}
	}
	if len(hardeningChecks) > 0 {
		a.Score = 100 * passed / len(hardeningChecks)
	}
	sort.Strings(a.Recommendations)
	return a
}
