package engine

// builtinStandards are the shipped compliance checklists. Requirement
// predicates are evaluated against accumulated findings or the hardening
// assessment; thresholds belong to each standard.
var builtinStandards = map[string]Standard{
	"owasp-top10": {
		Name:        "owasp-top10",
		Description: "OWASP Top 10 (2021) spot checks",
		MaxCritical: 0,
		MaxHigh:     2,
		Requirements: []requirementDef{
			{
				ID:             "A03-injection",
				Description:    "No high or critical injection findings",
				Severity:       SeverityCritical,
				Recommendation: "Eliminate dynamic code execution and string-built commands/queries",
				Met: func(in evalInput) bool {
					return categoryCount(in, CategoryInjection, SeverityHigh) == 0
				},
			},
			{
				ID:             "A03-xss",
				Description:    "No high or critical XSS findings",
				Severity:       SeverityHigh,
				Recommendation: "Escape output and sanitize any raw HTML insertion",
				Met: func(in evalInput) bool {
					return categoryCount(in, CategoryXSS, SeverityHigh) == 0
				},
			},
			{
				ID:             "A02-crypto",
				Description:    "No cryptographic failures",
				Severity:       SeverityHigh,
				Recommendation: "Replace weak algorithms and re-enable TLS verification",
				Met: func(in evalInput) bool {
					return categoryCount(in, CategoryCrypto, SeverityMedium) == 0
				},
			},
			{
				ID:             "A07-auth",
				Description:    "No hardcoded credentials",
				Severity:       SeverityCritical,
				Recommendation: "Move all secrets to environment variables or a secret store",
				Met: func(in evalInput) bool {
					return categoryCount(in, CategoryAuth, SeverityLow) == 0
				},
			},
			{
				ID:             "A05-misconfig",
				Description:    "Security headers and HTTPS enforcement present",
				Severity:       SeverityMedium,
				Recommendation: "Configure helmet-style headers and enforce HTTPS",
				Met: func(in evalInput) bool {
					return in.hardening.Checks["security_headers"] && in.hardening.Checks["https_enforcement"]
				},
			},
			{
				ID:             "A06-components",
				Description:    "No known-vulnerable dependencies at high or critical severity",
				Severity:       SeverityHigh,
				Recommendation: "Upgrade vulnerable dependencies past their fixed versions",
				Met: func(in evalInput) bool {
					return categoryCount(in, CategoryMisc, SeverityHigh) == 0
				},
			},
		},
	},
	"cis-npm": {
		Name:        "cis-npm",
		Description: "npm project hygiene checklist",
		MaxCritical: 0,
		MaxHigh:     5,
		Requirements: []requirementDef{
			{
				ID:             "npm-1",
				Description:    "No secrets committed to configuration",
				Severity:       SeverityCritical,
				Recommendation: "Remove secrets from tracked config files",
				Met: func(in evalInput) bool {
					return categoryCount(in, CategoryAuth, SeverityLow) == 0
				},
			},
			{
				ID:             "npm-2",
				Description:    "No vulnerable declared dependencies",
				Severity:       SeverityHigh,
				Recommendation: "Run npm audit fix and pin patched versions",
				Met: func(in evalInput) bool {
					return categoryCount(in, CategoryMisc, SeverityMedium) == 0
				},
			},
			{
				ID:             "npm-3",
				Description:    "Input validation tooling present",
				Severity:       SeverityMedium,
				Recommendation: "Adopt a schema validator for all external input",
				Met: func(in evalInput) bool {
					return in.hardening.Checks["input_validation"]
				},
			},
			{
				ID:             "npm-4",
				Description:    "Structured error handling present",
				Severity:       SeverityLow,
				Recommendation: "Add centralized error handling",
				Met: func(in evalInput) bool {
					return in.hardening.Checks["error_handling"]
				},
			},
		},
	},
	"soc2-lite": {
		Name:        "soc2-lite",
		Description: "SOC 2 security-criteria spot checks",
		MaxCritical: 0,
		MaxHigh:     0,
		Requirements: []requirementDef{
			{
				ID:             "cc6-1",
				Description:    "Transport security enforced",
				Severity:       SeverityHigh,
				Recommendation: "Enforce HTTPS with HSTS",
				Met: func(in evalInput) bool {
					return in.hardening.Checks["https_enforcement"]
				},
			},
			{
				ID:             "cc6-2",
				Description:    "No exposed credentials",
				Severity:       SeverityCritical,
				Recommendation: "Rotate and remove all hardcoded secrets",
				Met: func(in evalInput) bool {
					return categoryCount(in, CategoryAuth, SeverityLow) == 0
				},
			},
			{
				ID:             "cc7-1",
				Description:    "Security event logging in place",
				Severity:       SeverityMedium,
				Recommendation: "Log security-relevant events with a structured logger",
				Met: func(in evalInput) bool {
					return in.hardening.Checks["security_logging"]
				},
			},
			{
				ID:             "cc7-2",
				Description:    "No critical findings of any category",
				Severity:       SeverityCritical,
				Recommendation: "Resolve all critical findings before release",
				Met: func(in evalInput) bool {
					return in.counts.Critical == 0
				},
			},
		},
	},
}
