package engine

// builtinRules is the bundled rule set. Patterns are heuristic and
// line-oriented; false positives are an accepted tradeoff of this design.
var builtinRules = []SecurityRule{
	{
		ID:          "js-eval",
		Name:        "Dynamic code evaluation",
		Description: "eval() executes attacker-controllable strings as code",
		Severity:    SeverityCritical,
		Category:    CategoryInjection,
		Pattern:     `\beval\s*\(`,
		CWE:         "CWE-94",
		OWASP:       "A03:2021",
		Remediation: "Avoid eval(); parse data with JSON.parse or use a safe dispatch table",
	},
	{
		ID:          "js-new-function",
		Name:        "Function constructor",
		Description: "new Function() compiles strings into executable code",
		Severity:    SeverityCritical,
		Category:    CategoryInjection,
		Pattern:     `new\s+Function\s*\(`,
		CWE:         "CWE-94",
		OWASP:       "A03:2021",
		Remediation: "Avoid the Function constructor; use static functions",
	},
	{
		ID:          "js-child-process-concat",
		Name:        "Command built from string concatenation",
		Description: "Shell command assembled from dynamic input",
		Severity:    SeverityCritical,
		Category:    CategoryInjection,
		Pattern:     `\b(exec|execSync|spawnSync?)\s*\([^)]*(\+|\$\{)`,
		CWE:         "CWE-78",
		OWASP:       "A03:2021",
		Remediation: "Use execFile/spawn with an argument array instead of concatenated shell strings",
	},
	{
		ID:          "js-sql-concat",
		Name:        "SQL built from string concatenation",
		Description: "Query string assembled from dynamic input",
		Severity:    SeverityHigh,
		Category:    CategoryInjection,
		Pattern:     `\bquery\s*\(\s*['"` + "`" + `][^'"` + "`" + `]*(SELECT|INSERT|UPDATE|DELETE)[^)]*(\+|\$\{)`,
		CWE:         "CWE-89",
		OWASP:       "A03:2021",
		Remediation: "Use parameterized queries or prepared statements",
	},
	{
		ID:          "js-innerhtml",
		Name:        "innerHTML assignment",
		Description: "Writing unescaped markup into the DOM",
		Severity:    SeverityMedium,
		Category:    CategoryXSS,
		Pattern:     `\.innerHTML\s*=`,
		CWE:         "CWE-79",
		OWASP:       "A03:2021",
		Remediation: "Use textContent, or sanitize markup before insertion",
	},
	{
		ID:          "js-document-write",
		Name:        "document.write",
		Description: "document.write with dynamic content enables DOM injection",
		Severity:    SeverityMedium,
		Category:    CategoryXSS,
		Pattern:     `document\.write\s*\(`,
		CWE:         "CWE-79",
		OWASP:       "A03:2021",
		Remediation: "Build DOM nodes explicitly instead of document.write",
	},
	{
		ID:          "js-dangerously-set-html",
		Name:        "dangerouslySetInnerHTML",
		Description: "React escape hatch for raw HTML",
		Severity:    SeverityMedium,
		Category:    CategoryXSS,
		Pattern:     `dangerouslySetInnerHTML`,
		CWE:         "CWE-79",
		OWASP:       "A03:2021",
		Remediation: "Sanitize HTML (e.g. DOMPurify) before rendering it raw",
	},
	{
		ID:          "js-weak-hash",
		Name:        "Weak hash algorithm",
		Description: "MD5/SHA1 are broken for security purposes",
		Severity:    SeverityMedium,
		Category:    CategoryCrypto,
		Pattern:     `createHash\s*\(\s*['"](md5|sha1)['"]`,
		CWE:         "CWE-327",
		OWASP:       "A02:2021",
		Remediation: "Use SHA-256 or stronger; use bcrypt/scrypt/argon2 for passwords",
	},
	{
		ID:          "js-math-random-token",
		Name:        "Math.random for security values",
		Description: "Math.random is not a cryptographic source",
		Severity:    SeverityLow,
		Category:    CategoryCrypto,
		Pattern:     `(token|secret|session|nonce|salt)[^\n]*Math\.random\s*\(`,
		CWE:         "CWE-338",
		OWASP:       "A02:2021",
		Remediation: "Use crypto.randomBytes or crypto.randomUUID",
	},
	{
		ID:          "js-tls-verify-disabled",
		Name:        "TLS verification disabled",
		Description: "rejectUnauthorized: false disables certificate validation",
		Severity:    SeverityHigh,
		Category:    CategoryCrypto,
		Pattern:     `rejectUnauthorized\s*:\s*false`,
		CWE:         "CWE-295",
		OWASP:       "A02:2021",
		Remediation: "Never disable TLS verification; pin or install the proper CA",
	},
	{
		ID:          "js-tls-env-disabled",
		Name:        "NODE_TLS_REJECT_UNAUTHORIZED=0",
		Description: "Process-wide TLS verification bypass",
		Severity:    SeverityHigh,
		Category:    CategoryCrypto,
		Pattern:     `NODE_TLS_REJECT_UNAUTHORIZED[^\n]*0`,
		CWE:         "CWE-295",
		OWASP:       "A02:2021",
		Remediation: "Remove the override and fix the certificate chain",
	},
	{
		ID:          "js-insecure-http",
		Name:        "Cleartext HTTP endpoint",
		Description: "Remote call over http:// leaks data in transit",
		Severity:    SeverityLow,
		Category:    CategoryMisc,
		Pattern:     `['"` + "`" + `]http://[a-z0-9-]+\.(com|org|net|io|dev|co)\b`,
		CWE:         "CWE-319",
		OWASP:       "A02:2021",
		Remediation: "Use https:// for non-local endpoints",
	},
	{
		ID:          "js-prototype-pollution",
		Name:        "__proto__ assignment",
		Description: "Direct prototype manipulation enables pollution attacks",
		Severity:    SeverityHigh,
		Category:    CategoryInjection,
		Pattern:     `__proto__\s*[\[\].=]`,
		CWE:         "CWE-1321",
		OWASP:       "A08:2021",
		Remediation: "Use Object.create(null) maps and reject __proto__ keys from input",
	},
}

// multiLineHeuristics run over whole file text rather than per line, for
// combinations a single-line pattern cannot express.
type multiLineHeuristic struct {
	id      string
	all     []string // every pattern must match somewhere in the file
	finding Finding
}

var multiLineHeuristics = []multiLineHeuristic{
	{
		id:  "js-insecure-deserialization",
		all: []string{`\b(JSON\.parse|deserialize|unserialize)\s*\(`, `\b(eval|new\s+Function)\s*\(`},
		finding: Finding{
			Type:        "insecure_deserialization",
			Severity:    SeverityHigh,
			Category:    CategoryInjection,
			Description: "File combines deserialization with dynamic code evaluation",
			CWE:         "CWE-502",
			OWASP:       "A08:2021",
			Remediation: "Validate deserialized data against a schema and never feed it to eval",
		},
	},
	{
		id:  "js-template-response",
		all: []string{`\b(req\.(query|params|body))`, `res\.send\s*\([^)]*(\+|\$\{)`},
		finding: Finding{
			Type:        "reflected_input",
			Severity:    SeverityMedium,
			Category:    CategoryXSS,
			Description: "Request input appears to be echoed into a response body",
			CWE:         "CWE-79",
			OWASP:       "A03:2021",
			Remediation: "Escape or sanitize request-derived values before sending them back",
		},
	},
}
