package engine

import (
	"context"
	"sort"
	"testing"
)

func TestAssessHardeningAllPassed(t *testing.T) {
	found := map[string]bool{}
	for _, c := range hardeningChecks {
		found[c.name] = true
	}

	a := assessHardening(found)
	if a.Score != 100 {
		t.Errorf("expected score 100, got %d", a.Score)
	}
	if len(a.Recommendations) != 0 {
		t.Errorf("no recommendations expected, got %v", a.Recommendations)
	}
	for name, ok := range a.Checks {
		if !ok {
			t.Errorf("check %s should pass", name)
		}
	}
}

func TestAssessHardeningNonePassed(t *testing.T) {
	a := assessHardening(nil)
	if a.Score != 0 {
		t.Errorf("expected score 0, got %d", a.Score)
	}
	if len(a.Recommendations) != len(hardeningChecks) {
		t.Errorf("expected %d recommendations, got %d", len(hardeningChecks), len(a.Recommendations))
	}
	if !sort.StringsAreSorted(a.Recommendations) {
		t.Error("recommendations should be sorted")
	}
}

func TestAssessHardeningPartial(t *testing.T) {
	// 2 of 5 checks passing floors to 40
	a := assessHardening(map[string]bool{
		"https_enforcement": true,
		"security_headers":  true,
	})
	if a.Score != 40 {
		t.Errorf("expected score 40, got %d", a.Score)
	}
	if len(a.Recommendations) != 3 {
		t.Errorf("expected 3 recommendations, got %d", len(a.Recommendations))
	}
}

func TestHardeningIndicators(t *testing.T) {
	tests := []struct {
		name  string
		check string
		line  string
		hit   bool
	}{
		{"helmet_import", "security_headers", `app.use(helmet());`, true},
		{"csp_header", "security_headers", `res.setHeader("Content-Security-Policy", policy)`, true},
		{"hsts", "https_enforcement", `app.use(hsts({ maxAge: 31536000 }))`, true},
		{"https_server", "https_enforcement", `https.createServer(options, app)`, true},
		{"joi_schema", "input_validation", `const schema = Joi.object({ name: Joi.string() })`, true},
		{"zod", "input_validation", `import { z } from "zod";`, true},
		{"try_catch", "error_handling", `try { run(); } catch (err) { next(err); }`, true},
		{"promise_catch", "error_handling", `fetchUser().catch(handleError)`, true},
		{"winston", "security_logging", `const logger = winston.createLogger()`, true},
		{"audit_log", "security_logging", `auditLog.record(event)`, true},
		{"plain_code", "security_headers", `const total = a + b;`, false},
		{"catching_word", "error_handling", `// eye-catching banner`, false},
	}

	byName := map[string]hardeningCheck{}
	for _, c := range hardeningChecks {
		byName[c.name] = c
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := byName[tt.check]
			if !ok {
				t.Fatalf("no check named %s", tt.check)
			}
			if got := c.indicator.MatchString(tt.line); got != tt.hit {
				t.Errorf("indicator %s on %q = %v, want %v", tt.check, tt.line, got, tt.hit)
			}
		})
	}
}

func TestScanSurfacesHardeningInReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "server.js", "const helmet = require('helmet');\napp.use(helmet());\n")

	s := newTestScanner(t, DefaultOptions())
	report, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Hardening.Checks["security_headers"] {
		t.Error("helmet usage should satisfy the security_headers check")
	}
	if report.Hardening.Checks["input_validation"] {
		t.Error("input_validation should not pass without a validator")
	}
}
