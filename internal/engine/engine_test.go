package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestScanner(t *testing.T, opts ScanOptions) *Scanner {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestScanEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	s := newTestScanner(t, DefaultOptions())

	report, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Findings) != 0 {
		t.Errorf("expected no findings, got %d", len(report.Findings))
	}
	if len(report.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", report.Warnings)
	}
	if report.Metrics.Score != 100 {
		t.Errorf("expected score 100, got %d", report.Metrics.Score)
	}
	if report.Metrics.RiskLevel != RiskLow {
		t.Errorf("expected low risk, got %s", report.Metrics.RiskLevel)
	}
	if report.ScannedFileCount != 0 {
		t.Errorf("expected 0 scanned files, got %d", report.ScannedFileCount)
	}
}

func TestScanMissingRoot(t *testing.T) {
	s := newTestScanner(t, DefaultOptions())

	report, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", report.Warnings)
	}
	if !strings.Contains(report.Warnings[0], "scan root unavailable") {
		t.Errorf("unexpected warning: %s", report.Warnings[0])
	}
	if report.Metrics.Score != 100 {
		t.Errorf("expected score 100 on empty report, got %d", report.Metrics.Score)
	}
}

func TestScanEvalProducesSingleCriticalFinding(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.js", "eval(userInput);\n")

	s := newTestScanner(t, DefaultOptions())
	report, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Findings) != 1 {
		t.Fatalf("expected exactly 1 finding, got %d: %+v", len(report.Findings), report.Findings)
	}
	f := report.Findings[0]
	if f.Type != "js-eval" {
		t.Errorf("expected js-eval, got %s", f.Type)
	}
	if f.Severity != SeverityCritical {
		t.Errorf("expected critical, got %s", f.Severity)
	}
	if f.Category != CategoryInjection {
		t.Errorf("expected injection, got %s", f.Category)
	}
	if f.CWE != "CWE-94" {
		t.Errorf("expected CWE-94, got %s", f.CWE)
	}
	if f.Line != 1 {
		t.Errorf("expected line 1, got %d", f.Line)
	}
	if report.Metrics.RiskLevel != RiskCritical {
		t.Errorf("expected critical risk, got %s", report.Metrics.RiskLevel)
	}
}

func TestScanHardcodedPassword(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.js", `const password = "supersecret123";`+"\n")

	s := newTestScanner(t, DefaultOptions())
	report, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	var found *Finding
	for i := range report.Findings {
		if report.Findings[i].Type == "generic-credential" {
			found = &report.Findings[i]
		}
	}
	if found == nil {
		t.Fatalf("expected a generic-credential finding, got %+v", report.Findings)
	}
	if found.Category != CategoryAuth {
		t.Errorf("expected auth category, got %s", found.Category)
	}
	if !strings.Contains(found.Remediation, "environment variables") &&
		!strings.Contains(found.Remediation, "secret store") {
		t.Errorf("remediation should point at env vars or a secret store: %s", found.Remediation)
	}
	if strings.Contains(found.MatchedText, "supersecret123") {
		t.Errorf("matched text must be redacted: %s", found.MatchedText)
	}
}

func TestScanDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "eval(x);\nconst apiKey = \"abcdef0123456789\";\n")
	writeFile(t, dir, "b.js", "el.innerHTML = html;\nrejectUnauthorized: false\n")
	writeFile(t, dir, "sub/c.js", "document.write(body);\n")

	s := newTestScanner(t, DefaultOptions())

	first, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first.Findings, second.Findings) {
		t.Errorf("findings differ between identical scans:\n%+v\n%+v", first.Findings, second.Findings)
	}
	if first.Metrics.Score != second.Metrics.Score {
		t.Errorf("scores differ: %d vs %d", first.Metrics.Score, second.Metrics.Score)
	}
}

func TestScanCancelledContext(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.js", "b.js", "c.js"} {
		writeFile(t, dir, name, "eval(x);\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestScanner(t, DefaultOptions())
	report, err := s.Scan(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "truncated") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a truncation warning, got %v", report.Warnings)
	}
}

func TestScanHonorsSeverityThreshold(t *testing.T) {
	dir := t.TempDir()
	// innerHTML is medium, insecure http endpoint is low
	writeFile(t, dir, "app.js", "el.innerHTML = html;\nfetch('http://example.com/api');\n")

	opts := DefaultOptions()
	opts.SeverityThreshold = SeverityMedium
	s := newTestScanner(t, opts)

	report, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range report.Findings {
		if f.Severity.Rank() < SeverityMedium.Rank() {
			t.Errorf("finding below threshold leaked through: %+v", f)
		}
	}
	if len(report.Findings) != 1 {
		t.Errorf("expected only the medium finding, got %+v", report.Findings)
	}
}

func TestNewNormalizesSeverityThreshold(t *testing.T) {
	dir := t.TempDir()
	// innerHTML is medium, insecure http endpoint is low
	writeFile(t, dir, "app.js", "el.innerHTML = html;\nfetch('http://example.com/api');\n")

	// spellings the parser folds must filter exactly like their canonical form
	opts := DefaultOptions()
	opts.SeverityThreshold = Severity("Moderate")
	s := newTestScanner(t, opts)

	report, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Findings) != 1 {
		t.Fatalf("expected only the medium finding, got %+v", report.Findings)
	}
	if report.Findings[0].Severity != SeverityMedium {
		t.Errorf("kept finding is %s, want medium", report.Findings[0].Severity)
	}

	opts = DefaultOptions()
	opts.SeverityThreshold = Severity(" HIGH ")
	s = newTestScanner(t, opts)
	report, err = s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Findings) != 0 {
		t.Errorf("a high threshold should drop both findings, got %+v", report.Findings)
	}
}

func TestScanSkipsBinaryWithWarning(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "eval(x);\n")
	writeFile(t, dir, "logo.png", "\x89PNG\x00\x01\x02secret = \"hunter2hunter2\"")

	s := newTestScanner(t, DefaultOptions())
	report, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if report.ScannedFileCount != 1 {
		t.Errorf("binary files do not count as scanned, got %d", report.ScannedFileCount)
	}
	for _, f := range report.Findings {
		if f.File == "logo.png" {
			t.Errorf("binary file produced a finding: %+v", f)
		}
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "logo.png") && strings.Contains(w, "binary content") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a skipped-binary warning, got %v", report.Warnings)
	}
}

func TestScanSourceToggles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "eval(x);\nconst password = \"supersecret123\";\n")

	opts := DefaultOptions()
	opts.IncludeCode = false
	s := newTestScanner(t, opts)
	report, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range report.Findings {
		if f.Type == "js-eval" {
			t.Errorf("code source disabled but rule fired: %+v", f)
		}
	}

	opts = DefaultOptions()
	opts.IncludeSecrets = false
	s = newTestScanner(t, opts)
	report, err = s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range report.Findings {
		if f.Type == "generic-credential" {
			t.Errorf("secret source disabled but pattern fired: %+v", f)
		}
	}
}

func TestScanExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.js", "eval(x);\n")
	writeFile(t, dir, "skip.test.js", "eval(x);\n")

	opts := DefaultOptions()
	opts.ExcludePatterns = []string{"*.test.js"}
	s := newTestScanner(t, opts)

	report, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range report.Findings {
		if f.File == "skip.test.js" {
			t.Errorf("excluded file was scanned: %+v", f)
		}
	}
	if len(report.Findings) != 1 {
		t.Errorf("expected 1 finding from keep.js, got %d", len(report.Findings))
	}
}

func TestNewRejectsUnknownStandard(t *testing.T) {
	opts := DefaultOptions()
	opts.ComplianceStandards = []string{"owasp-top10", "not-a-standard"}

	_, err := New(opts)
	if err == nil {
		t.Fatal("expected a configuration error")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
	if cfgErr.Field != "compliance_standards" {
		t.Errorf("unexpected field: %s", cfgErr.Field)
	}
}
