// Package engine implements the security scanning and compliance engine:
// pattern-based code and secret scanning, dependency and configuration
// checks, compliance evaluation, hardening assessment, and report
// aggregation. Detection is heuristic, not AST-based; false positives and
// negatives are an accepted tradeoff of the design.
package engine

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// fileSource turns one file's content into findings. Implementations must
// be safe for concurrent use across scan workers.
type fileSource interface {
	wants(rel string) bool
	scanFile(rel string, content []byte) []Finding
}

// Scanner is a caller-owned engine instance. It is constructed once from
// ScanOptions and carries no per-scan state: Scan may be called
// concurrently for different roots.
type Scanner struct {
	opts      ScanOptions
	registry  *Registry
	standards []Standard
	sources   []fileSource
	deps      *dependencyScanner
	configs   configScanner
}

// New validates options and builds the scanner. Unknown compliance
// standards and malformed custom rules fail here, not mid-scan.
func New(opts ScanOptions) (*Scanner, error) {
	opts.applyDefaults()

	registry, err := NewRegistry(opts.CustomRules)
	if err != nil {
		return nil, err
	}
	standards, err := resolveStandards(opts.ComplianceStandards)
	if err != nil {
		return nil, err
	}
	sev, err := ParseSeverity(string(opts.SeverityThreshold))
	if err != nil {
		return nil, configErrorf("severity_threshold", "%v", err)
	}
	opts.SeverityThreshold = sev

	vulns := opts.Vulns
	if vulns == nil {
		vulns = newStaticVulnSource(bundledVulns)
	}
	deps := &dependencyScanner{vulns: vulns}
	if opts.EnableAudit {
		deps.audit = &auditRunner{timeout: opts.AuditTimeout}
	}

	var sources []fileSource
	if opts.IncludeCode {
		sources = append(sources, newCodeScanner(registry))
	}
	if opts.IncludeSecrets {
		sources = append(sources, secretScanner{})
	}

	return &Scanner{
		opts:      opts,
		registry:  registry,
		standards: standards,
		sources:   sources,
		deps:      deps,
	}, nil
}

// Registry exposes the read-only rule collection.
func (s *Scanner) Registry() *Registry { return s.registry }

// Scan inspects root and returns a fresh ScanReport. It never fails on
// per-file or per-source errors; those become warnings. Cancellation yields
// a valid partial report with a truncation warning.
func (s *Scanner) Scan(ctx context.Context, root string) (*ScanReport, error) {
	start := time.Now()
	report := &ScanReport{Root: root, Timestamp: start.UTC()}

	var findings []Finding
	var warnings []string

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("scan root unavailable: %v", err))
		} else {
			warnings = append(warnings, fmt.Sprintf("scan root is not a directory: %s", root))
		}
		s.finalize(report, nil, map[string]bool{}, warnings, start)
		return report, nil
	}

	files, selWarnings := selectFiles(root, s.opts.ExcludePatterns, s.opts.MaxFileSize)
	warnings = append(warnings, selWarnings...)

	fileFindings, hardeningHits, scanned, fileWarnings := s.scanFiles(ctx, files)
	findings = append(findings, fileFindings...)
	warnings = append(warnings, fileWarnings...)
	report.ScannedFileCount = scanned

	// dependency and configuration sources read the root directly; they run
	// alongside nothing here because file workers already finished, and each
	// degrades to warnings on failure
	if s.opts.IncludeDependencies {
		df, dw := s.deps.scan(root)
		findings = append(findings, df...)
		warnings = append(warnings, dw...)
		if s.deps.audit != nil && ctx.Err() == nil {
			af, aw := s.deps.audit.run(ctx, root)
			findings = append(findings, af...)
			warnings = append(warnings, aw...)
		}
	}
	if s.opts.IncludeConfiguration {
		cf, cw := s.configs.scan(root)
		findings = append(findings, cf...)
		warnings = append(warnings, cw...)
	}

	if ctx.Err() != nil {
		warnings = append(warnings, "scan cancelled before completion; results are truncated")
	}

	s.finalize(report, findings, hardeningHits, warnings, start)
	return report, nil
}

// scanFiles distributes files across the bounded worker pool. Workers share
// nothing mutable besides the read-only registry; each returns its own
// finding list, merged after all workers complete or the context is
// cancelled.
func (s *Scanner) scanFiles(ctx context.Context, files []fileEntry) ([]Finding, map[string]bool, int, []string) {
	type result struct {
		findings []Finding
		warnings []string
		hits     map[string]bool
		scanned  int
	}

	jobs := make(chan fileEntry)
	results := make(chan result, s.opts.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := result{hits: make(map[string]bool)}
			for fe := range jobs {
				if s.scanOneFile(fe, &res.findings, &res.warnings, res.hits) {
					res.scanned++
				}
			}
			results <- res
		}()
	}

	// feeder stops handing out work on cancellation; in-flight workers
	// finish their current file
	go func() {
		defer close(jobs)
		for _, fe := range files {
			select {
			case jobs <- fe:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	var findings []Finding
	var warnings []string
	hits := make(map[string]bool)
	scanned := 0
	for res := range results {
		findings = append(findings, res.findings...)
		warnings = append(warnings, res.warnings...)
		scanned += res.scanned
		for k := range res.hits {
			hits[k] = true
		}
	}
	return findings, hits, scanned, warnings
}

// scanOneFile reports whether the file was actually scanned; skipped files
// (unreadable, binary) contribute a warning instead.
func (s *Scanner) scanOneFile(fe fileEntry, findings *[]Finding, warnings *[]string, hits map[string]bool) bool {
	content, err := readFileLimited(fe.abs, s.opts.MaxFileSize)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("cannot read %s: %v", fe.rel, err))
		return false
	}
	if isBinary(content) {
		*warnings = append(*warnings, fmt.Sprintf("skipped %s: binary content", fe.rel))
		return false
	}

	for _, src := range s.sources {
		if src.wants(fe.rel) {
			*findings = append(*findings, src.scanFile(fe.rel, content)...)
		}
	}

	for _, c := range hardeningChecks {
		if !hits[c.name] && c.indicator.Match(content) {
			hits[c.name] = true
		}
	}
	return true
}

// finalize applies the severity threshold, deduplicates, aggregates, and
// writes the report fields.
func (s *Scanner) finalize(report *ScanReport, findings []Finding, hardeningHits map[string]bool, warnings []string, start time.Time) {
	kept := findings[:0:0]
	for _, f := range findings {
		if f.Severity.Rank() >= s.opts.SeverityThreshold.Rank() {
			kept = append(kept, f)
		}
	}
	kept = dedupeFindings(kept)

	hardening := assessHardening(hardeningHits)
	metrics := computeMetrics(kept, s.opts.Weights, s.opts.MediumRiskThreshold)

	in := evalInput{
		counts:     metrics.Counts,
		categories: severityByCategory(kept),
		hardening:  hardening,
	}
	var compliance []ComplianceResult
	for _, std := range s.standards {
		compliance = append(compliance, std.evaluate(in))
	}

	report.Findings = kept
	report.Metrics = metrics
	report.Compliance = compliance
	report.Hardening = hardening
	report.Recommendations = buildRecommendations(metrics, compliance, hardening)
	report.Warnings = warnings
	report.DurationMS = time.Since(start).Milliseconds()
}
