package engine

import "time"

// Metrics is the reduction of all findings.
type Metrics struct {
	Counts     SeverityCounts   `json:"counts"`
	Categories map[Category]int `json:"categories"`
	Score      int              `json:"score"`
	RiskLevel  RiskLevel        `json:"risk_level"`
}

// ScanReport is the aggregate root produced by one scan. It is produced
// fresh on every call, self-contained, and JSON-serializable.
type ScanReport struct {
	Root             string              `json:"root"`
	Findings         []Finding           `json:"findings"`
	Metrics          Metrics             `json:"metrics"`
	Compliance       []ComplianceResult  `json:"compliance_results,omitempty"`
	Hardening        HardeningAssessment `json:"hardening"`
	Recommendations  []string            `json:"recommendations,omitempty"`
	ScannedFileCount int                 `json:"scanned_file_count"`
	DurationMS       int64               `json:"duration_ms"`
	Timestamp        time.Time           `json:"timestamp"`
	Warnings         []string            `json:"warnings,omitempty"`
}

// Duration is a convenience accessor over the persisted millisecond value.
func (r *ScanReport) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}
