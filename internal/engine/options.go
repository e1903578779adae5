package engine

import (
	"runtime"
	"time"
)

// Weights maps severities to score penalties. The defaults are replaceable
// configuration, not mandated semantics.
type Weights struct {
	Critical int `json:"critical" yaml:"critical"`
	High     int `json:"high" yaml:"high"`
	Medium   int `json:"medium" yaml:"medium"`
	Low      int `json:"low" yaml:"low"`
}

func (w Weights) isZero() bool {
	return w.Critical == 0 && w.High == 0 && w.Medium == 0 && w.Low == 0
}

// ScanOptions configures a Scanner. Construction with an unknown compliance
// standard or malformed custom rule fails fast; nothing here is re-validated
// mid-scan.
type ScanOptions struct {
	IncludeCode          bool
	IncludeSecrets       bool
	IncludeDependencies  bool
	IncludeConfiguration bool

	// SeverityThreshold drops findings below the given level. Empty means low.
	SeverityThreshold Severity

	// ExcludePatterns are globs matched against slash-separated relative paths.
	ExcludePatterns []string

	// ComplianceStandards to evaluate, in order. Unknown names are rejected
	// at construction.
	ComplianceStandards []string

	// CustomRules are merged into the registry at construction.
	CustomRules []SecurityRule

	// Workers bounds the file-scanning pool. <=0 means NumCPU.
	Workers int

	// MaxFileSize in bytes; larger files are skipped with a warning.
	MaxFileSize int64

	// Weights and MediumRiskThreshold drive the overall score and risk level.
	Weights             Weights
	MediumRiskThreshold int

	// EnableAudit turns on the external npm audit subprocess.
	EnableAudit  bool
	AuditTimeout time.Duration

	// Vulns overrides the bundled static vulnerable-dependency table.
	Vulns VulnSource
}

// DefaultOptions returns the options used when a field is left zero.
func DefaultOptions() ScanOptions {
	return ScanOptions{
		IncludeCode:          true,
		IncludeSecrets:       true,
		IncludeDependencies:  true,
		IncludeConfiguration: true,
		SeverityThreshold:    SeverityLow,
		Workers:              runtime.NumCPU(),
		MaxFileSize:          1 << 20,
		Weights:              Weights{Critical: 20, High: 10, Medium: 5, Low: 1},
		MediumRiskThreshold:  5,
		AuditTimeout:         30 * time.Second,
	}
}

func (o *ScanOptions) applyDefaults() {
	d := DefaultOptions()
	if o.SeverityThreshold == "" {
		o.SeverityThreshold = d.SeverityThreshold
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = d.MaxFileSize
	}
	if o.Weights.isZero() {
		o.Weights = d.Weights
	}
	if o.MediumRiskThreshold <= 0 {
		o.MediumRiskThreshold = d.MediumRiskThreshold
	}
	if o.AuditTimeout <= 0 {
		o.AuditTimeout = d.AuditTimeout
	}
}
