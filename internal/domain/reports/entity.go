package reports

import (
	"time"
)

// ReportID type for stored scan reports
type ReportID string

// Status enum
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Counts value object, mirrors the engine's severity buckets.
type Counts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

// Summary is the persisted aggregate for one scan run. The full report body
// lives in object storage; this row carries what the dashboard and CI gates
// need.
type Summary struct {
	ID           ReportID  `json:"id"`
	TenantID     string    `json:"tenant_id"`
	TriggeredAt  time.Time `json:"triggered_at"`
	Root         string    `json:"root"`
	Status       Status    `json:"status"`
	Counts       Counts    `json:"counts"`
	Score        int       `json:"score"`
	RiskLevel    string    `json:"risk_level"`
	ScannedFiles int       `json:"scanned_files"`
	ArtifactURL  string    `json:"artifact_url,omitempty"`
	MarkdownURL  string    `json:"markdown_url,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
	Source       string    `json:"source,omitempty"`
	CommitSHA    string    `json:"commit_sha,omitempty"`
	Branch       string    `json:"branch,omitempty"`
}

// ScanWarning is one persisted non-fatal issue encountered during a scan.
type ScanWarning struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenant_id"`
	ReportID  string    `json:"report_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
