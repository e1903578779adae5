package advisory

import "time"

// AdvisoryID identifier type
type AdvisoryID string

// Advisory is an AI-generated remediation plan stored for auditing and
// retrieval.
type Advisory struct {
	ID        AdvisoryID `json:"id"`
	TenantID  string     `json:"tenant_id"`
	ReportID  string     `json:"report_id,omitempty"`
	Result    string     `json:"result"` // JSON string from the model
	CreatedAt time.Time  `json:"created_at"`
}
