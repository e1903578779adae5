package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/llamasearchai/opennode-scan/internal/domain/reports"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, tenant_id, triggered_at, root, status,
       critical, high, medium, low, findings_total,
       score, risk_level, scanned_files,
       artifact_url, markdown_url, duration_ms, source, commit_sha, branch`

// Save insert/update one report summary row
func (r *ReportRepository) Save(ctx context.Context, s *domain.Summary) error {
	const q = `
INSERT INTO scan_reports
(id, tenant_id, triggered_at, root, status,
 critical, high, medium, low, findings_total,
 score, risk_level, scanned_files,
 artifact_url, markdown_url, duration_ms, source, commit_sha, branch)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 critical=VALUES(critical), high=VALUES(high), medium=VALUES(medium), low=VALUES(low),
 findings_total=VALUES(findings_total),
 score=VALUES(score), risk_level=VALUES(risk_level), scanned_files=VALUES(scanned_files),
 artifact_url=VALUES(artifact_url), markdown_url=VALUES(markdown_url), duration_ms=VALUES(duration_ms);
`
	tenant := stringOrDash(s.TenantID)
	status := stringOrDash(string(s.Status))
	risk := stringOrDash(s.RiskLevel)
	triggered := s.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		s.ID, tenant, triggered, s.Root, status,
		s.Counts.Critical, s.Counts.High, s.Counts.Medium, s.Counts.Low, s.Counts.Total,
		s.Score, risk, s.ScannedFiles,
		s.ArtifactURL, s.MarkdownURL, s.DurationMS,
		s.Source, s.CommitSHA, s.Branch,
	)
	return err
}

// Get by ID + Tenant
func (r *ReportRepository) Get(ctx context.Context, tenant string, id domain.ReportID) (*domain.Summary, error) {
	const q = `
SELECT ` + reportColumns + `
FROM scan_reports
WHERE tenant_id=? AND id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	return scanSummaryRow(row)
}

// Latest report summaries per tenant
func (r *ReportRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT ` + reportColumns + `
FROM scan_reports
WHERE tenant_id=? ORDER BY triggered_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSummaries(rows)
}

// Paginate returns an offset page ordered by trigger time
func (r *ReportRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Summary, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	const q = `
SELECT ` + reportColumns + `
FROM scan_reports
WHERE tenant_id=? ORDER BY triggered_at DESC, id DESC LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSummaries(rows)
}

// Cursor pagination keyed on (triggered_at, id)
func (r *ReportRepository) Cursor(ctx context.Context, tenant string, cursorTime time.Time, cursorID string, pageSize int) ([]*domain.Summary, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	const q = `
SELECT ` + reportColumns + `
FROM scan_reports
WHERE tenant_id=? AND (triggered_at < ? OR (triggered_at = ? AND id < ?))
ORDER BY triggered_at DESC, id DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, cursorTime, cursorTime, cursorID, pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSummaries(rows)
}

// UpdateStatus marks one report row
func (r *ReportRepository) UpdateStatus(ctx context.Context, tenant string, id domain.ReportID, status domain.Status) error {
	const q = `UPDATE scan_reports SET status=? WHERE tenant_id=? AND id=?;`
	_, err := r.db.ExecContext(ctx, q, string(status), tenant, id)
	return err
}

// Summary counts scan results since N days
func (r *ReportRepository) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT COUNT(*), COALESCE(SUM(critical),0), COALESCE(SUM(high),0), COALESCE(SUM(medium),0)
FROM scan_reports
WHERE tenant_id=? AND triggered_at >= DATE_SUB(NOW(), INTERVAL ? DAY);
`
	var total, critical, high, medium int
	err := r.db.QueryRowContext(ctx, q, tenant, sinceDays).Scan(&total, &critical, &high, &medium)
	return total, critical, high, medium, err
}

// Count returns the number of report rows for one tenant
func (r *ReportRepository) Count(ctx context.Context, tenant string) (int64, error) {
	const q = `SELECT COUNT(*) FROM scan_reports WHERE tenant_id=?;`
	var n int64
	err := r.db.QueryRowContext(ctx, q, tenant).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummaryRow(row rowScanner) (*domain.Summary, error) {
	var s domain.Summary
	var crit, hi, med, lo, tot int
	if err := row.Scan(
		&s.ID, &s.TenantID, &s.TriggeredAt, &s.Root, &s.Status,
		&crit, &hi, &med, &lo, &tot,
		&s.Score, &s.RiskLevel, &s.ScannedFiles,
		&s.ArtifactURL, &s.MarkdownURL, &s.DurationMS,
		&s.Source, &s.CommitSHA, &s.Branch,
	); err != nil {
		return nil, err
	}
	s.Counts = domain.Counts{Critical: crit, High: hi, Medium: med, Low: lo, Total: tot}
	return &s, nil
}

func collectSummaries(rows *sql.Rows) ([]*domain.Summary, error) {
	var out []*domain.Summary
	for rows.Next() {
		s, err := scanSummaryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
